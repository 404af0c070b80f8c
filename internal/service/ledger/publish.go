package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// PublishResult summarizes a publish sweep.
type PublishResult struct {
	BatchID   uuid.UUID
	Published int
	Events    int
	Cutoff    time.Time // exclusive
}

// Publish freezes every Draft row dated on or before dateUntil (calendar day,
// ledger time zone) and emits its financial events. The sweep is one
// transaction: either every row is published or none is.
func (s *Service) Publish(ctx context.Context, dateUntil time.Time) (PublishResult, error) {
	if dateUntil.IsZero() {
		return PublishResult{}, fmt.Errorf("ledger.Publish: %w", domain.NewValidationError("date_until", "required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	result := PublishResult{BatchID: batchID(ctx), Cutoff: s.dayEnd(dateUntil)}
	publishedAt := started.UTC()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		drafts, err := s.shipments.ListDraftsBefore(ctx, result.Cutoff)
		if err != nil {
			return fmt.Errorf("list drafts: %w", err)
		}

		var events []domain.FinancialEvent
		for i := range drafts {
			row := &drafts[i]
			if err := s.shipments.MarkPublished(ctx, row.ID, publishedAt); err != nil {
				return fmt.Errorf("publish %s: %w", row.ID, err)
			}
			frozen := row.Current
			row.Status = domain.PostingStatusPublished
			row.Published = &frozen
			row.PublicationDate = &publishedAt
			events = append(events, domain.FinancialEventsFor(row, result.BatchID)...)
		}

		if err := s.events.Insert(ctx, events); err != nil {
			return fmt.Errorf("insert financial events: %w", err)
		}
		result.Published = len(drafts)
		result.Events = len(events)
		return nil
	})
	if err != nil {
		return PublishResult{}, fmt.Errorf("ledger.Publish: %w", err)
	}

	s.metrics.RowsPublished(result.Published, s.now().Sub(started))
	s.log.InfoContext(ctx, "drafts published", append(runAttrs(ctx),
		slog.String("batch_id", result.BatchID.String()),
		slog.Time("cutoff", result.Cutoff),
		slog.Int("published", result.Published),
		slog.Int("events", result.Events),
	)...)
	return result, nil
}
