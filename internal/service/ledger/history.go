package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// CreateActivityUpdateModel returns the audit trail of the lineage that
// anyRevisionID belongs to: one entry per row, in creation order.
func (s *Service) CreateActivityUpdateModel(ctx context.Context, anyRevisionID string) ([]domain.ActivityUpdate, error) {
	row, err := s.shipments.GetByID(ctx, anyRevisionID)
	if err != nil {
		return nil, fmt.Errorf("ledger.CreateActivityUpdateModel: %w", err)
	}
	lineage, err := s.shipments.Lineage(ctx, row.RootID)
	if err != nil {
		return nil, fmt.Errorf("ledger.CreateActivityUpdateModel: %w", err)
	}

	updates := make([]domain.ActivityUpdate, 0, len(lineage))
	for i := range lineage {
		r := &lineage[i]
		snap := r.Snapshot()
		updates = append(updates, domain.ActivityUpdate{
			Date:     r.EventDate,
			Type:     domain.DocumentTypeFor(snap.Kind(), r.Kind),
			Number:   r.ID,
			Amount:   snap.Total().Taxed,
			Currency: snap.Currency(),
			Status:   r.Status,
		})
	}
	return updates, nil
}

// FinancialEvents returns the documents emitted when the row was published.
func (s *Service) FinancialEvents(ctx context.Context, rowID string) ([]domain.FinancialEvent, error) {
	events, err := s.events.ListByShipment(ctx, rowID)
	if err != nil {
		return nil, fmt.Errorf("ledger.FinancialEvents: %w", err)
	}
	return events, nil
}

// BatchFinancialEvents returns every document emitted by one publish sweep.
func (s *Service) BatchFinancialEvents(ctx context.Context, batch uuid.UUID) ([]domain.FinancialEvent, error) {
	events, err := s.events.ListByBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("ledger.BatchFinancialEvents: %w", err)
	}
	return events, nil
}
