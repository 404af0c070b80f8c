package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// ClearUnpublished deletes every Draft row. Published rows are kept.
func (s *Service) ClearUnpublished(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.shipments.DeleteDrafts(ctx)
		deleted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("ledger.ClearUnpublished: %w", err)
	}

	s.log.InfoContext(ctx, "drafts cleared", append(runAttrs(ctx), slog.Int64("deleted", deleted))...)
	return deleted, nil
}

// DeleteDatabase empties every table, Published rows included.
func (s *Service) DeleteDatabase(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.events.DeleteAll(ctx); err != nil {
			return fmt.Errorf("financial events: %w", err)
		}
		if _, err := s.invoicing.DeleteAll(ctx); err != nil {
			return fmt.Errorf("invoicing infos: %w", err)
		}
		if _, err := s.shipments.DeleteAll(ctx); err != nil {
			return fmt.Errorf("shipments: %w", err)
		}
		if _, err := s.orders.DeleteAll(ctx); err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ledger.DeleteDatabase: %w", err)
	}

	s.log.WarnContext(ctx, "ledger database emptied", runAttrs(ctx)...)
	return nil
}

// CopyDatabase copies every row dated up to the end of yearUntil into the
// SQLite file at path. The live database is not modified.
func (s *Service) CopyDatabase(ctx context.Context, path string, yearUntil int) (domain.ArchiveStats, error) {
	if path == "" {
		return domain.ArchiveStats{}, fmt.Errorf("ledger.CopyDatabase: %w", domain.NewValidationError("path", "required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.archive.CopyTo(ctx, path, s.yearEnd(yearUntil))
	if err != nil {
		return domain.ArchiveStats{}, fmt.Errorf("ledger.CopyDatabase: %w", err)
	}

	s.log.InfoContext(ctx, "ledger archived", append(runAttrs(ctx),
		slog.String("path", path),
		slog.Int("year_until", yearUntil),
		slog.Int("shipments", stats.Shipments),
		slog.Int("rows", stats.Total()),
	)...)
	return stats, nil
}

// RemoveInDatabase deletes every row dated up to the end of yearUntil,
// Published rows included, with their financial events. Invoicing infos and
// orders left without rows are deleted too.
func (s *Service) RemoveInDatabase(ctx context.Context, yearUntil int) (domain.ArchiveStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.yearEnd(yearUntil)
	var stats domain.ArchiveStats
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.events.DeleteBefore(ctx, before)
		if err != nil {
			return fmt.Errorf("financial events: %w", err)
		}
		stats.FinancialEvents = int(n)

		if n, err = s.shipments.DeleteBefore(ctx, before); err != nil {
			return fmt.Errorf("shipments: %w", err)
		}
		stats.Shipments = int(n)

		if n, err = s.invoicing.DeleteOrphans(ctx); err != nil {
			return fmt.Errorf("invoicing infos: %w", err)
		}
		stats.InvoicingInfos = int(n)

		if n, err = s.orders.DeleteOrphans(ctx); err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		stats.Orders = int(n)
		return nil
	})
	if err != nil {
		return domain.ArchiveStats{}, fmt.Errorf("ledger.RemoveInDatabase: %w", err)
	}

	s.log.WarnContext(ctx, "ledger rows removed", append(runAttrs(ctx),
		slog.Int("year_until", yearUntil),
		slog.Int("shipments", stats.Shipments),
		slog.Int("rows", stats.Total()),
	)...)
	return stats, nil
}
