package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// RecordInvoicingInfo stores info for the lineage of id; any revision id
// resolves to the lineage root. When the lineage exists, the line item taxes
// are reconciled against its head snapshot.
func (s *Service) RecordInvoicingInfo(ctx context.Context, id string, info domain.InvoicingInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rootID string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		root, err := s.resolveRoot(ctx, id)
		if err != nil {
			return err
		}
		rootID = root

		head, err := s.shipments.Head(ctx, root)
		switch {
		case err == nil:
			info.SetItems(head.Snapshot().Activities(), info.Items)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		return s.invoicing.Upsert(ctx, root, info)
	})
	if err != nil {
		return fmt.Errorf("ledger.RecordInvoicingInfo: %w", err)
	}

	s.log.InfoContext(ctx, "invoicing info recorded", append(runAttrs(ctx),
		slog.String("root_id", rootID),
		slog.Bool("invoiced", info.IsInvoiceDone()),
	)...)
	return nil
}

// GetInvoicingInfo returns the info of the lineage of id. Returns
// domain.ErrNotFound when nothing was recorded.
func (s *Service) GetInvoicingInfo(ctx context.Context, id string) (*domain.InvoicingInfo, error) {
	root, err := s.resolveRoot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ledger.GetInvoicingInfo: %w", err)
	}
	info, err := s.invoicing.Get(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("ledger.GetInvoicingInfo: %w", err)
	}
	return info, nil
}
