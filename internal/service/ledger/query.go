package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// AcceptFunc filters the postings returned by range queries. A nil
// AcceptFunc accepts everything.
type AcceptFunc func(source domain.ActivitySource, posting domain.Shipment) bool

// GetShipmentAndRefunds returns every row, Draft and Published, whose event
// date falls within [dateFrom, dateTo] by calendar day. A zero bound leaves
// that side open. Rows are raw revisions: reversals carry negated amounts, so
// summing a lineage gives its net value.
func (s *Service) GetShipmentAndRefunds(ctx context.Context, dateFrom, dateTo time.Time, accept AcceptFunc) ([]domain.Posting, error) {
	rows, err := s.shipments.List(ctx, s.rangeFilter(dateFrom, dateTo))
	if err != nil {
		return nil, fmt.Errorf("ledger.GetShipmentAndRefunds: %w", err)
	}

	out := make([]domain.Posting, 0, len(rows))
	for i := range rows {
		p := rows[i].Posting()
		if accept != nil && !accept(p.Source, p.Shipment) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetActivitySourceShipmentAndRefunds is GetShipmentAndRefunds grouped by
// the source each row was recorded from.
func (s *Service) GetActivitySourceShipmentAndRefunds(
	ctx context.Context,
	dateFrom, dateTo time.Time,
	accept AcceptFunc,
) (map[domain.ActivitySource][]domain.Posting, error) {
	postings, err := s.GetShipmentAndRefunds(ctx, dateFrom, dateTo, accept)
	if err != nil {
		return nil, err
	}
	grouped := make(map[domain.ActivitySource][]domain.Posting)
	for _, p := range postings {
		grouped[p.Source] = append(grouped[p.Source], p)
	}
	return grouped, nil
}

func (s *Service) rangeFilter(dateFrom, dateTo time.Time) domain.RowFilter {
	var f domain.RowFilter
	if !dateFrom.IsZero() {
		f.From = s.dayStart(dateFrom)
	}
	if !dateTo.IsZero() {
		f.To = s.dayEnd(dateTo)
	}
	return f
}

// Inspect returns the stored rows matching f, for audits and tooling.
func (s *Service) Inspect(ctx context.Context, f domain.RowFilter) ([]domain.LedgerRow, error) {
	rows, err := s.shipments.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ledger.Inspect: %w", err)
	}
	return rows, nil
}

// CountRows returns the number of stored rows matching f.
func (s *Service) CountRows(ctx context.Context, f domain.RowFilter) (int, error) {
	n, err := s.shipments.Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("ledger.CountRows: %w", err)
	}
	return n, nil
}

// GetOrder returns an order with the head snapshot of each of its lineages.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("ledger.GetOrder: %w", err)
	}

	rows, err := s.shipments.List(ctx, domain.RowFilter{OrderID: &orderID})
	if err != nil {
		return nil, fmt.Errorf("ledger.GetOrder: %w", err)
	}

	heads := make(map[string]*domain.LedgerRow)
	var roots []string
	for i := range rows {
		row := &rows[i]
		cur, ok := heads[row.RootID]
		if !ok {
			roots = append(roots, row.RootID)
		}
		if !ok || isNewerHead(row, cur) {
			heads[row.RootID] = row
		}
	}
	for _, root := range roots {
		snap := heads[root].Snapshot()
		if snap.IsRefund() {
			order.AddRefund(snap)
		} else {
			order.AddShipment(snap)
		}
	}
	return order, nil
}

// isNewerHead reports whether row takes precedence over cur as lineage head:
// Drafts win over Published rows, then the higher revision wins.
func isNewerHead(row, cur *domain.LedgerRow) bool {
	if row.IsDraft() != cur.IsDraft() {
		return row.IsDraft()
	}
	return row.Revision > cur.Revision
}
