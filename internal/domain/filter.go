package domain

import "time"

// RowFilter selects ledger rows. Zero fields do not filter.
// From is inclusive, To exclusive.
type RowFilter struct {
	From      time.Time
	To        time.Time
	OrderID   *string
	RootID    *string
	Status    *PostingStatus
	SourceKey *string
	Limit     int
}

// ArchiveStats counts the rows affected per table by an archive copy or purge.
type ArchiveStats struct {
	Orders          int
	Shipments       int
	InvoicingInfos  int
	FinancialEvents int
}

// Total is the number of rows across every table.
func (s ArchiveStats) Total() int {
	return s.Orders + s.Shipments + s.InvoicingInfos + s.FinancialEvents
}
