package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	reversalInfix = "-rev-"
	versionInfix  = "-v-"
)

// ReversalID and VersionID derive revision ids from a lineage root and a
// millisecond timestamp.
func ReversalID(rootID string, stamp int64) string {
	return fmt.Sprintf("%s%s%d", rootID, reversalInfix, stamp)
}

func VersionID(rootID string, stamp int64) string {
	return fmt.Sprintf("%s%s%d", rootID, versionInfix, stamp)
}

// LedgerRow is one persisted revision of a posting.
//
// Original is the first-seen snapshot, Current is rewritten while the row is
// Draft and Published is frozen by publish. Revision orders the rows of a
// lineage by creation.
type LedgerRow struct {
	ID              string
	OrderID         string
	RootID          string
	Revision        int
	Kind            RevisionKind
	Status          PostingStatus
	Original        Shipment
	Current         Shipment
	Published       *Shipment
	PublicationDate *time.Time
	EventDate       time.Time
	Source          ActivitySource
}

func (r *LedgerRow) IsDraft() bool { return r.Status == PostingStatusDraft }

func (r *LedgerRow) IsPublished() bool { return r.Status == PostingStatusPublished }

// Snapshot is the frozen published content, or the current content of a draft.
func (r *LedgerRow) Snapshot() Shipment {
	if r.Published != nil {
		return *r.Published
	}
	return r.Current
}

// Posting is a raw ledger row as returned to downstream consumers.
type Posting struct {
	ID        string
	RootID    string
	OrderID   string
	Kind      RevisionKind
	Status    PostingStatus
	Source    ActivitySource
	EventDate time.Time
	Shipment  Shipment
}

func (r *LedgerRow) Posting() Posting {
	return Posting{
		ID:        r.ID,
		RootID:    r.RootID,
		OrderID:   r.OrderID,
		Kind:      r.Kind,
		Status:    r.Status,
		Source:    r.Source,
		EventDate: r.EventDate,
		Shipment:  r.Snapshot(),
	}
}

// ActivityUpdate is one audit line of a lineage.
type ActivityUpdate struct {
	Date     time.Time
	Type     DocumentType
	Number   string
	Amount   decimal.Decimal
	Currency string
	Status   PostingStatus
}

// FinancialEvent is an accounting document emitted when a row is published.
type FinancialEvent struct {
	ID         string
	ShipmentID string
	Type       DocumentType
	EventDate  time.Time
	Amount     decimal.Decimal
	Currency   string
	Content    Shipment
	BatchID    uuid.UUID
}

// FinancialEventsFor builds one event per activity of a row being published.
// A single-activity row gives "<prefix>-<row>[-<sub>]"; several activities
// give "<prefix>-<row>-<position>[-<sub>]" so ids stay unique whatever the
// sub-activity ids are.
func FinancialEventsFor(row *LedgerRow, batch uuid.UUID) []FinancialEvent {
	snap := row.Snapshot()
	acts := snap.Activities()
	docType := DocumentTypeFor(snap.Kind(), row.Kind)
	events := make([]FinancialEvent, 0, len(acts))
	for i, a := range acts {
		ref := row.ID
		if len(acts) > 1 {
			ref += fmt.Sprintf("-%d", i+1)
		}
		if sub := a.SubActivityID(); sub != "" {
			ref += "-" + sub
		}
		events = append(events, FinancialEvent{
			ID:         docType.Prefix() + "-" + ref,
			ShipmentID: row.ID,
			Type:       docType,
			EventDate:  row.EventDate,
			Amount:     a.Taxed(),
			Currency:   a.Currency(),
			Content:    snap,
			BatchID:    batch,
		})
	}
	return events
}
