package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestRevisionIDs(t *testing.T) {
	t.Parallel()

	if got := ReversalID("act1", 1700000000000); got != "act1-rev-1700000000000" {
		t.Errorf("ReversalID() = %q", got)
	}
	if got := VersionID("act1", 1700000000000); got != "act1-v-1700000000000" {
		t.Errorf("VersionID() = %q", got)
	}
}

func TestLedgerRow_Snapshot(t *testing.T) {
	t.Parallel()

	draft := NewShipment(mustActivity(t, nil))
	frozen := NewShipment(mustActivity(t, func(p *ActivityParams) { p.Amount = NewAmountFromFloat(240, 40) }))

	row := LedgerRow{Status: PostingStatusDraft, Current: draft}
	if row.Snapshot().IsDifferentTaxes(draft) {
		t.Error("draft snapshot must be the current content")
	}
	row.Published = &frozen
	if row.Snapshot().IsDifferentTaxes(frozen) {
		t.Error("published snapshot must win over current")
	}
}

func TestFinancialEventsFor(t *testing.T) {
	t.Parallel()

	batch := uuid.New()
	conflictDate := time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC)

	single := LedgerRow{
		ID:        "act1-rev-1",
		Kind:      RevisionReversal,
		Current:   NewShipment(mustActivity(t, nil)).Negated(),
		EventDate: conflictDate,
	}
	events := FinancialEventsFor(&single, batch)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.ID != "CN-act1-rev-1" || ev.Type != DocumentCreditNote {
		t.Errorf("event = %s %s", ev.ID, ev.Type)
	}
	if !ev.Amount.Equal(decimal.NewFromInt(-120)) || !ev.EventDate.Equal(conflictDate) || ev.BatchID != batch {
		t.Errorf("event = %+v", ev)
	}

	multi := LedgerRow{
		ID:   "act1",
		Kind: RevisionOriginal,
		Current: NewShipment(
			mustActivity(t, func(p *ActivityParams) { p.SubActivityID = "L1" }),
			mustActivity(t, nil),
		),
	}
	events = FinancialEventsFor(&multi, batch)
	if events[0].ID != "INV-act1-1-L1" || events[1].ID != "INV-act1-2" {
		t.Errorf("ids = %s, %s", events[0].ID, events[1].ID)
	}
}

func TestFinancialEventsFor_UniqueIDs(t *testing.T) {
	t.Parallel()

	sub := func(id string) func(*ActivityParams) {
		return func(p *ActivityParams) { p.SubActivityID = id }
	}
	tests := []struct {
		name string
		acts []Activity
	}{
		{"repeated sub-activity", []Activity{mustActivity(t, sub("L1")), mustActivity(t, sub("L1"))}},
		{"sub-activity looks like a position", []Activity{mustActivity(t, sub("2")), mustActivity(t, nil)}},
		{"single with sub-activity", []Activity{mustActivity(t, sub("L1"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			row := LedgerRow{ID: "act1", Kind: RevisionOriginal, Current: NewShipment(tt.acts...)}
			events := FinancialEventsFor(&row, uuid.New())
			if len(events) != len(tt.acts) {
				t.Fatalf("got %d events, want %d", len(events), len(tt.acts))
			}
			seen := make(map[string]bool, len(events))
			for _, ev := range events {
				if seen[ev.ID] {
					t.Errorf("duplicate event id %s", ev.ID)
				}
				seen[ev.ID] = true
			}
		})
	}
}
