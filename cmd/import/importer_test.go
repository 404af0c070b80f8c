package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
	"github.com/icingerpower/AmzBooks-sub000/internal/service/ledger"
)

type recordCall struct {
	orderID  string
	update   bool
	conflict time.Time
	posting  domain.Shipment
}

type fakeRecorder struct {
	calls   []recordCall
	outcome ledger.Outcome
	err     error
}

func (f *fakeRecorder) RecordShipmentFromSource(_ context.Context, orderID string, _ domain.ActivitySource, p domain.Shipment, d time.Time) (ledger.Outcome, error) {
	f.calls = append(f.calls, recordCall{orderID: orderID, conflict: d, posting: p})
	return f.outcome, f.err
}

func (f *fakeRecorder) RecordShipmentUpdated(_ context.Context, orderID string, _ domain.ActivitySource, p domain.Shipment, d time.Time) (ledger.Outcome, error) {
	f.calls = append(f.calls, recordCall{orderID: orderID, update: true, conflict: d, posting: p})
	return f.outcome, f.err
}

const validLine = `{"orderId":"402-0001","source":{"type":0,"channel":"amazon","subchannel":"amazon.fr","reportOrMethod":"VAT"},` +
	`"conflictDate":"2024-01-05","shipment":{"kind":"Shipment","activities":[{"eventId":"e1","activityId":"a1",` +
	`"dateTime":"2023-12-20T10:00:00Z","currency":"EUR","countryCodeFrom":"FR","countryCodeTo":"FR",` +
	`"amountTaxed":"12.00","amountTaxes":"2.00","taxSource":0,"taxScheme":0,"taxJurisdictionLevel":0,"saleType":0}]}}`

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestImport_RecordsValidLines(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{outcome: ledger.OutcomeCreated}
	input := validLine + "\n\n" + strings.Replace(validLine, `"conflictDate"`, `"update":true,"conflictDate"`, 1) + "\n"

	sum, err := newImporter(rec, quietLogger()).Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Lines)
	assert.Equal(t, 2, sum.Count(ledger.CategoryRecorded))
	require.Len(t, rec.calls, 2)
	assert.False(t, rec.calls[0].update)
	assert.True(t, rec.calls[1].update)
	assert.Equal(t, "402-0001", rec.calls[0].orderID)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), rec.calls[0].conflict)
	assert.Equal(t, "a1", rec.calls[0].posting.ID())
}

func TestImport_MalformedLinesAreRejected(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{outcome: ledger.OutcomeCreated}
	input := strings.Join([]string{
		`{not json`,
		strings.Replace(validLine, `"2024-01-05"`, `"someday"`, 1),
		strings.Replace(validLine, `"kind":"Shipment"`, `"kind":"Invoice"`, 1),
		validLine,
	}, "\n")

	sum, err := newImporter(rec, quietLogger()).Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Lines)
	assert.Equal(t, 3, sum.Count(ledger.CategoryRejected))
	assert.Equal(t, 1, sum.Count(ledger.CategoryRecorded))
	assert.Len(t, rec.calls, 1, "only the valid line reaches the ledger")
}

func TestImport_ClassifiesLedgerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ledger.Category
	}{
		{"unknown lineage", domain.ErrUnknownLineage, ledger.CategoryRejected},
		{"missing row", domain.ErrNotFound, ledger.CategoryStorageFailure},
		{"validation", domain.NewValidationError("order_id", "required"), ledger.CategoryRejected},
		{"storage", errors.New("disk I/O error"), ledger.CategoryStorageFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &fakeRecorder{err: tt.err}
			sum, err := newImporter(rec, quietLogger()).Import(context.Background(), strings.NewReader(validLine))
			require.NoError(t, err)
			assert.Equal(t, 1, sum.Count(tt.want))
		})
	}
}

func TestImport_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &fakeRecorder{outcome: ledger.OutcomeCreated}
	_, err := newImporter(rec, quietLogger()).Import(ctx, strings.NewReader(validLine))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestSummary_ByCategory(t *testing.T) {
	t.Parallel()

	var sum summary
	sum.add(ledger.CategoryCorrected)
	sum.add(ledger.CategoryCorrected)
	sum.add(ledger.CategoryStorageFailure)

	assert.Equal(t, map[string]int{
		"a correction was recorded": 2,
		"internal storage failure":  1,
	}, sum.ByCategory())
	assert.Equal(t, 1, sum.StorageFailures())
}
