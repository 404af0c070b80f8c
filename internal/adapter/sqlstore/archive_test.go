package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/financialevent"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/invoicing"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/order"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/shipment"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/testhelper"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

func seedPublished(t *testing.T, db *sqlstore.DB, orderID, id string, at time.Time) {
	t.Helper()
	ctx := context.Background()

	a, err := domain.NewActivity(domain.ActivityParams{
		EventID:         "evt-" + id,
		ActivityID:      id,
		DateTime:        at,
		Currency:        "EUR",
		CountryCodeFrom: "FR",
		CountryCodeTo:   "FR",
		TaxSource:       domain.TaxSourceMarketplaceProvided,
		Amount:          domain.NewAmountFromFloat(60, 10),
	})
	require.NoError(t, err)
	s := domain.NewShipment(a)

	require.NoError(t, order.New(db).Ensure(ctx, orderID))
	row := domain.LedgerRow{
		ID: id, OrderID: orderID, RootID: id, Kind: domain.RevisionOriginal,
		Status: domain.PostingStatusDraft, Original: s, Current: s, EventDate: at,
		Source: domain.ActivitySource{Type: domain.ActivitySourceAPI, Channel: "shopify"},
	}
	repo := shipment.New(db)
	require.NoError(t, repo.Insert(ctx, row))
	require.NoError(t, repo.MarkPublished(ctx, id, at.Add(24*time.Hour)))

	published, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NoError(t, financialevent.New(db).Insert(ctx, domain.FinancialEventsFor(published, uuid.New())))
	require.NoError(t, invoicing.New(db).Upsert(ctx, id, *domain.NewInvoicingInfo(&s, nil, nil, nil)))
}

func TestCopyBefore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := testhelper.SetupSQLite(t)
	dst := testhelper.OpenSQLiteAt(t, filepath.Join(t.TempDir(), "archive", "Orders.db"))

	seedPublished(t, src, "402-1", "old", time.Date(2022, 12, 31, 23, 0, 0, 0, time.UTC))
	seedPublished(t, src, "402-2", "new", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	before := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	stats, err := sqlstore.CopyBefore(ctx, src, dst, before)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveStats{Orders: 1, Shipments: 1, InvoicingInfos: 1, FinancialEvents: 1}, stats)

	_, err = shipment.New(dst).GetByID(ctx, "old")
	require.NoError(t, err)
	_, err = shipment.New(dst).GetByID(ctx, "new")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	events, err := financialevent.New(dst).ListByShipment(ctx, "old")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "INV-old", events[0].ID)
	assert.True(t, events[0].Amount.Equal(domain.NewAmountFromFloat(60, 10).Taxed))

	// Copying twice keeps the destination unchanged.
	_, err = sqlstore.CopyBefore(ctx, src, dst, before)
	require.NoError(t, err)
	n, err := shipment.New(dst).Count(ctx, domain.RowFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestArchiver_CopyTo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := testhelper.SetupSQLite(t)
	seedPublished(t, src, "402-1", "old", time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC))

	archiver := sqlstore.NewArchiver(src, 5*time.Second)

	target := filepath.Join(t.TempDir(), "Orders-2021.db")
	stats, err := archiver.CopyTo(ctx, target, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total())

	_, err = archiver.CopyTo(ctx, src.Path(), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}
