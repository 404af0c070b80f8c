package shipment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/order"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/shipment"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/testhelper"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

var source = domain.ActivitySource{Type: domain.ActivitySourceReport, Channel: "amazon", Subchannel: "amazon.fr", ReportOrMethod: "VAT"}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func posting(t *testing.T, id string, at time.Time, taxed, taxes float64) domain.Shipment {
	t.Helper()
	a, err := domain.NewActivity(domain.ActivityParams{
		EventID:         "evt-" + id,
		ActivityID:      id,
		DateTime:        at,
		Currency:        "EUR",
		CountryCodeFrom: "FR",
		CountryCodeTo:   "DE",
		TaxSource:       domain.TaxSourceMarketplaceProvided,
		Amount:          domain.NewAmountFromFloat(taxed, taxes),
	})
	require.NoError(t, err)
	return domain.NewShipment(a)
}

func draftRow(id, root string, revision int, kind domain.RevisionKind, s domain.Shipment, at time.Time) domain.LedgerRow {
	return domain.LedgerRow{
		ID:        id,
		OrderID:   "402-100",
		RootID:    root,
		Revision:  revision,
		Kind:      kind,
		Status:    domain.PostingStatusDraft,
		Original:  s,
		Current:   s,
		EventDate: at,
		Source:    source,
	}
}

func setup(t *testing.T) (*sqlstore.DB, *shipment.Repo) {
	t.Helper()
	db := testhelper.SetupSQLite(t)
	require.NoError(t, order.New(db).Ensure(context.Background(), "402-100"))
	return db, shipment.New(db)
}

func TestRepo_InsertAndGet(t *testing.T) {
	t.Parallel()
	_, repo := setup(t)
	ctx := context.Background()

	s := posting(t, "act1", day(2023, 1, 1, 10), 120, 20)
	require.NoError(t, repo.Insert(ctx, draftRow("act1", "act1", 0, domain.RevisionOriginal, s, s.Date())))

	got, err := repo.GetByID(ctx, "act1")
	require.NoError(t, err)
	assert.Equal(t, domain.PostingStatusDraft, got.Status)
	assert.Equal(t, domain.RevisionOriginal, got.Kind)
	assert.Equal(t, source, got.Source)
	assert.True(t, got.EventDate.Equal(day(2023, 1, 1, 10)))
	assert.False(t, got.Current.IsDifferentTaxes(s))
	assert.Nil(t, got.Published)

	err = repo.Insert(ctx, draftRow("act1", "act1", 1, domain.RevisionOriginal, s, s.Date()))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_HeadPrefersLatestDraft(t *testing.T) {
	t.Parallel()
	_, repo := setup(t)
	ctx := context.Background()

	s := posting(t, "act1", day(2023, 1, 1, 10), 120, 20)
	require.NoError(t, repo.Insert(ctx, draftRow("act1", "act1", 0, domain.RevisionOriginal, s, s.Date())))
	require.NoError(t, repo.MarkPublished(ctx, "act1", day(2023, 2, 1, 0)))

	head, err := repo.Head(ctx, "act1")
	require.NoError(t, err)
	assert.Equal(t, "act1", head.ID)
	assert.True(t, head.IsPublished())
	require.NotNil(t, head.Published)
	require.NotNil(t, head.PublicationDate)

	conflict := day(2023, 2, 15, 0)
	require.NoError(t, repo.Insert(ctx, draftRow("act1-rev-1", "act1", 1, domain.RevisionReversal, s.Negated(), conflict)))
	require.NoError(t, repo.Insert(ctx, draftRow("act1-v-1", "act1", 2, domain.RevisionVersion, posting(t, "act1", day(2023, 1, 1, 10), 240, 40), conflict)))

	head, err = repo.Head(ctx, "act1")
	require.NoError(t, err)
	assert.Equal(t, "act1-v-1", head.ID)

	next, err := repo.NextRevision(ctx, "act1")
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	next, err = repo.NextRevision(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	_, err = repo.Head(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_UpdateDraftRejectsPublished(t *testing.T) {
	t.Parallel()
	_, repo := setup(t)
	ctx := context.Background()

	s := posting(t, "act1", day(2023, 1, 1, 10), 120, 20)
	require.NoError(t, repo.Insert(ctx, draftRow("act1", "act1", 0, domain.RevisionOriginal, s, s.Date())))

	later := posting(t, "act1", day(2023, 1, 1, 12), 120, 20)
	require.NoError(t, repo.UpdateDraft(ctx, "act1", later, later.Date(), source))

	got, err := repo.GetByID(ctx, "act1")
	require.NoError(t, err)
	assert.True(t, got.EventDate.Equal(day(2023, 1, 1, 12)))
	assert.True(t, got.Original.Date().Equal(day(2023, 1, 1, 10)), "original snapshot is first-seen")

	require.NoError(t, repo.MarkPublished(ctx, "act1", time.Now()))
	err = repo.UpdateDraft(ctx, "act1", later, later.Date(), source)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = repo.MarkPublished(ctx, "act1", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_ListCountAndBounds(t *testing.T) {
	t.Parallel()
	_, repo := setup(t)
	ctx := context.Background()

	for i, at := range []time.Time{day(2023, 1, 5, 9), day(2023, 1, 20, 9), day(2023, 2, 3, 9)} {
		id := []string{"a", "b", "c"}[i]
		s := posting(t, id, at, 10, 2)
		require.NoError(t, repo.Insert(ctx, draftRow(id, id, 0, domain.RevisionOriginal, s, at)))
	}
	require.NoError(t, repo.MarkPublished(ctx, "a", time.Now()))

	rows, err := repo.List(ctx, domain.RowFilter{From: day(2023, 1, 6, 0), To: day(2023, 2, 4, 0)})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, "c", rows[1].ID)

	drafts, err := repo.ListDraftsBefore(ctx, day(2023, 2, 1, 0))
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "b", drafts[0].ID)

	published := domain.PostingStatusPublished
	n, err := repo.Count(ctx, domain.RowFilter{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	first, last, err := repo.EventDateBounds(ctx, source.Key())
	require.NoError(t, err)
	assert.True(t, first.Equal(day(2023, 1, 5, 9)))
	assert.True(t, last.Equal(day(2023, 2, 3, 9)))

	first, last, err = repo.EventDateBounds(ctx, "1|other|x|y")
	require.NoError(t, err)
	assert.True(t, first.IsZero() && last.IsZero())

	deleted, err := repo.DeleteDrafts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	n, err = repo.Count(ctx, domain.RowFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
