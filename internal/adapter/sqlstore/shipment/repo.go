// Package shipment persists ledger rows (table shipments): every revision of
// every shipment and refund lineage.
package shipment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

const table = "shipments"

var columns = []string{
	"id", "order_id", "root_id", "revision", "kind", "posting_kind", "status",
	"original_json", "current_json", "published_json", "publication_date",
	"event_date", "source_key",
}

// Repo provides ledger row persistence.
type Repo struct {
	db *sqlstore.DB
}

// New creates a new shipment repository.
func New(db *sqlstore.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Insert appends a new row.
func (r *Repo) Insert(ctx context.Context, row domain.LedgerRow) error {
	original, err := json.Marshal(row.Original)
	if err != nil {
		return fmt.Errorf("shipment %s marshal original: %w", row.ID, err)
	}
	current, err := json.Marshal(row.Current)
	if err != nil {
		return fmt.Errorf("shipment %s marshal current: %w", row.ID, err)
	}
	var published, publicationDate any
	if row.Published != nil {
		b, err := json.Marshal(row.Published)
		if err != nil {
			return fmt.Errorf("shipment %s marshal published: %w", row.ID, err)
		}
		published = string(b)
	}
	if row.PublicationDate != nil {
		publicationDate = sqlstore.FormatTime(*row.PublicationDate)
	}

	stmt := r.db.Builder().
		Insert(table).
		Columns(columns...).
		Values(
			row.ID, row.OrderID, row.RootID, row.Revision, string(row.Kind), string(row.Current.Kind()),
			string(row.Status), string(original), string(current), published, publicationDate,
			sqlstore.FormatTime(row.EventDate), row.Source.Key(),
		)

	_, err = sqlstore.Exec(ctx, r.db, stmt)
	return sqlstore.MapError(err, "shipment", row.ID)
}

// UpdateDraft rewrites the current snapshot of a Draft row.
// Returns domain.ErrNotFound when id is unknown or no longer Draft.
func (r *Repo) UpdateDraft(ctx context.Context, id string, current domain.Shipment, eventDate time.Time, source domain.ActivitySource) error {
	b, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("shipment %s marshal current: %w", id, err)
	}

	stmt := r.db.Builder().
		Update(table).
		Set("current_json", string(b)).
		Set("posting_kind", string(current.Kind())).
		Set("event_date", sqlstore.FormatTime(eventDate)).
		Set("source_key", source.Key()).
		Where(squirrel.Eq{"id": id, "status": string(domain.PostingStatusDraft)})

	res, err := sqlstore.Exec(ctx, r.db, stmt)
	if err != nil {
		return sqlstore.MapError(err, "shipment", id)
	}
	return requireAffected(res, id)
}

// MarkPublished freezes the current snapshot of a Draft row.
func (r *Repo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	stmt := r.db.Builder().
		Update(table).
		Set("status", string(domain.PostingStatusPublished)).
		Set("published_json", squirrel.Expr("current_json")).
		Set("publication_date", sqlstore.FormatTime(at)).
		Where(squirrel.Eq{"id": id, "status": string(domain.PostingStatusDraft)})

	res, err := sqlstore.Exec(ctx, r.db, stmt)
	if err != nil {
		return sqlstore.MapError(err, "shipment", id)
	}
	return requireAffected(res, id)
}

// DeleteDrafts removes every Draft row. Published rows are untouched.
func (r *Repo) DeleteDrafts(ctx context.Context) (int64, error) {
	return r.delete(ctx, squirrel.Eq{"status": string(domain.PostingStatusDraft)})
}

// DeleteBefore removes rows of any status dated before the cut-off.
func (r *Repo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.delete(ctx, squirrel.Lt{"event_date": sqlstore.FormatTime(before)})
}

// DeleteAll truncates the table.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	return r.delete(ctx, nil)
}

func (r *Repo) delete(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	stmt := r.db.Builder().Delete(table)
	if where != nil {
		stmt = stmt.Where(where)
	}
	res, err := sqlstore.Exec(ctx, r.db, stmt)
	if err != nil {
		return 0, sqlstore.MapError(err, "shipment", "*")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("shipment rows affected: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("shipment %s rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("shipment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns one row.
func (r *Repo) GetByID(ctx context.Context, id string) (*domain.LedgerRow, error) {
	stmt := r.db.Builder().Select(columns...).From(table).Where(squirrel.Eq{"id": id})

	row, err := scanRow(sqlstore.QueryRow(ctx, r.db, stmt))
	if err != nil {
		return nil, sqlstore.MapError(err, "shipment", id)
	}
	return row, nil
}

// Head returns the row new content is reconciled against: the latest Draft
// of the lineage, else its latest Published row.
func (r *Repo) Head(ctx context.Context, rootID string) (*domain.LedgerRow, error) {
	stmt := r.db.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"root_id": rootID}).
		OrderBy(
			fmt.Sprintf("CASE status WHEN '%s' THEN 0 ELSE 1 END", domain.PostingStatusDraft),
			"revision DESC",
		).
		Limit(1)

	row, err := scanRow(sqlstore.QueryRow(ctx, r.db, stmt))
	if err != nil {
		return nil, sqlstore.MapError(err, "lineage", rootID)
	}
	return row, nil
}

// NextRevision returns the revision number for the next row of a lineage.
func (r *Repo) NextRevision(ctx context.Context, rootID string) (int, error) {
	stmt := r.db.Builder().
		Select("COALESCE(MAX(revision), -1) + 1").
		From(table).
		Where(squirrel.Eq{"root_id": rootID})

	var next int
	if err := sqlstore.QueryRow(ctx, r.db, stmt).Scan(&next); err != nil {
		return 0, sqlstore.MapError(err, "lineage", rootID)
	}
	return next, nil
}

// Lineage returns every row of a lineage in creation order.
func (r *Repo) Lineage(ctx context.Context, rootID string) ([]domain.LedgerRow, error) {
	return r.list(ctx, domain.RowFilter{RootID: &rootID}, "revision")
}

// ListDraftsBefore returns the Draft rows dated before the cut-off.
func (r *Repo) ListDraftsBefore(ctx context.Context, before time.Time) ([]domain.LedgerRow, error) {
	status := domain.PostingStatusDraft
	return r.List(ctx, domain.RowFilter{To: before, Status: &status})
}

// List returns the rows matching f ordered by event date, then lineage and revision.
func (r *Repo) List(ctx context.Context, f domain.RowFilter) ([]domain.LedgerRow, error) {
	return r.list(ctx, f, "event_date", "root_id", "revision")
}

func (r *Repo) list(ctx context.Context, f domain.RowFilter, orderBy ...string) ([]domain.LedgerRow, error) {
	stmt := r.db.Builder().Select(columns...).From(table)
	stmt = applyFilter(stmt, f).OrderBy(orderBy...)
	if f.Limit > 0 {
		stmt = stmt.Limit(uint64(f.Limit))
	}

	rows, err := sqlstore.Query(ctx, r.db, stmt)
	if err != nil {
		return nil, sqlstore.MapError(err, "shipment", "list")
	}
	defer rows.Close()

	var out []domain.LedgerRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlstore.MapError(err, "shipment", "list")
	}
	return out, nil
}

// Count returns the number of rows matching f. Limit is ignored.
func (r *Repo) Count(ctx context.Context, f domain.RowFilter) (int, error) {
	stmt := applyFilter(r.db.Builder().Select("COUNT(*)").From(table), f)

	var n int
	if err := sqlstore.QueryRow(ctx, r.db, stmt).Scan(&n); err != nil {
		return 0, sqlstore.MapError(err, "shipment", "count")
	}
	return n, nil
}

// EventDateBounds returns the earliest and latest event date recorded for a
// source. Both are zero when the source has no rows.
func (r *Repo) EventDateBounds(ctx context.Context, sourceKey string) (first, last time.Time, err error) {
	stmt := r.db.Builder().
		Select("MIN(event_date)", "MAX(event_date)").
		From(table).
		Where(squirrel.Eq{"source_key": sourceKey})

	var minDate, maxDate sql.NullString
	if err := sqlstore.QueryRow(ctx, r.db, stmt).Scan(&minDate, &maxDate); err != nil {
		return time.Time{}, time.Time{}, sqlstore.MapError(err, "source", sourceKey)
	}
	if !minDate.Valid {
		return time.Time{}, time.Time{}, nil
	}
	if first, err = sqlstore.ParseTime(minDate.String); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if last, err = sqlstore.ParseTime(maxDate.String); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return first, last, nil
}

func applyFilter(stmt squirrel.SelectBuilder, f domain.RowFilter) squirrel.SelectBuilder {
	if !f.From.IsZero() {
		stmt = stmt.Where(squirrel.GtOrEq{"event_date": sqlstore.FormatTime(f.From)})
	}
	if !f.To.IsZero() {
		stmt = stmt.Where(squirrel.Lt{"event_date": sqlstore.FormatTime(f.To)})
	}
	if f.OrderID != nil {
		stmt = stmt.Where(squirrel.Eq{"order_id": *f.OrderID})
	}
	if f.RootID != nil {
		stmt = stmt.Where(squirrel.Eq{"root_id": *f.RootID})
	}
	if f.Status != nil {
		stmt = stmt.Where(squirrel.Eq{"status": string(*f.Status)})
	}
	if f.SourceKey != nil {
		stmt = stmt.Where(squirrel.Eq{"source_key": *f.SourceKey})
	}
	return stmt
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*domain.LedgerRow, error) {
	var (
		row                            domain.LedgerRow
		kind, postingKind, status      string
		originalJSON, currentJSON      string
		publishedJSON, publicationDate sql.NullString
		eventDate, sourceKey           string
	)
	err := s.Scan(
		&row.ID, &row.OrderID, &row.RootID, &row.Revision, &kind, &postingKind, &status,
		&originalJSON, &currentJSON, &publishedJSON, &publicationDate,
		&eventDate, &sourceKey,
	)
	if err != nil {
		return nil, err
	}

	row.Kind = domain.RevisionKind(kind)
	row.Status = domain.PostingStatus(status)
	row.Source = domain.ParseActivitySourceKey(sourceKey)
	pk := domain.PostingKind(postingKind)

	if row.Original, err = decodeShipment(originalJSON, pk); err != nil {
		return nil, fmt.Errorf("shipment %s original: %w", row.ID, err)
	}
	if row.Current, err = decodeShipment(currentJSON, pk); err != nil {
		return nil, fmt.Errorf("shipment %s current: %w", row.ID, err)
	}
	if publishedJSON.Valid {
		published, err := decodeShipment(publishedJSON.String, pk)
		if err != nil {
			return nil, fmt.Errorf("shipment %s published: %w", row.ID, err)
		}
		row.Published = &published
	}
	if row.PublicationDate, err = sqlstore.ParseNullTime(publicationDate); err != nil {
		return nil, err
	}
	if row.EventDate, err = sqlstore.ParseTime(eventDate); err != nil {
		return nil, err
	}
	return &row, nil
}

func decodeShipment(raw string, kind domain.PostingKind) (domain.Shipment, error) {
	var s domain.Shipment
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return domain.Shipment{}, err
	}
	if kind.IsValid() {
		s = s.WithKind(kind)
	}
	return s, nil
}
