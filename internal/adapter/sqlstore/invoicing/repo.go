// Package invoicing persists invoice metadata keyed by lineage root id.
package invoicing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

const table = "invoicing_infos"

// Repo provides invoicing info persistence.
type Repo struct {
	db *sqlstore.DB
}

// New creates a new invoicing repository.
func New(db *sqlstore.DB) *Repo {
	return &Repo{db: db}
}

// Upsert replaces the info stored for rootID.
func (r *Repo) Upsert(ctx context.Context, rootID string, info domain.InvoicingInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("invoicing_info %s marshal: %w", rootID, err)
	}

	stmt := r.db.Builder().
		Insert(table).
		Columns("shipment_root_id", "json").
		Values(rootID, string(b)).
		Suffix("ON CONFLICT (shipment_root_id) DO UPDATE SET json = excluded.json")

	_, err = sqlstore.Exec(ctx, r.db, stmt)
	return sqlstore.MapError(err, "invoicing_info", rootID)
}

// Get returns domain.ErrNotFound when nothing is stored for rootID.
func (r *Repo) Get(ctx context.Context, rootID string) (*domain.InvoicingInfo, error) {
	stmt := r.db.Builder().
		Select("json").
		From(table).
		Where(squirrel.Eq{"shipment_root_id": rootID})

	var raw string
	if err := sqlstore.QueryRow(ctx, r.db, stmt).Scan(&raw); err != nil {
		return nil, sqlstore.MapError(err, "invoicing_info", rootID)
	}
	var info domain.InvoicingInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("invoicing_info %s decode: %w", rootID, err)
	}
	return &info, nil
}

// DeleteOrphans removes infos whose lineage no longer has any row.
func (r *Repo) DeleteOrphans(ctx context.Context) (int64, error) {
	return r.delete(ctx, squirrel.Expr("shipment_root_id NOT IN (SELECT root_id FROM shipments)"))
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
		return 0, sqlstore.MapError(err, "invoicing_info", "*")
	}
	return res.RowsAffected()
}
