// Package order persists seller orders and their delivery address.
package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

const table = "orders"

// Repo provides order persistence.
type Repo struct {
	db *sqlstore.DB
}

// New creates a new order repository.
func New(db *sqlstore.DB) *Repo {
	return &Repo{db: db}
}

// Ensure creates the order row if it does not exist yet.
func (r *Repo) Ensure(ctx context.Context, id string) error {
	stmt := r.db.Builder().
		Insert(table).
		Columns("id").
		Values(id).
		Suffix("ON CONFLICT (id) DO NOTHING")

	_, err := sqlstore.Exec(ctx, r.db, stmt)
	return sqlstore.MapError(err, "order", id)
}

// SetAddress stores the delivery address verbatim, creating the order if needed.
func (r *Repo) SetAddress(ctx context.Context, id string, addr domain.Address) error {
	b, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("order %s marshal address: %w", id, err)
	}

	stmt := r.db.Builder().
		Insert(table).
		Columns("id", "address_json").
		Values(id, string(b)).
		Suffix("ON CONFLICT (id) DO UPDATE SET address_json = excluded.address_json")

	_, err = sqlstore.Exec(ctx, r.db, stmt)
	return sqlstore.MapError(err, "order", id)
}

// SetStore records the store the order was sold on.
func (r *Repo) SetStore(ctx context.Context, id, store string) error {
	stmt := r.db.Builder().
		Insert(table).
		Columns("id", "store").
		Values(id, store).
		Suffix("ON CONFLICT (id) DO UPDATE SET store = excluded.store")

	_, err := sqlstore.Exec(ctx, r.db, stmt)
	return sqlstore.MapError(err, "order", id)
}

// Get returns the order without its postings.
func (r *Repo) Get(ctx context.Context, id string) (*domain.Order, error) {
	stmt := r.db.Builder().
		Select("id", "address_json", "store").
		From(table).
		Where(squirrel.Eq{"id": id})

	var (
		o       domain.Order
		address sql.NullString
	)
	if err := sqlstore.QueryRow(ctx, r.db, stmt).Scan(&o.ID, &address, &o.Store); err != nil {
		return nil, sqlstore.MapError(err, "order", id)
	}
	if address.Valid && address.String != "" {
		var a domain.Address
		if err := json.Unmarshal([]byte(address.String), &a); err != nil {
			return nil, fmt.Errorf("order %s address: %w", id, err)
		}
		o.AddressTo = &a
	}
	return &o, nil
}

// DeleteOrphans removes orders no ledger row refers to.
func (r *Repo) DeleteOrphans(ctx context.Context) (int64, error) {
	return r.delete(ctx, squirrel.Expr("id NOT IN (SELECT order_id FROM shipments)"))
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
		return 0, sqlstore.MapError(err, "order", "*")
	}
	return res.RowsAffected()
}
