package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Querier is the common interface implemented by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txCtxKey is scoped to one database so that a copy between two databases
// never picks up the other side's transaction.
type txCtxKey struct {
	db *sql.DB
}

func (d *DB) withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txCtxKey{db: d.sql}, tx)
}

func (d *DB) txFromCtx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txCtxKey{db: d.sql}).(*sql.Tx)
	return tx, ok
}

// QuerierFromCtx returns the transaction from context if present,
// otherwise returns the database handle.
func QuerierFromCtx(ctx context.Context, db *DB) Querier {
	if tx, ok := db.txFromCtx(ctx); ok {
		return tx
	}
	return db.sql
}

// Exec builds and runs a statement.
func Exec(ctx context.Context, db *DB, stmt squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return QuerierFromCtx(ctx, db).ExecContext(ctx, query, args...)
}

// Query builds and runs a query returning rows.
func Query(ctx context.Context, db *DB, stmt squirrel.Sqlizer) (*sql.Rows, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return QuerierFromCtx(ctx, db).QueryContext(ctx, query, args...)
}

// QueryRow builds and runs a single-row query. Build errors surface on Scan.
func QueryRow(ctx context.Context, db *DB, stmt squirrel.Sqlizer) Row {
	query, args, err := stmt.ToSql()
	if err != nil {
		return errRow{err: fmt.Errorf("build query: %w", err)}
	}
	return QuerierFromCtx(ctx, db).QueryRowContext(ctx, query, args...)
}

// Row is satisfied by *sql.Row.
type Row interface {
	Scan(dest ...any) error
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
