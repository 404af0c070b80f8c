// Package sqlstore holds the ledger database handle shared by the table
// repositories: connection setup for SQLite and PostgreSQL, transactions,
// migrations and error mapping.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	_ "modernc.org/sqlite"             // sqlite driver for database/sql

	"github.com/icingerpower/AmzBooks-sub000/internal/config"
)

// DB is a ledger database handle.
type DB struct {
	sql     *sql.DB
	dialect Dialect
	path    string // SQLite file, empty for PostgreSQL
}

// Open connects to the database described by cfg, pings it for fail-fast
// validation and applies migrations when cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg config.StorageConfig) (*DB, error) {
	var (
		db  *DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = openPostgres(ctx, cfg)
	case config.DriverSQLite:
		db, err = OpenSQLite(ctx, cfg.Path(), cfg.BusyTimeout)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// OpenSQLite opens (creating if needed) the SQLite file at path.
// Transactions take the write lock up front so that a read-decide-write
// sequence cannot interleave with another writer.
func OpenSQLite(ctx context.Context, path string, busyTimeout time.Duration) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := sql.Open(SQLite.driverName, sqliteDSN(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return &DB{sql: db, dialect: SQLite, path: path}, nil
}

func sqliteDSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func openPostgres(ctx context.Context, cfg config.StorageConfig) (*DB, error) {
	db, err := sql.Open(Postgres.driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{sql: db, dialect: Postgres}, nil
}

// New wraps an already opened *sql.DB.
func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{sql: db, dialect: dialect}
}

func (d *DB) Dialect() Dialect { return d.dialect }

// Path is the SQLite file backing the handle, empty for PostgreSQL.
func (d *DB) Path() string { return d.path }

func (d *DB) Builder() squirrel.StatementBuilderType { return d.dialect.Builder() }

// SQL exposes the underlying handle for migrations and tests.
func (d *DB) SQL() *sql.DB { return d.sql }

func (d *DB) Close() error { return d.sql.Close() }
