// Package testhelper provides ready-to-use ledger databases for tests.
package testhelper

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore"
)

// SetupSQLite creates a migrated SQLite database in a fresh temporary
// directory. The handle is closed via t.Cleanup.
func SetupSQLite(t *testing.T) *sqlstore.DB {
	t.Helper()
	return OpenSQLiteAt(t, filepath.Join(t.TempDir(), "Orders.db"))
}

// OpenSQLiteAt opens and migrates the SQLite file at path.
func OpenSQLiteAt(t *testing.T, path string) *sqlstore.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlstore.OpenSQLite(ctx, path, 5*time.Second)
	if err != nil {
		t.Fatalf("testhelper: open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("testhelper: migrate sqlite: %v", err)
	}
	return db
}

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// SetupPostgres starts a shared PostgreSQL container (once for the entire
// test run), applies migrations and returns a handle with every ledger table
// emptied. The container lives until the process exits.
func SetupPostgres(t *testing.T) *sqlstore.DB {
	t.Helper()

	once.Do(func() {
		sharedDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", initErr)
	}

	raw, err := sql.Open("pgx", sharedDSN)
	if err != nil {
		t.Fatalf("testhelper: sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := raw.ExecContext(ctx, `TRUNCATE financial_events, invoicing_infos, shipments, orders`); err != nil {
		t.Fatalf("testhelper: truncate: %v", err)
	}

	return sqlstore.New(raw, sqlstore.Postgres)
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	raw, err := sql.Open("pgx", dsn)
	if err != nil {
		return "", fmt.Errorf("sql.Open: %w", err)
	}
	defer raw.Close()

	if err := raw.PingContext(ctx); err != nil {
		return "", fmt.Errorf("db ping: %w", err)
	}

	if err := sqlstore.New(raw, sqlstore.Postgres).Migrate(ctx); err != nil {
		return "", err
	}

	return dsn, nil
}
