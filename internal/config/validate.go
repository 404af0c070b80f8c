package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	if err := c.Ledger.validate(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}

	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Driver {
	case DriverSQLite:
		if strings.TrimSpace(s.FileName) == "" {
			return fmt.Errorf("file_name is required for the sqlite driver")
		}
	case DriverPostgres:
		if s.DSN == "" {
			return fmt.Errorf("dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("driver must be %q or %q (got %q)", DriverSQLite, DriverPostgres, s.Driver)
	}
	if s.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be > 0 (got %d)", s.MaxOpenConns)
	}
	return nil
}

func (l *LedgerConfig) validate() error {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", l.Timezone, err)
	}
	l.Location = loc
	return nil
}
