package config

import (
	"path/filepath"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig selects the ledger database. SQLite keeps one file per working directory.
type StorageConfig struct {
	Driver       string        `yaml:"driver"         env:"STORAGE_DRIVER"         env-default:"sqlite"`
	WorkingDir   string        `yaml:"working_dir"    env:"STORAGE_WORKING_DIR"    env-default:"."`
	FileName     string        `yaml:"file_name"      env:"STORAGE_FILE_NAME"      env-default:"Orders.db"`
	DSN          string        `yaml:"dsn"            env:"STORAGE_DSN"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"   env:"STORAGE_BUSY_TIMEOUT"   env-default:"5s"`
	MaxOpenConns int           `yaml:"max_open_conns" env:"STORAGE_MAX_OPEN_CONNS" env-default:"10"`
	AutoMigrate  bool          `yaml:"auto_migrate"   env:"STORAGE_AUTO_MIGRATE"   env-default:"true"`
}

// Path is the SQLite database file.
func (s StorageConfig) Path() string {
	return filepath.Join(s.WorkingDir, s.FileName)
}

// LedgerConfig holds bookkeeping settings.
type LedgerConfig struct {
	// Timezone in which calendar-day bounds (publish cut-off, query ranges, archive years) are computed.
	Timezone string `yaml:"timezone" env:"LEDGER_TIMEZONE" env-default:"UTC"`

	// Location is parsed from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// MetricsConfig controls the Prometheus textfile written by the commands on exit.
type MetricsConfig struct {
	Namespace    string `yaml:"namespace"     env:"METRICS_NAMESPACE" env-default:"amzbooks"`
	TextfilePath string `yaml:"textfile_path" env:"METRICS_TEXTFILE"`
}

func (m MetricsConfig) Enabled() bool { return m.TextfilePath != "" }
