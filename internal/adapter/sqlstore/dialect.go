package sqlstore

import (
	"github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"

	"github.com/icingerpower/AmzBooks-sub000/internal/config"
)

// Dialect carries the per-engine differences: driver name, bind-parameter
// style and goose dialect. The schema itself is shared.
type Dialect struct {
	name        string
	driverName  string
	placeholder squirrel.PlaceholderFormat
	goose       goose.Dialect
}

var (
	SQLite = Dialect{
		name:        config.DriverSQLite,
		driverName:  "sqlite",
		placeholder: squirrel.Question,
		goose:       goose.DialectSQLite3,
	}
	Postgres = Dialect{
		name:        config.DriverPostgres,
		driverName:  "pgx",
		placeholder: squirrel.Dollar,
		goose:       goose.DialectPostgres,
	}
)

func (d Dialect) String() string { return d.name }

// Builder returns a squirrel statement builder using the dialect's placeholders.
func (d Dialect) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.placeholder)
}
