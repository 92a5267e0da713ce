package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Dialect captures what differs between the supported SQL backends:
// placeholder style and the DDL used to create the tables.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	schemaFile  string
}

var (
	Postgres = Dialect{Name: "postgres", Placeholder: sq.Dollar, schemaFile: "schema/postgres.sql"}
	SQLite   = Dialect{Name: "sqlite3", Placeholder: sq.Question, schemaFile: "schema/sqlite3.sql"}
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("no dialect for driver %q", driver)
	}
}
