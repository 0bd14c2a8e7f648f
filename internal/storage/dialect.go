package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour and database/sql driver of a store.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case SQLite, Postgres:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("unknown sql dialect %q", s)
	}
}

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// month, year and monthStart render date expressions. Transaction dates are
// stored as YYYY-MM-DD text in SQLite and as DATE in PostgreSQL.
func (d Dialect) month(col string) string {
	if d == Postgres {
		return fmt.Sprintf("EXTRACT(MONTH FROM %s)::int", col)
	}
	return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", col)
}

func (d Dialect) year(col string) string {
	if d == Postgres {
		return fmt.Sprintf("EXTRACT(YEAR FROM %s)::int", col)
	}
	return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", col)
}

func (d Dialect) monthStart(monthCol, yearCol string) string {
	if d == Postgres {
		return fmt.Sprintf("make_date(%s, %s, 1)", yearCol, monthCol)
	}
	return fmt.Sprintf("printf('%%04d-%%02d-01', %s, %s)", yearCol, monthCol)
}

// date casts a bound parameter to a date where the dialect needs it.
func (d Dialect) date(param string) string {
	if d == Postgres {
		return param + "::date"
	}
	return param
}

// collate makes text ordering bytewise in both dialects.
func (d Dialect) collate(col string) string {
	if d == Postgres {
		return col + ` COLLATE "C"`
	}
	return col
}

var placeholder = regexp.MustCompile(`\?(\d+)`)

// rebind rewrites ?N placeholders to the dialect's positional form.
func (d Dialect) rebind(query string) string {
	if d == Postgres {
		return placeholder.ReplaceAllString(query, `$$$1`)
	}
	return query
}

// Open connects to the store and checks it is reachable. For SQLite the
// parent directory of the database file is created if needed.
func Open(ctx context.Context, d Dialect, dsn string) (*sql.DB, error) {
	if d == SQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}

	if d == Postgres {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
