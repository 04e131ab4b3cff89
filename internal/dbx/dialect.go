package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx").
	_ "modernc.org/sqlite"             // Pure-Go SQLite driver ("sqlite").
)

// Dialect selects the SQL flavour repositories talk to.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// sqliteParams are added to every SQLite DSN unless the DSN already sets
// the same key. BEGIN IMMEDIATE makes every transaction take the write lock
// up front, so two processes sharing the file serialize their
// read-modify-write cycles.
var sqliteParams = []struct{ key, param string }{
	{"busy_timeout", "_pragma=busy_timeout(5000)"},
	{"journal_mode", "_pragma=journal_mode(WAL)"},
	{"_txlock", "_txlock=immediate"},
}

// sqliteDSN turns a path or file: URI into a file: URI carrying
// sqliteParams next to any parameters the caller supplied.
func sqliteDSN(dsn string) string {
	path, query, _ := strings.Cut(dsn, "?")
	params := make([]string, 0, len(sqliteParams)+1)
	if query != "" {
		params = append(params, query)
	}
	for _, p := range sqliteParams {
		if !strings.Contains(query, p.key) {
			params = append(params, p.param)
		}
	}
	return "file:" + strings.TrimPrefix(path, "file:") + "?" + strings.Join(params, "&")
}

// ParseDialect maps a configuration value onto a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3", "":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s)
	}
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// GooseDialect returns the dialect name understood by goose.
func (d Dialect) GooseDialect() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Rebind rewrites '?' placeholders into '$N' for PostgreSQL. Queries in this
// module never contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Open connects to the database and verifies the connection.
//
// SQLite connections are capped at one: the driver serializes writers anyway
// and an in-memory database only exists on the connection that created it.
func Open(ctx context.Context, d Dialect, dsn string) (*sql.DB, error) {
	if d == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if d == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
