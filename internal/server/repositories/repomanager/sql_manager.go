// Package repomanager provides a RepositoryManager for SQLite and
// PostgreSQL, wiring together repository constructors and database
// migrations (via goose). Migration directories are named after the dialect.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/server/migrations"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/cache"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/usage"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/verifications"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends SQL-backed repositories for one dialect and
// exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// Verifications returns a verifications.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Verifications(db dbx.DBTX) verifications.Repository {
	return verifications.NewSQLRepository(db, m.dialect)
}

// Tokens returns a tokens.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Tokens(db dbx.DBTX) tokens.Repository {
	return tokens.NewSQLRepository(db, m.dialect)
}

// Cache returns a table-backed cache.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Cache(db dbx.DBTX) cache.Repository {
	return cache.NewSQLRepository(db, m.dialect)
}

// Usage returns a usage.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Usage(db dbx.DBTX) usage.Repository {
	return usage.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations for the
// manager's dialect and runs them against db.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.GooseDialect()); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, string(m.dialect)); err != nil {
		return err
	}
	return nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect d.
func NewSQLRepositoryManager(d dbx.Dialect) (RepositoryManager, error) {
	return &SQLRepositoryManager{dialect: d}, nil
}
