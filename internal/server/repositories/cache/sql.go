package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
)

// SQLRepository keeps cache entries in the cache_entries table.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: d}
}

func (r *SQLRepository) Get(ctx context.Context, url string) (*models.CacheEntry, error) {
	query := `
		SELECT url, result, computed_at
		FROM cache_entries
		WHERE url = ?
	`
	var (
		e        models.CacheEntry
		result   string
		computed int64
	)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), url).Scan(&e.URL, &result, &computed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	e.Result = []byte(result)
	e.ComputedAt = time.Unix(computed, 0)
	return &e, nil
}

func (r *SQLRepository) Put(ctx context.Context, e *models.CacheEntry) error {
	query := `
		INSERT INTO cache_entries (url, result, computed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (url) DO UPDATE
		SET result = excluded.result, computed_at = excluded.computed_at
	`
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), e.URL, string(e.Result), e.ComputedAt.Unix()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
