// Package cache stores extraction results keyed by request URL. Entries are
// overwritten on Put and never evicted; freshness is the caller's decision.
package cache

import (
	"context"

	"github.com/dmitrijs2005/mediagate/internal/server/models"
)

// Repository is the cache backend contract.
type Repository interface {
	// Get returns the entry for url or common.ErrorNotFound.
	Get(ctx context.Context, url string) (*models.CacheEntry, error)

	// Put inserts or overwrites the entry for e.URL.
	Put(ctx context.Context, e *models.CacheEntry) error
}
