package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/cache"
)

// ResponseCache serves extraction results younger than ttl. Stale entries
// stay in the backend and count as a miss until overwritten. Concurrent
// misses for the same url may each compute and Put; the last write wins.
type ResponseCache struct {
	repo  cache.Repository
	clock clockx.Clock
	ttl   time.Duration
}

func NewResponseCache(repo cache.Repository, clock clockx.Clock, ttl time.Duration) *ResponseCache {
	return &ResponseCache{repo: repo, clock: clock, ttl: ttl}
}

// Get returns the cached result for url and whether it was a fresh hit.
func (c *ResponseCache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	e, err := c.repo.Get(ctx, url)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageError("cache get", err)
	}
	if !e.Fresh(c.clock.Now(), c.ttl) {
		return nil, false, nil
	}
	return e.Result, true, nil
}

// Put stores result for url stamped with the current time.
func (c *ResponseCache) Put(ctx context.Context, url string, result []byte) error {
	err := c.repo.Put(ctx, &models.CacheEntry{URL: url, Result: result, ComputedAt: c.clock.Now()})
	if err != nil {
		return storageError("cache put", err)
	}
	return nil
}
