// Package usage persists the append-only log of successful accesses.
package usage

import (
	"context"

	"github.com/dmitrijs2005/mediagate/internal/server/models"
)

// Repository defines the usage ledger persistence contract.
type Repository interface {
	// Append stores r. An empty r.ID is filled with a new UUID.
	Append(ctx context.Context, r *models.UsageRecord) error

	// CountByPlatform groups userID's records by platform.
	CountByPlatform(ctx context.Context, userID string) (map[string]int64, error)

	// Summaries returns one summary per user with at least one record.
	Summaries(ctx context.Context) ([]*models.UsageSummary, error)

	// Since returns records at or after the given unix time, oldest first.
	Since(ctx context.Context, unix int64) ([]*models.UsageRecord, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)
}
