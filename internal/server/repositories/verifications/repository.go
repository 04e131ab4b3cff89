// Package verifications declares the repository contract for owner-issued
// verification grants and its SQL implementation.
package verifications

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/server/models"
)

// Repository defines persistence operations for verification records.
type Repository interface {
	// Upsert inserts or overwrites the record for v.UserID.
	Upsert(ctx context.Context, v *models.Verification) error

	// Find returns the record for userID or common.ErrorNotFound.
	Find(ctx context.Context, userID string) (*models.Verification, error)

	// Delete removes the record for userID or returns common.ErrorNotFound.
	Delete(ctx context.Context, userID string) error

	// List returns every stored record ordered by user id.
	List(ctx context.Context) ([]*models.Verification, error)

	// DeleteExpired removes records whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}
