// Package tokens declares the repository contract for access tokens and
// its SQL implementation.
package tokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/server/models"
)

// Repository defines operations for issuing, resolving and revoking tokens.
type Repository interface {
	// Replace stores t as the only token of t.UserID. Any previous token of
	// that user is displaced in the same statement.
	Replace(ctx context.Context, t *models.Token) error

	// Find resolves a token string. Returns common.ErrorNotFound when absent.
	Find(ctx context.Context, token string) (*models.Token, error)

	// Delete removes a token. Returns common.ErrorNotFound when absent.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes every token owned by userID and reports how many.
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes tokens with a non-null expiry at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// ListByUser returns the tokens currently stored for userID.
	ListByUser(ctx context.Context, userID string) ([]*models.Token, error)

	// Count returns the number of stored tokens.
	Count(ctx context.Context) (int64, error)
}
