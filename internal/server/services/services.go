// Package services contains the credential lifecycle and shared-state
// logic used by both the serving and command processes: verification
// grants, token minting and validation, expiry sweeping, the response cache
// and the usage ledger.
//
// Services never hold state between calls; every operation reads from and
// writes to the Persistent Store through the RepositoryManager.
package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
)

// storageError classifies a repository failure so transports can react to
// common.ErrStorage without inspecting driver errors.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorage, err)
}

// authorizeOwner fails with common.ErrorUnauthorized unless caller is the
// configured owner. An empty owner id authorizes nobody.
func authorizeOwner(ownerID, caller string) error {
	if ownerID == "" || caller != ownerID {
		return common.ErrorUnauthorized
	}
	return nil
}

// MaxGrantDays bounds a single verify or extend request.
const MaxGrantDays = 36500

// grantExpiry adds days to base in whole seconds.
func grantExpiry(base time.Time, days int) time.Time {
	return time.Unix(base.Unix()+int64(days)*common.SecondsPerDay, 0)
}
