package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repomanager"
)

// DenyReason is the machine-readable cause of a denied access check.
type DenyReason string

const (
	ReasonMissing DenyReason = "missing"
	ReasonInvalid DenyReason = "invalid"
	ReasonExpired DenyReason = "expired"
)

// Decision is the terminal outcome of an access check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	UserID  string
	Owner   bool
	// Expires is nil for owner access.
	Expires *time.Time
}

// AccessValidator decides whether a presented token grants access.
type AccessValidator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sweeper     *Sweeper
	clock       clockx.Clock
	ownerID     string
	bypassToken string
	log         logging.Logger
}

func NewAccessValidator(db *sql.DB, m repomanager.RepositoryManager, sweeper *Sweeper, clock clockx.Clock, ownerID, bypassToken string, log logging.Logger) *AccessValidator {
	return &AccessValidator{
		db:          db,
		repomanager: m,
		sweeper:     sweeper,
		clock:       clock,
		ownerID:     ownerID,
		bypassToken: bypassToken,
		log:         log,
	}
}

// Check runs the validation state machine for token. Denials are returned as
// a Decision; the error is reserved for storage failures.
//
// The token is resolved before the sweep so that a token checked after its
// expiry is reported as expired rather than unknown. The sweep then removes
// it together with any other lapsed record.
func (v *AccessValidator) Check(ctx context.Context, token string) (Decision, error) {
	if token == "" {
		return Decision{Reason: ReasonMissing}, nil
	}

	if v.bypassToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(v.bypassToken)) == 1 {
		return Decision{Allowed: true, UserID: v.ownerID, Owner: true}, nil
	}

	now := v.clock.Now()
	tok, err := v.repomanager.Tokens(v.db).Find(ctx, token)
	if errors.Is(err, common.ErrorNotFound) {
		v.log.Debug(ctx, "unknown token", "token", logging.Redact(token))
		v.sweep(ctx)
		return Decision{Reason: ReasonInvalid}, nil
	}
	if err != nil {
		return Decision{}, storageError("check token", err)
	}

	if tok.Expired(now) {
		if err := v.repomanager.Tokens(v.db).Delete(ctx, token); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return Decision{}, storageError("delete expired token", err)
		}
		v.log.Debug(ctx, "expired token", "token", logging.Redact(token), "user_id", tok.UserID)
		v.sweep(ctx)
		return Decision{Reason: ReasonExpired, UserID: tok.UserID}, nil
	}

	v.sweep(ctx)
	return Decision{
		Allowed: true,
		UserID:  tok.UserID,
		Owner:   tok.Expires == nil || tok.UserID == v.ownerID,
		Expires: tok.Expires,
	}, nil
}

// sweep never fails the access decision.
func (v *AccessValidator) sweep(ctx context.Context) {
	if _, err := v.sweeper.Sweep(ctx); err != nil {
		v.log.Warn(ctx, "lazy sweep failed", "error", err)
	}
}
