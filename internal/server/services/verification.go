package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repomanager"
)

// VerifiedUser is one row of the owner's verification listing.
type VerifiedUser struct {
	UserID        string
	DaysRemaining int
	Expires       time.Time
}

// VerificationService issues, extends and revokes verification grants.
// Every operation is restricted to the owner.
type VerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sweeper     *Sweeper
	clock       clockx.Clock
	ownerID     string
	log         logging.Logger
}

func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager, sweeper *Sweeper, clock clockx.Clock, ownerID string, log logging.Logger) *VerificationService {
	return &VerificationService{
		db:          db,
		repomanager: m,
		sweeper:     sweeper,
		clock:       clock,
		ownerID:     ownerID,
		log:         log,
	}
}

// Verify grants userID access for days days from now, replacing any prior
// grant outright.
func (s *VerificationService) Verify(ctx context.Context, caller, userID string, days int) (*models.Verification, error) {
	if err := authorizeOwner(s.ownerID, caller); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || days <= 0 || days > MaxGrantDays {
		return nil, common.ErrInvalidArgument
	}

	now := s.clock.Now()
	v := &models.Verification{
		UserID:    userID,
		Expires:   grantExpiry(now, days),
		CreatedAt: now,
	}
	if err := s.repomanager.Verifications(s.db).Upsert(ctx, v); err != nil {
		return nil, storageError("verify", err)
	}

	s.log.Info(ctx, "user verified", "user_id", userID, "days", days, "expires", v.Expires.Unix())
	return v, nil
}

// Extend adds days to an unexpired grant, or starts a new one from now when
// the user has no live grant.
func (s *VerificationService) Extend(ctx context.Context, caller, userID string, days int) (*models.Verification, error) {
	if err := authorizeOwner(s.ownerID, caller); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || days <= 0 || days > MaxGrantDays {
		return nil, common.ErrInvalidArgument
	}

	now := s.clock.Now()
	var out *models.Verification
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Verifications(tx)

		base := now
		cur, err := repo.Find(ctx, userID)
		switch {
		case err == nil:
			if !cur.Expired(now) {
				base = cur.Expires
			}
		case errors.Is(err, common.ErrorNotFound):
		default:
			return storageError("extend", err)
		}

		out = &models.Verification{
			UserID:    userID,
			Expires:   grantExpiry(base, days),
			CreatedAt: now,
		}
		if err := repo.Upsert(ctx, out); err != nil {
			return storageError("extend", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "verification extended", "user_id", userID, "days", days, "expires", out.Expires.Unix())
	return out, nil
}

// Delete removes userID's grant and every token the user holds, returning
// the number of tokens revoked. It fails with common.ErrorNotFound when the
// user had neither.
func (s *VerificationService) Delete(ctx context.Context, caller, userID string) (int64, error) {
	if err := authorizeOwner(s.ownerID, caller); err != nil {
		return 0, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, common.ErrInvalidArgument
	}

	var revoked int64
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Tokens(tx).DeleteByUser(ctx, userID)
		if err != nil {
			return storageError("delete user", err)
		}
		revoked = n

		err = s.repomanager.Verifications(tx).Delete(ctx, userID)
		if errors.Is(err, common.ErrorNotFound) {
			if n == 0 {
				return common.ErrorNotFound
			}
			return nil
		}
		if err != nil {
			return storageError("delete user", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "user removed", "user_id", userID, "tokens_revoked", revoked)
	return revoked, nil
}

// List sweeps expired records and returns the remaining grants.
func (s *VerificationService) List(ctx context.Context, caller string) ([]VerifiedUser, error) {
	if err := authorizeOwner(s.ownerID, caller); err != nil {
		return nil, err
	}
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}

	recs, err := s.repomanager.Verifications(s.db).List(ctx)
	if err != nil {
		return nil, storageError("list verifications", err)
	}

	now := s.clock.Now()
	out := make([]VerifiedUser, 0, len(recs))
	for _, v := range recs {
		out = append(out, VerifiedUser{
			UserID:        v.UserID,
			DaysRemaining: v.DaysRemaining(now),
			Expires:       v.Expires,
		})
	}
	return out, nil
}
