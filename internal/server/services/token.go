package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediagate/internal/shared"
)

// tokenBytes is the entropy of a minted token before hex encoding.
const tokenBytes = 32

// generateToken is a seam for tests that need deterministic token values.
var generateToken = func() (string, error) {
	return shared.MakeRandHexString(tokenBytes)
}

// TokenService mints and revokes access tokens.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       clockx.Clock
	ownerID     string
	log         logging.Logger
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, clock clockx.Clock, ownerID string, log logging.Logger) *TokenService {
	return &TokenService{
		db:          db,
		repomanager: m,
		clock:       clock,
		ownerID:     ownerID,
		log:         log,
	}
}

// IsOwner reports whether userID is the configured owner identity.
func (s *TokenService) IsOwner(userID string) bool {
	return s.ownerID != "" && userID == s.ownerID
}

// Mint issues a new token for userID and revokes any token the user held.
//
// The owner receives a token without expiry. Anyone else needs a live
// verification whose expiry the token inherits; a lapsed verification is
// deleted and common.ErrVerificationExpired returned. The verification check
// and the token replacement run in one transaction.
func (s *TokenService) Mint(ctx context.Context, userID string, isOwner bool) (*models.Token, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, common.ErrInvalidArgument
	}

	value, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	tok := &models.Token{Token: value, UserID: userID, CreatedAt: now}

	expired := false
	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if !isOwner {
			vrepo := s.repomanager.Verifications(tx)
			v, err := vrepo.Find(ctx, userID)
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrNotVerified
			}
			if err != nil {
				return storageError("mint", err)
			}
			if v.Expired(now) {
				if err := vrepo.Delete(ctx, userID); err != nil && !errors.Is(err, common.ErrorNotFound) {
					return storageError("mint", err)
				}
				expired = true
				return nil
			}
			exp := v.Expires
			tok.Expires = &exp
		}

		if err := s.repomanager.Tokens(tx).Replace(ctx, tok); err != nil {
			return storageError("mint", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		s.log.Info(ctx, "stale verification removed on mint", "user_id", userID)
		return nil, common.ErrVerificationExpired
	}

	s.log.Info(ctx, "token minted", "user_id", userID, "owner", isOwner)
	return tok, nil
}

// Revoke deletes a token. Only the owner may revoke.
func (s *TokenService) Revoke(ctx context.Context, caller, token string) error {
	if err := authorizeOwner(s.ownerID, caller); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return common.ErrInvalidArgument
	}

	err := s.repomanager.Tokens(s.db).Delete(ctx, token)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	if err != nil {
		return storageError("revoke token", err)
	}

	s.log.Info(ctx, "token revoked", "token", logging.Redact(token))
	return nil
}
