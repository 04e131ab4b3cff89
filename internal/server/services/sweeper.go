package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repomanager"
)

// SweepResult counts the records removed by one sweep.
type SweepResult struct {
	Verifications int64
	Tokens        int64
}

// Sweeper purges verifications and tokens whose expiry is at or before now.
// Owner tokens have no expiry and are never swept.
type Sweeper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       clockx.Clock
	log         logging.Logger
}

func NewSweeper(db *sql.DB, m repomanager.RepositoryManager, clock clockx.Clock, log logging.Logger) *Sweeper {
	return &Sweeper{db: db, repomanager: m, clock: clock, log: log}
}

func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()

	var res SweepResult
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Verifications(tx).DeleteExpired(ctx, now)
		if err != nil {
			return storageError("sweep verifications", err)
		}
		res.Verifications = n

		n, err = s.repomanager.Tokens(tx).DeleteExpired(ctx, now)
		if err != nil {
			return storageError("sweep tokens", err)
		}
		res.Tokens = n
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}

	if res.Verifications > 0 || res.Tokens > 0 {
		s.log.Debug(ctx, "expired records swept", "verifications", res.Verifications, "tokens", res.Tokens)
	}
	return res, nil
}

// Run sweeps every interval until ctx is done. A non-positive interval
// returns immediately.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Error(ctx, "periodic sweep failed", "error", err)
			}
		}
	}
}
