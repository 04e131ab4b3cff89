package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repomanager"
)

// UsageLedger records successful accesses and reports on them.
type UsageLedger struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sweeper     *Sweeper
	clock       clockx.Clock
	ownerID     string
	log         logging.Logger
}

func NewUsageLedger(db *sql.DB, m repomanager.RepositoryManager, sweeper *Sweeper, clock clockx.Clock, ownerID string, log logging.Logger) *UsageLedger {
	return &UsageLedger{db: db, repomanager: m, sweeper: sweeper, clock: clock, ownerID: ownerID, log: log}
}

// Record appends a usage record. Failures are logged and swallowed.
func (l *UsageLedger) Record(ctx context.Context, userID, platform, url string) {
	rec := &models.UsageRecord{
		UserID:   userID,
		Platform: platform,
		URL:      url,
		Time:     l.clock.Now(),
	}
	if err := l.repomanager.Usage(l.db).Append(ctx, rec); err != nil {
		l.log.Warn(ctx, "usage record dropped", "user_id", userID, "platform", platform, "error", err)
	}
}

// Summarize groups userID's usage by platform. Owner only.
func (l *UsageLedger) Summarize(ctx context.Context, caller, userID string) (*models.UsageSummary, error) {
	if err := authorizeOwner(l.ownerID, caller); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, common.ErrInvalidArgument
	}

	per, err := l.repomanager.Usage(l.db).CountByPlatform(ctx, userID)
	if err != nil {
		return nil, storageError("summarize usage", err)
	}

	sum := &models.UsageSummary{UserID: userID, PerPlatform: per}
	for _, n := range per {
		sum.Total += n
	}
	return sum, nil
}

// Stats sweeps expired records and reports global counters. Owner only.
func (l *UsageLedger) Stats(ctx context.Context, caller string) (*models.Stats, error) {
	if err := authorizeOwner(l.ownerID, caller); err != nil {
		return nil, err
	}
	if _, err := l.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}

	var (
		st  models.Stats
		err error
	)
	if st.VerifiedUsers, err = l.repomanager.Verifications(l.db).Count(ctx); err != nil {
		return nil, storageError("stats", err)
	}
	if st.LiveTokens, err = l.repomanager.Tokens(l.db).Count(ctx); err != nil {
		return nil, storageError("stats", err)
	}
	if st.TotalRequests, err = l.repomanager.Usage(l.db).Count(ctx); err != nil {
		return nil, storageError("stats", err)
	}
	return &st, nil
}
