package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repotest"
	"github.com/stretchr/testify/require"
)

const testOwner = "OWNER"

var testStart = time.Unix(1_700_000_000, 0)

// env bundles services wired to one in-memory database and a fake clock.
type env struct {
	db    *sql.DB
	rm    repomanager.RepositoryManager
	clock *clockx.Fake

	sweeper       *Sweeper
	verifications *VerificationService
	tokens        *TokenService
	validator     *AccessValidator
	usage         *UsageLedger
}

func newEnv(t *testing.T, bypass string) *env {
	t.Helper()

	db := repotest.OpenSQLite(t)
	rm, err := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, err)

	clock := clockx.NewFake(testStart)
	log := logging.NopLogger{}
	sw := NewSweeper(db, rm, clock, log)

	return &env{
		db:            db,
		rm:            rm,
		clock:         clock,
		sweeper:       sw,
		verifications: NewVerificationService(db, rm, sw, clock, testOwner, log),
		tokens:        NewTokenService(db, rm, clock, testOwner, log),
		validator:     NewAccessValidator(db, rm, sw, clock, testOwner, bypass, log),
		usage:         NewUsageLedger(db, rm, sw, clock, testOwner, log),
	}
}
