package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/cache"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/usage"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/verifications"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Verifications(db dbx.DBTX) verifications.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Cache(db dbx.DBTX) cache.Repository
	Usage(db dbx.DBTX) usage.Repository
}
