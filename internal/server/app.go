// Package server wires configuration, storage and services into the two
// long-running processes: the serving endpoint (HTTP) and the command
// front end (gRPC). Both share one Persistent Store.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/filex"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/commands"
	"github.com/dmitrijs2005/mediagate/internal/server/config"
	"github.com/dmitrijs2005/mediagate/internal/server/extractor"
	"github.com/dmitrijs2005/mediagate/internal/server/httpapi"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/cache"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediagate/internal/server/services"
	"github.com/valkey-io/valkey-go"

	gs "github.com/dmitrijs2005/mediagate/internal/server/grpc"
)

var errWeakServiceSecret = errors.New("service secret is empty or the built-in default; set MEDIAGATE_SERVICE_SECRET")

var (
	openDB          = dbx.Open
	newValkeyClient = valkey.NewClient
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	valkey valkey.Client

	sweeper       *services.Sweeper
	verifications *services.VerificationService
	tokens        *services.TokenService
	validator     *services.AccessValidator
	cache         *services.ResponseCache
	usage         *services.UsageLedger
	reports       *services.ReportService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dialect, err := dbx.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	if dialect == dbx.DialectSQLite && filex.IsPlainPath(c.DatabaseDSN) {
		if _, err := filex.EnsureParentDir(c.DatabaseDSN); err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	db, err := openDB(ctx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewSQLRepositoryManager(dialect)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var cacheRepo cache.Repository
	switch c.CacheBackend {
	case "valkey":
		client, err := newValkeyClient(valkey.ClientOption{InitAddress: []string{c.ValkeyAddr}})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("valkey init error: %w", err)
		}
		app.valkey = client
		cacheRepo = cache.NewValkeyRepository(client)
	case "", "sql":
		cacheRepo = rm.Cache(db)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported cache backend %q", c.CacheBackend)
	}

	clock := clockx.Real()
	app.sweeper = services.NewSweeper(db, rm, clock, logger.With("module", "sweeper"))
	app.verifications = services.NewVerificationService(db, rm, app.sweeper, clock, c.OwnerID, logger.With("module", "verifications"))
	app.tokens = services.NewTokenService(db, rm, clock, c.OwnerID, logger.With("module", "tokens"))
	app.validator = services.NewAccessValidator(db, rm, app.sweeper, clock, c.OwnerID, c.OwnerBypassToken, logger.With("module", "validator"))
	app.cache = services.NewResponseCache(cacheRepo, clock, c.CacheTTL)
	app.usage = services.NewUsageLedger(db, rm, app.sweeper, clock, c.OwnerID, logger.With("module", "usage"))
	app.reports = services.NewReportService(db, rm, c, clock, logger.With("module", "reports"))

	if c.OwnerID == "" {
		logger.Warn(ctx, "owner id is not configured; owner commands are disabled")
	}

	return app, nil
}

// Close releases the database and cache connections.
func (app *App) Close() error {
	if app.valkey != nil {
		app.valkey.Close()
	}
	return app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	info := httpapi.Info{
		APIName:    app.config.APIName,
		APIVersion: app.config.APIVersion,
		Developer:  app.config.Developer,
		Contact:    app.config.Contact,
	}
	ex := extractor.NewYTDLP(app.config.ExtractorBinary, app.config.ExtractTimeout)

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.validator, app.cache, app.usage, ex, info)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// checkServiceSecret rejects secrets anyone could use to sign an owner
// caller credential.
func checkServiceSecret(c *config.Config) error {
	if c.ServiceSecret == "" || c.ServiceSecret == config.DefaultServiceSecret {
		return errWeakServiceSecret
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	d := commands.NewDispatcher(app.verifications, app.tokens, app.usage, app.reports, app.logger.With("module", "commands"))

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, d, app.config.ServiceSecret)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// RunServing runs the HTTP endpoint and the periodic sweeper until ctx is
// cancelled or a termination signal arrives.
func (app *App) RunServing(ctx context.Context) {
	app.run(ctx, app.startHTTPServer)
}

// RunCommands runs the gRPC command front end. It refuses to start while
// the service secret is weak.
func (app *App) RunCommands(ctx context.Context) error {
	if err := checkServiceSecret(app.config); err != nil {
		return err
	}
	app.run(ctx, app.startGRPCServer)
	return nil
}

func (app *App) run(ctx context.Context, start func(context.Context, context.CancelFunc)) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx, app.config.SweepInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		start(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}
