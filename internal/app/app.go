// Package app assembles the scheduler from its configuration: the store,
// the session store, the catalog client and every handler behind the API.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/examhub/exam-room-scheduler/config"
	"github.com/examhub/exam-room-scheduler/internal/application/command"
	"github.com/examhub/exam-room-scheduler/internal/application/eventhandler"
	"github.com/examhub/exam-room-scheduler/internal/application/query"
	"github.com/examhub/exam-room-scheduler/internal/dependencies/random"
	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/export"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/external/catalogapi"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/messaging"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/persistence/postgres"
	rediscache "github.com/examhub/exam-room-scheduler/internal/infrastructure/persistence/redis"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/persistence/sqlite"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/security"
	httpapi "github.com/examhub/exam-room-scheduler/internal/interface/http"
	"github.com/examhub/exam-room-scheduler/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE BACKEND
// ══════════════════════════════════════════════════════════════════════════════

type examStore interface {
	exam.Repository
	exam.UnitOfWork
}

// backend is one opened store with its repositories.
type backend struct {
	name     string
	catalog  catalog.Repository
	exams    examStore
	accounts identity.AccountRepository
	ping     func(ctx context.Context) error
	migrate  func(ctx context.Context) ([]int, error)
	close    func()
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return &backend{
			name:     config.DriverSQLite,
			catalog:  sqlite.NewCatalogRepository(store),
			exams:    sqlite.NewExamRepository(store),
			accounts: sqlite.NewAccountRepository(store),
			ping:     store.Ping,
			// The schema is applied when the file is opened.
			migrate: func(context.Context) ([]int, error) { return nil, nil },
			close: func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing sqlite store", "error", err)
				}
			},
		}, nil

	case config.DriverPostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.Host = cfg.Host
		pgCfg.Port = cfg.Port
		pgCfg.Database = cfg.Name
		pgCfg.User = cfg.User
		pgCfg.Password = cfg.Password
		pgCfg.SSLMode = cfg.SSLMode
		pgCfg.MaxConns = int32(cfg.MaxConns)
		pgCfg.MinConns = int32(cfg.MinConns)
		pgCfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pgCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
		pgCfg.ConnectTimeout = cfg.ConnectTimeout

		conn, err := postgres.NewConnection(ctx, pgCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		migrator := postgres.NewMigrator(conn)
		return &backend{
			name:     config.DriverPostgres,
			catalog:  postgres.NewCatalogRepository(conn),
			exams:    postgres.NewExamRepository(conn),
			accounts: postgres.NewAccountRepository(conn),
			ping:     conn.Ping,
			migrate:  migrator.Migrate,
			close:    conn.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// APP
// ══════════════════════════════════════════════════════════════════════════════

// Options overrides collaborators that are otherwise built from the
// configuration.
type Options struct {
	Logger *slog.Logger

	// Source replaces the GraphQL catalog client.
	Source command.CatalogSource

	// Random replaces the session code generator.
	Random random.Random

	// TokenGenerator replaces uuid session tokens.
	TokenGenerator func() string
}

// App owns every long-lived resource of the process.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *backend
	cache   *rediscache.Cache
	bus     *messaging.InMemoryEventBus
	health  *handlers.CompositeHealthChecker
	sync    *command.SyncCatalogHandler
	export  *export.ScheduleExporter
	server  *httpapi.Server
	started time.Time
}

// New opens the store and session store and wires the handlers. Call Close
// when done.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := openBackend(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		started: time.Now(),
	}

	sessions, err := a.openSessions()
	if err != nil {
		a.Close()
		return nil, err
	}

	source := opts.Source
	if source == nil {
		clientCfg := catalogapi.DefaultClientConfig(cfg.Catalog.URL)
		clientCfg.Token = cfg.Catalog.Token
		clientCfg.Timeout = cfg.Catalog.RequestTimeout
		clientCfg.MaxAttempts = cfg.Catalog.MaxAttempts
		clientCfg.RetryDelay = cfg.Catalog.RetryDelay
		clientCfg.Logger = logger
		source = catalogapi.NewClient(clientCfg)
	}

	rnd := opts.Random
	if rnd == nil {
		rnd = random.New()
	}

	a.health = handlers.NewCompositeHealthChecker(cfg.App.Version)
	a.health.AddCheck("store", store.ping)
	if a.cache != nil {
		a.health.AddCheck("redis", handlers.NewPingCheck(a.cache))
	}

	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = logger
	a.bus = messaging.NewInMemoryEventBus(busCfg)
	if err := eventhandler.NewAuditLogHandler(logger).Register(a.bus); err != nil {
		a.Close()
		return nil, fmt.Errorf("register audit log: %w", err)
	}

	hasher := security.NewBcryptHasher(cfg.Session.BcryptCost)
	a.sync = command.NewSyncCatalogHandler(source, store.catalog, a.bus, logger)
	a.export = export.NewScheduleExporter(store.exams, store.catalog)

	a.server = httpapi.NewServer(httpapi.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxHeaderBytes: 1 << 20,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, httpapi.Dependencies{
		Login: command.NewLoginHandler(store.accounts, sessions, hasher, command.LoginHandlerConfig{
			TokenGenerator: opts.TokenGenerator,
			Logger:         logger,
		}),
		Logout:         command.NewLogoutHandler(sessions),
		ChangePassword: command.NewChangePasswordHandler(store.accounts, sessions, hasher, logger),
		UpdateUserRole: command.NewUpdateUserRoleHandler(store.catalog, logger),
		AllocateExam:   command.NewAllocateExamHandler(store.exams, rnd, a.bus, logger),
		UpdateProctor:  command.NewUpdateProctorHandler(store.exams, a.bus, logger),
		Catalog:        query.NewCatalogHandler(store.catalog),
		Schedule:       query.NewScheduleHandler(store.exams),
		CurrentUser:    query.NewCurrentUserHandler(sessions),
		Exporter:       a.export,
		Logger:         logger,
		HealthChecker:  a.health,
	})

	logger.Info("application wired",
		"driver", store.name,
		"session_store", cfg.Session.Store,
		"catalog_url", cfg.Catalog.URL,
	)
	return a, nil
}

func (a *App) openSessions() (identity.SessionStore, error) {
	if a.cfg.Session.Store != config.SessionStoreRedis {
		return identity.NewManager(), nil
	}

	rc := rediscache.DefaultConfig()
	rc.Host = a.cfg.Redis.Host
	rc.Port = a.cfg.Redis.Port
	rc.Password = a.cfg.Redis.Password
	rc.DB = a.cfg.Redis.DB
	rc.PoolSize = a.cfg.Redis.PoolSize
	rc.MinIdleConns = a.cfg.Redis.MinIdleConns
	rc.DialTimeout = a.cfg.Redis.DialTimeout
	rc.ReadTimeout = a.cfg.Redis.ReadTimeout
	rc.WriteTimeout = a.cfg.Redis.WriteTimeout

	cache, err := rediscache.NewCache(rc)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.cache = cache
	return rediscache.NewSessionStore(cache, a.cfg.Session.TTL), nil
}

// Server returns the HTTP server.
func (a *App) Server() *httpapi.Server {
	return a.server
}

// Health runs the registered checks once.
func (a *App) Health(ctx context.Context) handlers.HealthStatus {
	return a.health.Check(ctx)
}

// Migrate brings the store schema up to date.
func (a *App) Migrate(ctx context.Context) error {
	applied, err := a.store.migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.logger.Info("schema up to date", "driver", a.store.name, "applied", applied)
	return nil
}

// Sync refreshes the replica from the remote catalog. The report is
// returned even when a stage fails.
func (a *App) Sync(ctx context.Context) (*command.SyncReport, error) {
	return a.sync.Handle(ctx)
}

// Export writes the schedule workbook to w.
func (a *App) Export(ctx context.Context, w io.Writer) (int, error) {
	return a.export.WriteXLSX(ctx, w)
}

// ExportFile writes the schedule workbook to path.
func (a *App) ExportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := a.Export(ctx, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	return n, err
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	if err := a.server.Run(ctx, a.cfg.App.ShutdownTimeout); err != nil {
		return err
	}
	a.logger.Info("http server stopped", "uptime", time.Since(a.started).Round(time.Second).String())
	return nil
}

// Close drains the event bus, then releases the session store and the store.
func (a *App) Close() {
	if a.bus != nil {
		_ = a.bus.Close()
		a.bus = nil
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("closing redis", "error", err)
		}
		a.cache = nil
	}
	if a.store != nil {
		a.store.close()
		a.store = nil
	}
}
