package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	app "github.com/R3E-Network/library_service/internal/app"
	"github.com/R3E-Network/library_service/internal/app/httpapi"
	"github.com/R3E-Network/library_service/internal/app/storage/postgres"
	"github.com/R3E-Network/library_service/internal/config"
	"github.com/R3E-Network/library_service/internal/middleware"
	"github.com/R3E-Network/library_service/internal/platform/migrations"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sqlx.DB
	app      *app.Application
	handler  http.Handler
	server   *http.Server
	watchdog *Watchdog
}

// NewApplication constructs the runtime from cfg. A nil cfg is loaded from
// the environment and a nil log is built from cfg.Logging.
func NewApplication(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if log == nil {
		log = NewLogger(cfg)
	}

	stores, db, err := buildStores(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	application, err := app.New(stores, log, app.WithReportSchedule(cfg.Reporter.Schedule))
	if err != nil {
		closeDB(db, log)
		return nil, fmt.Errorf("build application: %w", err)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(float64(cfg.RateLimit.RPS), cfg.RateLimit.Burst, log)
		if err := application.Attach(limiter); err != nil {
			closeDB(db, log)
			return nil, fmt.Errorf("attach rate limiter: %w", err)
		}
	}

	handler := httpapi.Wrap(httpapi.NewHandler(application, log), httpapi.ChainConfig{
		APIKey:       cfg.Auth.APIKey,
		APIKeyHeader: cfg.Auth.Header,
		SkipPaths:    cfg.Auth.SkipPathList(),
		CORSOrigins:  cfg.CORS.Origins(),
		RateLimiter:  limiter,
	}, log)

	rt := &Application{
		cfg:     cfg,
		log:     log,
		db:      db,
		app:     application,
		handler: handler,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
	}
	if db != nil {
		rt.watchdog = NewWatchdog(db, cfg.Database.PingInterval, cfg.Database.MaxPingFailures, log)
	}
	return rt, nil
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.LoggingConfig{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
	})
}

// App exposes the wired services.
func (a *Application) App() *app.Application { return a.app }

// Handler returns the fully wrapped HTTP handler.
func (a *Application) Handler() http.Handler { return a.handler }

// Run starts background services and the HTTP server and blocks until ctx is
// cancelled, the listener fails, or the database watchdog gives up. The last
// case returns ErrDatabaseUnavailable so the process can exit for its
// supervisor to restart it.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}

	errCh := make(chan error, 2)
	go func() {
		a.log.Infof("HTTP server listening on %s", listener.Addr())
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if a.watchdog != nil {
		go func() {
			if err := a.watchdog.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the HTTP server, background services and the database pool.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	closeDB(a.db, a.log)
	a.db = nil
	return errors.Join(errs...)
}

func buildStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (app.Stores, *sqlx.DB, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("STORE=memory; data will not survive a restart")
		return app.Stores{}, nil, nil
	}

	db, err := OpenDatabase(ctx, cfg.Database, log)
	if err != nil {
		return app.Stores{}, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db.DB); err != nil {
			closeDB(db, log)
			return app.Stores{}, nil, err
		}
		log.Info("database schema is up to date")
	}

	store := postgres.New(db)
	return app.Stores{Books: store, Members: store, Issuances: store, Health: store}, db, nil
}

// OpenDatabase opens the PostgreSQL pool, applies the pool knobs and verifies
// connectivity with a server-time probe.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var now time.Time
	if err := db.GetContext(pingCtx, &now, `SELECT NOW()`); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.WithField("server_time", now.Format(time.RFC3339)).
		WithField("tls_required", cfg.RequireTLS || cfg.URL != "").
		Info("connected to the database")
	return db, nil
}

func closeDB(db *sqlx.DB, log *logger.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Warn("error closing database connection")
	}
}
