package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/JonMunkholm/bronze/internal/bronze"
	"github.com/JonMunkholm/bronze/internal/bronze/sources"
	"github.com/JonMunkholm/bronze/internal/config"
	"github.com/JonMunkholm/bronze/internal/logging"
	"github.com/JonMunkholm/bronze/internal/preflight"
	"github.com/JonMunkholm/bronze/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	registry, err := loadRegistry(cfg.Registry)
	if err != nil {
		slog.Error("failed to build registry", "error", err)
		os.Exit(1)
	}

	slog.Info("registry loaded",
		"base_path", registry.BasePath(),
		"count", registry.Len(),
		"sources", len(registry.Sources()),
	)
	for _, group := range registry.Groups() {
		logging.ForSource(slog.Default(), group.Name).Debug("source group", "tables", len(group.Tables))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db preflight.Querier
	if cfg.Database.HasDatabase() {
		pool, err := connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		db = pool
	} else {
		slog.Info("no database configured, table checks disabled")
	}

	checker := newChecker(cfg, db)
	if checker == nil {
		slog.Info("preflight disabled, nothing to check")
	}

	if checker != nil && cfg.Preflight.OnStartup {
		runCtx, cancel := context.WithTimeout(ctx, cfg.Preflight.Timeout)
		report, err := checker.Run(runCtx, registry)
		cancel()
		switch {
		case err != nil:
			slog.Warn("startup preflight did not complete", "error", err)
		case !report.Ready:
			slog.Warn("startup preflight found unready mappings", "not_ready", len(report.NotReady()))
		}
	}

	server := web.NewServer(registry, checker, cfg.Server)

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := serve(ctx, server, server.Start, cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server error", "error", err)
		return
	}
	slog.Info("server stopped")
}

// serve runs start until ctx is done, then shuts srv down and waits for
// in-flight requests to drain or timeout to pass.
func serve(ctx context.Context, srv *web.Server, start func() error, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	if err := start(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}

// newChecker returns nil when neither files nor tables can be checked.
// db may be nil; table checks are then skipped.
func newChecker(cfg *config.Config, db preflight.Querier) *preflight.Checker {
	checkTables := cfg.Preflight.CheckTables && db != nil
	if !cfg.Preflight.CheckFiles && !checkTables {
		return nil
	}

	opts := []preflight.Option{
		preflight.WithFiles(cfg.Preflight.CheckFiles),
		preflight.WithTables(checkTables),
		preflight.WithMaxConcurrent(cfg.Preflight.MaxConcurrent),
	}
	if db != nil {
		opts = append(opts, preflight.WithDB(db, cfg.Database.Schema))
	}
	return preflight.NewChecker(opts...)
}

// loadRegistry builds the registry from the configured manifest, or the
// built-in catalog when none is set.
func loadRegistry(cfg config.RegistryConfig) (*bronze.Registry, error) {
	manifest := sources.Manifest()
	if cfg.Manifest != "" {
		m, err := bronze.ReadManifest(cfg.Manifest)
		if err != nil {
			return nil, err
		}
		manifest = m
	}
	return manifest.WithBasePath(cfg.BasePath).Build()
}

// connect opens and pings a pool sized from cfg.
func connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"), "schema", cfg.Schema)
	} else {
		slog.Info("connected to database", "schema", cfg.Schema)
	}
	return pool, nil
}
