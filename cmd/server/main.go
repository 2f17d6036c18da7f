package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/matchboard/internal/config"
	"github.com/JonMunkholm/matchboard/internal/core"
	"github.com/JonMunkholm/matchboard/internal/logging"
	"github.com/JonMunkholm/matchboard/internal/sidecar"
	"github.com/JonMunkholm/matchboard/internal/store/postgres"
	"github.com/JonMunkholm/matchboard/internal/store/sqlite"
	"github.com/JonMunkholm/matchboard/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"headers_backend", cfg.Headers.Backend,
		"api_key_required", cfg.Security.RequireAPIKey,
	)

	ctx := context.Background()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	slog.Info("connected to database", "driver", cfg.Database.Driver)

	headers, closeHeaders, err := openHeaderStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open header store", "backend", cfg.Headers.Backend, "error", err)
		os.Exit(1)
	}
	defer closeHeaders()

	service := core.NewService(repo, headers)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openRepository opens the storage engine named by the configured driver.
func openRepository(ctx context.Context, cfg *config.Config) (core.Repository, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Database.URL)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// openHeaderStore opens the header label sidecar. The returned func releases
// its resources.
func openHeaderStore(ctx context.Context, cfg *config.Config) (core.HeaderStore, func(), error) {
	switch cfg.Headers.Backend {
	case config.HeadersRedis:
		store, err := sidecar.NewRedisStore(ctx, cfg.Headers.RedisURL, cfg.Headers.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case config.HeadersFile:
		return sidecar.NewFileStore(cfg.Headers.Path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown headers backend %q", cfg.Headers.Backend)
	}
}
