// Package bootstrap wires the process-level dependencies shared by the
// server and the operator commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
	// RequireRedis turns an unreachable Redis into a startup error.
	RequireRedis bool
	Tracing      bool
}

// Runtime bundles the live connections of one process.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime connects to the database and Redis, installs tracing and
// optionally seeds the built-in boards and the bootstrap developer.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{shutdownTracing: func(context.Context) error { return nil }}

	if opts.Tracing {
		shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
			ServiceName:  observability.ServiceName,
			Environment:  cfg.Env,
			Enabled:      cfg.TracingEnabled,
			Exporter:     cfg.TracingExporter,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: cfg.TracingSamplerRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing init failed: %w", err)
		}
		rt.shutdownTracing = shutdown
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			rt.Redis = client
		case opts.RequireRedis:
			_ = database.Close(db)
			return nil, fmt.Errorf("redis connection failed: %w", err)
		default:
			middleware.Logger.Warn("redis unavailable, continuing without cache and live push",
				slog.String("error", err.Error()))
		}
	}

	if opts.SeedBuiltIns {
		store := cache.New(rt.Redis)
		if err := seed.Categories(ctx, repository.NewCategoryRepository(db, store)); err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("failed to seed built-in categories: %w", err)
		}
		if _, err := seed.EnsureDeveloper(ctx, cfg, repository.NewUserRepository(db, store)); err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("failed to bootstrap developer account: %w", err)
		}
	}

	return rt, nil
}

// Close releases Redis, the database pool and the tracer provider. The
// server closes its own connections during Shutdown and only calls
// CloseTracing.
func (rt *Runtime) Close(ctx context.Context) {
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}
	if err := database.Close(rt.DB); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}
	rt.CloseTracing(ctx)
}

// CloseTracing flushes pending spans.
func (rt *Runtime) CloseTracing(ctx context.Context) {
	if err := rt.shutdownTracing(ctx); err != nil {
		middleware.Logger.Error("error shutting down tracing", slog.String("error", err.Error()))
	}
}
