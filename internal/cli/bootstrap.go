package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/tend"
	"github.com/aretw0/tend/internal/config"
	"github.com/aretw0/tend/internal/logging"
	"github.com/aretw0/tend/pkg/adapters/memory"
	"github.com/aretw0/tend/pkg/adapters/redis"
	"github.com/aretw0/tend/pkg/adapters/sqlite"
	"github.com/aretw0/tend/pkg/observability"
	"github.com/aretw0/tend/pkg/persistence/middleware"
	"github.com/aretw0/tend/pkg/ports"
)

// Options are the global flags shared by every command.
type Options struct {
	ConfigPath string
	Backend    string
	Debug      bool
}

// LoadConfig reads the configuration and applies flag overrides on top.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// NewLogger builds the application logger for cfg.
// Logs go to Stderr so that Stdout stays free for command output.
func NewLogger(cfg config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level)
}

// Backend is an opened item store plus its optional lock and cleanup.
type Backend struct {
	Repository ports.ItemRepository
	Locker     ports.DistributedLocker
	Closer     io.Closer
}

// OpenBackend connects to the repository selected by cfg.Backend.
func OpenBackend(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return Backend{Repository: memory.New()}, nil

	case config.BackendSQLite:
		repo, err := sqlite.New(cfg.SQLite.DSN)
		if err != nil {
			return Backend{}, err
		}
		return Backend{Repository: repo, Closer: repo}, nil

	case config.BackendRedis:
		repo := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
		if err := repo.Client().Ping(ctx).Err(); err != nil {
			repo.Close()
			return Backend{}, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return Backend{
			Repository: repo,
			Locker:     redis.NewLocker(repo.Client(), cfg.Redis.Prefix),
			Closer:     repo,
		}, nil

	default:
		return Backend{}, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

// NewApp opens the configured backend and builds the App around it.
// The App owns the backend and releases it on Close.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...tend.Option) (*tend.App, error) {
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Backend opened", "backend", cfg.Backend)

	opts := []tend.Option{
		tend.WithLogger(logger),
		tend.WithRepository(backend.Repository),
		tend.WithMetrics(observability.NewMetrics(observability.WithProcessMetrics())),
		tend.WithMiddleware(middleware.NewTracingMiddleware(nil)),
		tend.WithSeed(cfg.SeedItems()),
		tend.WithRegion(cfg.Servers.Region),
		tend.WithInitialServers(cfg.Servers.Initial),
	}
	if backend.Locker != nil {
		opts = append(opts, tend.WithLocker(backend.Locker))
	}
	if backend.Closer != nil {
		opts = append(opts, tend.WithCloser(backend.Closer))
	}
	opts = append(opts, extra...)

	return tend.New(ctx, opts...)
}
