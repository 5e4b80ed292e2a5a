package tend

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/tend/internal/logging"
	"github.com/aretw0/tend/pkg/adapters/memory"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/observability"
	"github.com/aretw0/tend/pkg/observable"
	"github.com/aretw0/tend/pkg/persistence/middleware"
	"github.com/aretw0/tend/pkg/ports"
	"github.com/aretw0/tend/pkg/tasks"
)

// App owns the to-do list and the online-servers counter.
// Everything it holds is created in New and released in Close; there is no package state.
type App struct {
	logger  *slog.Logger
	tasks   *tasks.Manager
	servers *observable.Store[int]
	region  string
	metrics *observability.Metrics
	closers []io.Closer
}

type appConfig struct {
	logger         *slog.Logger
	repo           ports.ItemRepository
	locker         ports.DistributedLocker
	metrics        *observability.Metrics
	middlewares    []middleware.Middleware
	seed           []domain.Item
	region         string
	initialServers int
	closers        []io.Closer
}

// Option configures the App.
type Option func(*appConfig)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *appConfig) {
		c.logger = logger
	}
}

// WithRepository replaces the default in-memory repository.
func WithRepository(repo ports.ItemRepository) Option {
	return func(c *appConfig) {
		c.repo = repo
	}
}

// WithLocker serializes item mutations across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *appConfig) {
		c.locker = locker
	}
}

// WithMetrics instruments the repository and the servers counter.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *appConfig) {
		c.metrics = m
	}
}

// WithMiddleware wraps the repository. The first middleware is the outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(c *appConfig) {
		c.middlewares = append(c.middlewares, mws...)
	}
}

// WithSeed replaces the items loaded into an empty repository.
// An empty, non-nil slice disables seeding.
func WithSeed(items []domain.Item) Option {
	return func(c *appConfig) {
		c.seed = items
	}
}

// WithRegion labels the online-servers counter.
func WithRegion(region string) Option {
	return func(c *appConfig) {
		c.region = region
	}
}

// WithInitialServers sets the starting value of the online-servers counter (default 0).
func WithInitialServers(n int) Option {
	return func(c *appConfig) {
		c.initialServers = n
	}
}

// WithCloser registers a resource released by Close, in reverse order of registration.
func WithCloser(closer io.Closer) Option {
	return func(c *appConfig) {
		c.closers = append(c.closers, closer)
	}
}

// New builds an App. An empty repository is seeded with domain.SeedItems
// unless WithSeed says otherwise.
func New(ctx context.Context, opts ...Option) (*App, error) {
	cfg := appConfig{
		logger: logging.NewNop(),
		region: domain.DefaultRegion,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.repo == nil {
		cfg.repo = memory.New()
	}
	if cfg.seed == nil {
		cfg.seed = domain.SeedItems()
	}

	app := &App{
		logger:  cfg.logger,
		region:  cfg.region,
		metrics: cfg.metrics,
		closers: cfg.closers,
	}

	seeded, err := tasks.SeedIfEmpty(ctx, cfg.repo, cfg.seed)
	if err != nil {
		app.Close()
		return nil, err
	}
	if seeded {
		app.logger.Info("Seeded empty repository", "items", len(cfg.seed))
	}

	mws := cfg.middlewares
	if cfg.metrics != nil {
		mws = append(mws, middleware.NewMetricsMiddleware(cfg.metrics))
	}
	repo := middleware.Chain(mws...)(cfg.repo)

	taskOpts := []tasks.Option{tasks.WithLogger(cfg.logger)}
	if cfg.locker != nil {
		taskOpts = append(taskOpts, tasks.WithLocker(cfg.locker))
	}
	app.tasks = tasks.NewManager(repo, taskOpts...)

	storeOpts := []observable.Option{
		observable.WithName("servers"),
		observable.WithLogger(cfg.logger),
	}
	if cfg.metrics != nil {
		storeOpts = append(storeOpts, observable.WithPanicHandler(cfg.metrics.PanicHandler("servers")))
	}
	app.servers = observable.New(cfg.initialServers, storeOpts...)
	if cfg.metrics != nil {
		cfg.metrics.BindServers(app.servers, app.region)
	}

	return app, nil
}

// Tasks returns the to-do list manager.
func (a *App) Tasks() *tasks.Manager {
	return a.tasks
}

// Servers returns the online-servers counter.
func (a *App) Servers() *observable.Store[int] {
	return a.servers
}

// Region labels the online-servers counter.
func (a *App) Region() string {
	return a.region
}

// ServerStatus snapshots the online-servers counter.
func (a *App) ServerStatus() domain.ServerStatus {
	return domain.ServerStatus{Region: a.region, Online: a.servers.Get()}
}

// Metrics returns the metrics given with WithMetrics, or nil.
func (a *App) Metrics() *observability.Metrics {
	return a.metrics
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Close releases every registered closer and reports all failures.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
