package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tend/internal/logging"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/observable"
	"github.com/aretw0/tend/pkg/ports"
)

const (
	// LockKey is the distributed lock key guarding item mutations.
	LockKey = "items"
	// DefaultLockTTL bounds how long a crashed holder can block others.
	DefaultLockTTL = 30 * time.Second
)

// Manager orchestrates access to an ItemRepository, ensuring safe concurrent mutations.
type Manager struct {
	repo ports.ItemRepository

	mu sync.Mutex // Serializes mutations in this process

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger

	revision *observable.Store[uint64]
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over repo.
func NewManager(repo ports.ItemRepository, opts ...Option) *Manager {
	m := &Manager{
		repo:    repo,
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.revision = observable.New(uint64(0),
		observable.WithName("items.revision"),
		observable.WithLogger(m.logger),
	)
	return m
}

// Repository returns the underlying repository.
func (m *Manager) Repository() ports.ItemRepository {
	return m.repo
}

// Revision is bumped after every successful mutation.
func (m *Manager) Revision() *observable.Store[uint64] {
	return m.revision
}

// Items returns the display-ordered list.
func (m *Manager) Items(ctx context.Context) ([]domain.Item, error) {
	return m.repo.List(ctx)
}

// Get returns a single item.
func (m *Manager) Get(ctx context.Context, id int) (domain.Item, error) {
	return m.repo.Get(ctx, id)
}

// Add stores a new incomplete item called name.
func (m *Manager) Add(ctx context.Context, name string) (domain.Item, error) {
	return m.AddItem(ctx, domain.NewItem(name))
}

// AddItem stores item under a freshly assigned ID.
func (m *Manager) AddItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	var stored domain.Item
	err := m.mutate(ctx, "add", func(ctx context.Context) error {
		var err error
		stored, err = m.repo.Add(ctx, item)
		return err
	})
	return stored, err
}

// Complete marks an item as done.
func (m *Manager) Complete(ctx context.Context, id int) (domain.Item, error) {
	return m.setCompleted(ctx, id, true)
}

// Reopen marks an item as not done.
func (m *Manager) Reopen(ctx context.Context, id int) (domain.Item, error) {
	return m.setCompleted(ctx, id, false)
}

func (m *Manager) setCompleted(ctx context.Context, id int, completed bool) (domain.Item, error) {
	var item domain.Item
	err := m.mutate(ctx, "set_completed", func(ctx context.Context) error {
		var err error
		item, err = m.repo.SetCompleted(ctx, id, completed)
		return err
	})
	return item, err
}

// Remove deletes an item. Its ID is never handed out again.
func (m *Manager) Remove(ctx context.Context, id int) error {
	return m.mutate(ctx, "delete", func(ctx context.Context) error {
		return m.repo.Delete(ctx, id)
	})
}

func (m *Manager) mutate(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := m.WithLock(ctx, fn); err != nil {
		m.logger.Debug("Item mutation failed", "op", op, "err", err)
		return err
	}
	m.revision.Update(func(r uint64) uint64 { return r + 1 })
	return nil
}

// WithLock executes fn while holding the item lock.
func (m *Manager) WithLock(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, LockKey, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", LockKey,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// SeedIfEmpty stores items when repo holds nothing yet. It reports whether seeding happened.
// Repositories implementing ports.Seeder keep the given IDs and fill in missing
// ones; others assign fresh IDs through Add.
func SeedIfEmpty(ctx context.Context, repo ports.ItemRepository, items []domain.Item) (bool, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check repository contents: %w", err)
	}
	if len(existing) > 0 || len(items) == 0 {
		return false, nil
	}

	if seeder, ok := repo.(ports.Seeder); ok {
		if err := seeder.Seed(ctx, items); err != nil {
			return false, fmt.Errorf("failed to seed repository: %w", err)
		}
		return true, nil
	}

	for _, it := range items {
		if _, err := repo.Add(ctx, it); err != nil {
			return false, fmt.Errorf("failed to seed item %q: %w", it.Name, err)
		}
	}
	return true, nil
}
