package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/tend/pkg/domain"
)

// Repository implements ports.ItemRepository in memory.
// Safe for concurrent use.
type Repository struct {
	mu sync.RWMutex

	// items is kept newest-first: Add inserts at the head.
	items []domain.Item

	// highWater is the highest ID ever assigned, so deleted IDs are not reused.
	highWater int
}

// Option configures a Repository.
type Option func(*Repository)

// WithSeed pre-populates the repository like Seed.
// It panics if items repeat an ID.
func WithSeed(items []domain.Item) Option {
	return func(r *Repository) {
		if err := r.seed(items); err != nil {
			panic(fmt.Sprintf("memory: invalid seed: %v", err))
		}
	}
}

// New creates an empty in-memory repository.
func New(opts ...Option) *Repository {
	r := &Repository{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewSeeded creates a repository holding domain.SeedItems.
func NewSeeded() *Repository {
	return New(WithSeed(domain.SeedItems()))
}

// Seed implements ports.Seeder.
func (r *Repository) Seed(ctx context.Context, items []domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seed(items)
}

func (r *Repository) seed(items []domain.Item) error {
	prepared, err := domain.AssignSeedIDs(r.items, r.highWater, items)
	if err != nil {
		return err
	}
	for _, it := range prepared {
		r.items = append(r.items, it)
		if it.ID > r.highWater {
			r.highWater = it.ID
		}
	}
	return nil
}

// List returns a sorted copy of the stored items.
func (r *Repository) List(ctx context.Context) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.SortItems(r.items), nil
}

// Add assigns the next ID and inserts the item at the head of the collection.
func (r *Repository) Add(ctx context.Context, item domain.Item) (domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = domain.NextID(r.items, r.highWater)
	r.highWater = item.ID

	r.items = append(r.items, domain.Item{})
	copy(r.items[1:], r.items)
	r.items[0] = item

	return item, nil
}

// Get retrieves a single item.
func (r *Repository) Get(ctx context.Context, id int) (domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return r.items[i], nil
}

// SetCompleted updates the completion flag in place.
func (r *Repository) SetCompleted(ctx context.Context, id int, completed bool) (domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Item{}, domain.ErrItemNotFound
	}
	r.items[i].IsCompleted = completed
	return r.items[i], nil
}

// Delete removes the item.
func (r *Repository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrItemNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *Repository) indexOf(id int) int {
	for i, it := range r.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
