package ports

import (
	"context"

	"github.com/aretw0/tend/pkg/domain"
)

// ItemRepository defines the interface for storing to-do items.
//
// Implementations must assign IDs as max(existing IDs, highest ID ever assigned) + 1,
// starting at domain.FirstID, and must never reuse an ID.
type ItemRepository interface {
	// List returns a snapshot of all items in display order (see domain.Less).
	// The returned slice is owned by the caller.
	List(ctx context.Context) ([]domain.Item, error)

	// Add stores item under a freshly assigned ID, ignoring item.ID,
	// and returns the stored item.
	Add(ctx context.Context, item domain.Item) (domain.Item, error)

	// Get returns the item with the given ID.
	// Returns domain.ErrItemNotFound if it does not exist.
	Get(ctx context.Context, id int) (domain.Item, error)

	// SetCompleted updates the completion flag and returns the updated item.
	// Returns domain.ErrItemNotFound if it does not exist.
	SetCompleted(ctx context.Context, id int, completed bool) (domain.Item, error)

	// Delete removes the item. Its ID is not handed out again.
	// Returns domain.ErrItemNotFound if it does not exist.
	Delete(ctx context.Context, id int) error
}

// Seeder is implemented by repositories that can be pre-populated.
// Items with an ID keep it and count towards the next assigned ID; items
// without one get fresh IDs. Seeding an ID that is already taken fails with
// domain.ErrDuplicateID and stores nothing.
type Seeder interface {
	Seed(ctx context.Context, items []domain.Item) error
}
