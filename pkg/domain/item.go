package domain

import "fmt"

// FirstID is the identifier assigned to the first item of an empty repository.
const FirstID = 1

// Item is a single to-do entry.
// ID is assigned by the repository on insert and never changes afterwards.
type Item struct {
	ID          int    `json:"id" yaml:"id" mapstructure:"id"`
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	IsCompleted bool   `json:"is_completed" yaml:"is_completed" mapstructure:"is_completed"`
}

// NewItem creates an incomplete item without an ID.
func NewItem(name string) Item {
	return Item{Name: name}
}

// String implements fmt.Stringer.
func (i Item) String() string {
	mark := " "
	if i.IsCompleted {
		mark = "x"
	}
	return fmt.Sprintf("[%s] #%d %s", mark, i.ID, i.Name)
}

// SeedItems returns the default contents of a fresh repository:
// Task1..Task5 with IDs 1..5, all incomplete.
func SeedItems() []Item {
	items := make([]Item, 0, 5)
	for id := 1; id <= 5; id++ {
		items = append(items, Item{ID: id, Name: fmt.Sprintf("Task%d", id)})
	}
	return items
}

// NextID computes the identifier for a new item given the IDs currently stored and
// the highest ID ever assigned (highWater). IDs are never reused, so a deleted
// maximum still counts. An empty repository with no history yields FirstID.
func NextID(items []Item, highWater int) int {
	maxID := highWater
	for _, it := range items {
		if it.ID > maxID {
			maxID = it.ID
		}
	}
	if maxID < FirstID {
		return FirstID
	}
	return maxID + 1
}

// AssignSeedIDs prepares items for bulk insertion next to existing ones.
// Items with an ID of at least FirstID keep it; that ID must not appear in
// existing or twice in items, otherwise ErrDuplicateID is returned. Items
// without an ID get fresh ones above every known ID and highWater, in order.
// The input slice is not modified.
func AssignSeedIDs(existing []Item, highWater int, items []Item) ([]Item, error) {
	used := make(map[int]bool, len(existing)+len(items))
	for _, it := range existing {
		used[it.ID] = true
	}

	next := NextID(existing, highWater)
	for _, it := range items {
		if it.ID < FirstID {
			continue
		}
		if used[it.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, it.ID)
		}
		used[it.ID] = true
		if it.ID >= next {
			next = it.ID + 1
		}
	}

	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID < FirstID {
			out[i].ID = next
			next++
		}
	}
	return out, nil
}
