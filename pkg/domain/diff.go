package domain

// ItemsDiff represents the changes between two item snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type ItemsDiff struct {
	// Revision identifies the snapshot the diff leads to.
	Revision uint64 `json:"revision"`

	// Added contains items present only in the new snapshot.
	Added []Item `json:"added,omitempty"`

	// Updated contains items whose name or completion flag changed.
	Updated []Item `json:"updated,omitempty"`

	// Removed contains the IDs of items no longer present.
	Removed []int `json:"removed,omitempty"`

	// Order is the full display order of the new snapshot, by ID.
	Order []int `json:"order"`
}

// Diff calculates the difference between two item snapshots.
// If oldItems is nil, every item in newItems is reported as added (initial load).
// It returns nil when both snapshots hold the same items in the same order.
func Diff(oldItems, newItems []Item) *ItemsDiff {
	diff := &ItemsDiff{
		Order: make([]int, 0, len(newItems)),
	}

	previous := make(map[int]Item, len(oldItems))
	for _, it := range oldItems {
		previous[it.ID] = it
	}

	seen := make(map[int]struct{}, len(newItems))
	for _, it := range newItems {
		seen[it.ID] = struct{}{}
		diff.Order = append(diff.Order, it.ID)

		old, exists := previous[it.ID]
		switch {
		case !exists:
			diff.Added = append(diff.Added, it)
		case old != it:
			diff.Updated = append(diff.Updated, it)
		}
	}

	for _, it := range oldItems {
		if _, ok := seen[it.ID]; !ok {
			diff.Removed = append(diff.Removed, it.ID)
		}
	}

	if oldItems != nil && diff.IsEmpty() && sameOrder(oldItems, diff.Order) {
		return nil
	}
	return diff
}

func sameOrder(items []Item, order []int) bool {
	if len(items) != len(order) {
		return false
	}
	for i, it := range items {
		if it.ID != order[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any item changes.
func (d *ItemsDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Updated) == 0 &&
		len(d.Removed) == 0
}
