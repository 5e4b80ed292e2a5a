package domain

import "sort"

// Less reports whether a is displayed before b.
// Incomplete items come first; within each group higher IDs come first.
func Less(a, b Item) bool {
	if a.IsCompleted != b.IsCompleted {
		return !a.IsCompleted
	}
	return a.ID > b.ID
}

// SortItems returns a sorted copy of items. The input slice is not modified.
func SortItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// IsSorted reports whether items already follow the display order.
func IsSorted(items []Item) bool {
	for i := 1; i < len(items); i++ {
		if Less(items[i], items[i-1]) {
			return false
		}
	}
	return true
}
