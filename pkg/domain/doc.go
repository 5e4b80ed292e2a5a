/*
Package domain contains the core domain models of tend.

It defines the to-do Item, the display ordering rules applied to any collection of
items, and the seed data a fresh repository starts from. This package is kept pure
and free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Item: One to-do entry with a unique integer ID, a name, and a completion flag.
  - ItemsDiff: The change between two snapshots of the item list, as pushed to live views.
  - ServerStatus: Snapshot of the online-servers counter for a region.

# Ordering

Items are always presented incomplete first, then by descending ID, so the most
recently created entry of each group comes first. See Less and SortItems.
*/
package domain
