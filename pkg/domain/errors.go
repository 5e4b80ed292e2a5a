package domain

import "errors"

// ErrItemNotFound is returned when an item ID cannot be found in the repository.
var ErrItemNotFound = errors.New("item not found")

// ErrEmptyName is returned by the opt-in sanitize middleware for blank names.
var ErrEmptyName = errors.New("item name is empty")

// ErrDuplicateID is returned when seeding would store two items under one ID.
var ErrDuplicateID = errors.New("duplicate item id")
