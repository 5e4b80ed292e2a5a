package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aretw0/tend/pkg/domain"
)

const itemsSequence = "items"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (domain.Item, error) {
	var (
		item      domain.Item
		completed int
	)
	if err := s.Scan(&item.ID, &item.Name, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, err
		}
		return domain.Item{}, fmt.Errorf("failed to scan item: %w", err)
	}
	item.IsCompleted = completed != 0
	return item, nil
}

func currentHighWater(ctx context.Context, tx *sql.Tx) (int, error) {
	var value int
	err := tx.QueryRowContext(ctx, `SELECT value FROM sequences WHERE name = ?`, itemsSequence).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	return value, nil
}

func storeHighWater(ctx context.Context, tx *sql.Tx, value int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sequences (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = MAX(value, excluded.value)
	`, itemsSequence, value)
	if err != nil {
		return fmt.Errorf("failed to store sequence: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// storedIDs returns the stored items with only their IDs filled in.
func storedIDs(ctx context.Context, tx *sql.Tx) ([]domain.Item, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("failed to query item ids: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		items = append(items, domain.Item{ID: id})
	}
	return items, rows.Err()
}
