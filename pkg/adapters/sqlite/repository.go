package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/tend/pkg/domain"

	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Repository implements ports.ItemRepository using SQLite.
type Repository struct {
	db *sql.DB

	// writeMu serializes read-modify-write transactions within this process.
	writeMu sync.Mutex
}

// New opens (and migrates) the database at dsn.
// Use MemoryDSN for a throwaway database.
func New(dsn string) (*Repository, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS sequences (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_display ON items(completed, id DESC);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Seed implements ports.Seeder.
func (r *Repository) Seed(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		highWater, err := currentHighWater(ctx, tx)
		if err != nil {
			return err
		}
		existing, err := storedIDs(ctx, tx)
		if err != nil {
			return err
		}
		prepared, err := domain.AssignSeedIDs(existing, highWater, items)
		if err != nil {
			return err
		}

		for _, it := range prepared {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO items (id, name, completed) VALUES (?, ?, ?)`,
				it.ID, it.Name, boolToInt(it.IsCompleted),
			); err != nil {
				return fmt.Errorf("failed to seed item %d: %w", it.ID, err)
			}
			if it.ID > highWater {
				highWater = it.ID
			}
		}

		return storeHighWater(ctx, tx, highWater)
	})
}

// List returns all items in display order.
func (r *Repository) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, completed
		FROM items
		ORDER BY completed ASC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// Add assigns the next ID inside a transaction and inserts the item.
func (r *Repository) Add(ctx context.Context, item domain.Item) (domain.Item, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var maxID int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM items`).Scan(&maxID); err != nil {
			return fmt.Errorf("failed to read max id: %w", err)
		}

		highWater, err := currentHighWater(ctx, tx)
		if err != nil {
			return err
		}

		item.ID = domain.NextID([]domain.Item{{ID: maxID}}, highWater)

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, name, completed) VALUES (?, ?, ?)`,
			item.ID, item.Name, boolToInt(item.IsCompleted),
		); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		return storeHighWater(ctx, tx, item.ID)
	})
	if err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// Get retrieves a single item.
func (r *Repository) Get(ctx context.Context, id int) (domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, completed FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return item, err
}

// SetCompleted updates the completion flag.
func (r *Repository) SetCompleted(ctx context.Context, id int, completed bool) (domain.Item, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE items SET completed = ? WHERE id = ?`, boolToInt(completed), id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to update item %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes the item. The sequences table keeps its ID from being reassigned.
func (r *Repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
