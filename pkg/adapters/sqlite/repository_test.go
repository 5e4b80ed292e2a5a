package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/tend/pkg/adapters/sqlite"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, dsn string) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_Contract(t *testing.T) {
	ports.RunItemRepositoryContract(t, func(t *testing.T, seed []domain.Item) ports.ItemRepository {
		repo := newTestRepo(t, sqlite.MemoryDSN)
		require.NoError(t, repo.Seed(context.Background(), seed))
		return repo
	})
}

func TestSQLiteRepository_EmptyDSNIsMemory(t *testing.T) {
	repo := newTestRepo(t, "")

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items, "empty list is an empty slice, not nil")
}

func TestSQLiteRepository_FileReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")

	repo, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, repo.Seed(ctx, domain.SeedItems()))
	require.NoError(t, repo.Delete(ctx, 5))
	require.NoError(t, repo.Close())

	reopened := newTestRepo(t, path)
	item, err := reopened.Add(ctx, domain.NewItem("after reopen"))
	require.NoError(t, err)
	assert.Equal(t, 6, item.ID, "high-water mark survives a reopen")
}

func TestSQLiteRepository_SeedRejectsSameIDAndRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, sqlite.MemoryDSN)

	require.NoError(t, repo.Seed(ctx, []domain.Item{{ID: 1, Name: "old"}}))
	err := repo.Seed(ctx, []domain.Item{{ID: 2, Name: "two"}, {ID: 1, Name: "new", IsCompleted: true}})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	item, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Item{ID: 1, Name: "old"}, item)

	_, err = repo.Get(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}
