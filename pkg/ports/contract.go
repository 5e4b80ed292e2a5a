package ports

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RepositoryFactory builds a fresh, isolated repository holding seed.
// A nil seed means an empty repository.
type RepositoryFactory func(t *testing.T, seed []domain.Item) ItemRepository

// RunItemRepositoryContract runs a suite of tests to verify that an ItemRepository
// implementation adheres to the defined interface contract.
func RunItemRepositoryContract(t *testing.T, newRepo RepositoryFactory) {
	ctx := context.Background()

	t.Run("Add From Empty Assigns Sequential IDs", func(t *testing.T) {
		repo := newRepo(t, nil)

		for n := 1; n <= 10; n++ {
			item, err := repo.Add(ctx, domain.NewItem(fmt.Sprintf("item-%d", n)))
			require.NoError(t, err)
			assert.Equal(t, n, item.ID, "the n-th Add on an empty repository returns ID n")
		}
	})

	t.Run("Add To Seeded Repository", func(t *testing.T) {
		repo := newRepo(t, domain.SeedItems())

		item, err := repo.Add(ctx, domain.Item{Name: "Task6"})
		require.NoError(t, err)
		assert.Equal(t, domain.Item{ID: 6, Name: "Task6", IsCompleted: false}, item)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{6, 5, 4, 3, 2, 1}, itemIDs(items))
	})

	t.Run("Add Uses Max Plus One", func(t *testing.T) {
		repo := newRepo(t, []domain.Item{
			{ID: 2, Name: "b"},
			{ID: 7, Name: "g"},
			{ID: 4, Name: "d"},
		})

		item, err := repo.Add(ctx, domain.NewItem("h"))
		require.NoError(t, err)
		assert.Equal(t, 8, item.ID)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, items, item)
	})

	t.Run("Add Overwrites Caller ID", func(t *testing.T) {
		repo := newRepo(t, domain.SeedItems())

		item, err := repo.Add(ctx, domain.Item{ID: 99, Name: "ignored id"})
		require.NoError(t, err)
		assert.Equal(t, 6, item.ID)

		_, err = repo.Get(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("Add Keeps Completion Flag", func(t *testing.T) {
		repo := newRepo(t, domain.SeedItems())

		item, err := repo.Add(ctx, domain.Item{Name: "done already", IsCompleted: true})
		require.NoError(t, err)
		assert.True(t, item.IsCompleted)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 4, 3, 2, 1, 6}, itemIDs(items))
	})

	t.Run("Completing Moves Item To Completed Group", func(t *testing.T) {
		repo := newRepo(t, domain.SeedItems())

		item, err := repo.SetCompleted(ctx, 3, true)
		require.NoError(t, err)
		assert.Equal(t, domain.Item{ID: 3, Name: "Task3", IsCompleted: true}, item)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 4, 2, 1, 3}, itemIDs(items))

		item, err = repo.SetCompleted(ctx, 3, false)
		require.NoError(t, err)
		assert.False(t, item.IsCompleted)

		items, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 4, 3, 2, 1}, itemIDs(items))
	})

	t.Run("List Is Always Sorted", func(t *testing.T) {
		repo := newRepo(t, nil)

		for i := 0; i < 12; i++ {
			_, err := repo.Add(ctx, domain.Item{Name: fmt.Sprintf("n%d", i), IsCompleted: i%3 == 0})
			require.NoError(t, err)
		}
		_, err := repo.SetCompleted(ctx, 5, true)
		require.NoError(t, err)
		_, err = repo.SetCompleted(ctx, 1, false)
		require.NoError(t, err)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 12)
		assert.True(t, domain.IsSorted(items), "List output must follow display order: %v", items)
	})

	t.Run("List Is Idempotent And A Snapshot", func(t *testing.T) {
		repo := newRepo(t, domain.SeedItems())

		first, err := repo.List(ctx)
		require.NoError(t, err)
		second, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		first[0].Name = "mutated by caller"
		first[0].IsCompleted = true

		third, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, second, third, "mutating a returned slice must not affect storage")

		_, err = repo.Add(ctx, domain.NewItem("later"))
		require.NoError(t, err)
		assert.Len(t, second, 5, "earlier snapshots are not affected by later mutations")
	})

	t.Run("Get", func(t *testing.T) {
		repo := newRepo(t, domain.SeedItems())

		item, err := repo.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.Item{ID: 2, Name: "Task2"}, item)

		_, err = repo.Get(ctx, 42)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("SetCompleted Unknown ID", func(t *testing.T) {
		repo := newRepo(t, domain.SeedItems())

		_, err := repo.SetCompleted(ctx, 42, true)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("Seed Assigns Missing IDs", func(t *testing.T) {
		seeder := asSeeder(t, newRepo(t, nil))

		require.NoError(t, seeder.Seed(ctx, []domain.Item{
			domain.NewItem("a"),
			{ID: 4, Name: "d"},
			domain.NewItem("b"),
		}))

		items, err := seeder.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Item{
			{ID: 6, Name: "b"},
			{ID: 5, Name: "a"},
			{ID: 4, Name: "d"},
		}, items)

		item, err := seeder.Add(ctx, domain.NewItem("next"))
		require.NoError(t, err)
		assert.Equal(t, 7, item.ID)
	})

	t.Run("Seed Rejects Duplicate IDs", func(t *testing.T) {
		seeder := asSeeder(t, newRepo(t, domain.SeedItems()))

		err := seeder.Seed(ctx, []domain.Item{{ID: 9, Name: "x"}, {ID: 9, Name: "y"}})
		assert.ErrorIs(t, err, domain.ErrDuplicateID)

		err = seeder.Seed(ctx, []domain.Item{{ID: 3, Name: "again", IsCompleted: true}})
		assert.ErrorIs(t, err, domain.ErrDuplicateID)

		items, err := seeder.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SortItems(domain.SeedItems()), items, "a rejected seed stores nothing")
	})

	t.Run("Delete Never Reuses IDs", func(t *testing.T) {
		repo := newRepo(t, domain.SeedItems())

		require.NoError(t, repo.Delete(ctx, 5))
		_, err := repo.Get(ctx, 5)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)

		item, err := repo.Add(ctx, domain.NewItem("after delete"))
		require.NoError(t, err)
		assert.Equal(t, 6, item.ID)

		assert.ErrorIs(t, repo.Delete(ctx, 5), domain.ErrItemNotFound)
	})

	t.Run("Delete All Then Add", func(t *testing.T) {
		repo := newRepo(t, []domain.Item{{ID: 1, Name: "only"}})

		require.NoError(t, repo.Delete(ctx, 1))
		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		item, err := repo.Add(ctx, domain.NewItem("again"))
		require.NoError(t, err)
		assert.Equal(t, 2, item.ID)
	})

	t.Run("Concurrent Adds Get Unique IDs", func(t *testing.T) {
		repo := newRepo(t, nil)

		const workers = 16
		var wg sync.WaitGroup
		results := make(chan int, workers)
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				item, err := repo.Add(ctx, domain.NewItem(fmt.Sprintf("w%d", i)))
				if err != nil {
					errs <- err
					return
				}
				results <- item.ID
			}(i)
		}
		wg.Wait()
		close(results)
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		var got []int
		for id := range results {
			got = append(got, id)
		}
		sort.Ints(got)

		want := make([]int, workers)
		for i := range want {
			want[i] = i + 1
		}
		assert.Equal(t, want, got)
	})
}

// asSeeder skips the calling test when repo cannot be seeded.
func asSeeder(t *testing.T, repo ItemRepository) interface {
	ItemRepository
	Seeder
} {
	t.Helper()
	seeder, ok := repo.(interface {
		ItemRepository
		Seeder
	})
	if !ok {
		t.Skip("repository does not implement Seeder")
	}
	return seeder
}

func itemIDs(items []domain.Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
