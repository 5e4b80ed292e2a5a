package tasks_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/tend/pkg/adapters/memory"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/ports"
	"github.com/aretw0/tend/pkg/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RevisionBumpsOnMutation(t *testing.T) {
	ctx := context.Background()
	mgr := tasks.NewManager(memory.NewSeeded())

	var notified int
	mgr.Revision().Subscribe(func() { notified++ })

	item, err := mgr.Add(ctx, "Task6")
	require.NoError(t, err)
	assert.Equal(t, domain.Item{ID: 6, Name: "Task6"}, item)

	_, err = mgr.Complete(ctx, 6)
	require.NoError(t, err)
	_, err = mgr.Reopen(ctx, 6)
	require.NoError(t, err)
	require.NoError(t, mgr.Remove(ctx, 6))

	assert.Equal(t, uint64(4), mgr.Revision().Get())
	assert.Equal(t, 4, notified)
}

func TestManager_FailedMutationKeepsRevision(t *testing.T) {
	ctx := context.Background()
	mgr := tasks.NewManager(memory.NewSeeded())

	_, err := mgr.Complete(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.ErrorIs(t, mgr.Remove(ctx, 42), domain.ErrItemNotFound)

	assert.Equal(t, uint64(0), mgr.Revision().Get())
}

func TestManager_Reads(t *testing.T) {
	ctx := context.Background()
	mgr := tasks.NewManager(memory.NewSeeded())

	items, err := mgr.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 5, items[0].ID)

	item, err := mgr.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Task3", item.Name)
}

func TestManager_AddItemKeepsCompletion(t *testing.T) {
	ctx := context.Background()
	mgr := tasks.NewManager(memory.NewSeeded())

	item, err := mgr.AddItem(ctx, domain.Item{ID: 77, Name: "done", IsCompleted: true})
	require.NoError(t, err)
	assert.Equal(t, domain.Item{ID: 6, Name: "done", IsCompleted: true}, item)
}

// countingLocker records lock usage and detects overlapping holders.
type countingLocker struct {
	held    atomic.Int32
	locks   atomic.Int32
	overlap atomic.Bool
	fail    error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	if l.held.Add(1) > 1 {
		l.overlap.Store(true)
	}
	l.locks.Add(1)
	return func(context.Context) error {
		l.held.Add(-1)
		return nil
	}, nil
}

func TestManager_UsesDistributedLocker(t *testing.T) {
	ctx := context.Background()
	locker := &countingLocker{}
	mgr := tasks.NewManager(memory.New(), tasks.WithLocker(locker))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Add(ctx, "parallel")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), locker.locks.Load())
	assert.False(t, locker.overlap.Load(), "mutations must not overlap")

	items, err := mgr.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 20)
	assert.Equal(t, 20, items[0].ID)
}

func TestManager_LockFailure(t *testing.T) {
	lockErr := errors.New("redis down")
	mgr := tasks.NewManager(memory.New(), tasks.WithLocker(&countingLocker{fail: lockErr}))

	_, err := mgr.Add(context.Background(), "never stored")
	require.ErrorIs(t, err, lockErr)

	items, err := mgr.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, uint64(0), mgr.Revision().Get())
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	seeded, err := tasks.SeedIfEmpty(ctx, repo, domain.SeedItems())
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = tasks.SeedIfEmpty(ctx, repo, []domain.Item{{ID: 9, Name: "ignored"}})
	require.NoError(t, err)
	assert.False(t, seeded, "non-empty repositories are left alone")

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

// addOnly hides the Seeder implementation of the wrapped repository.
type addOnly struct{ ports.ItemRepository }

func TestSeedIfEmpty_WithoutSeeder(t *testing.T) {
	ctx := context.Background()
	repo := addOnly{memory.New()}

	seeded, err := tasks.SeedIfEmpty(ctx, repo, domain.SeedItems())
	require.NoError(t, err)
	assert.True(t, seeded)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SortItems(domain.SeedItems()), items)
}
