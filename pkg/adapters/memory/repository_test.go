package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/tend/pkg/adapters/memory"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Contract(t *testing.T) {
	ports.RunItemRepositoryContract(t, func(t *testing.T, seed []domain.Item) ports.ItemRepository {
		return memory.New(memory.WithSeed(seed))
	})
}

func TestMemoryRepository_NewSeeded(t *testing.T) {
	repo := memory.NewSeeded()

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, "Task5", items[0].Name)
}

func TestMemoryRepository_SeedAfterConstruction(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	var seeder ports.Seeder = repo
	require.NoError(t, seeder.Seed(ctx, []domain.Item{{ID: 10, Name: "ten"}}))

	item, err := repo.Add(ctx, domain.NewItem("eleven"))
	require.NoError(t, err)
	assert.Equal(t, 11, item.ID)
}

func TestMemoryRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSeeded()

	item, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	item.Name = "changed"

	again, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Task1", again.Name)
}
