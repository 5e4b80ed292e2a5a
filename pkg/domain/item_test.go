package domain_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestSeedItems(t *testing.T) {
	items := domain.SeedItems()

	assert.Len(t, items, 5)
	for i, it := range items {
		assert.Equal(t, i+1, it.ID)
		assert.Equal(t, fmt.Sprintf("Task%d", i+1), it.Name)
		assert.False(t, it.IsCompleted)
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name      string
		items     []domain.Item
		highWater int
		want      int
	}{
		{"Empty", nil, 0, 1},
		{"Seeded", domain.SeedItems(), 0, 6},
		{"Unordered", []domain.Item{{ID: 4}, {ID: 9}, {ID: 2}}, 0, 10},
		{"DeletedMaxStillCounts", []domain.Item{{ID: 1}}, 7, 8},
		{"EmptyAfterDeletes", nil, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NextID(tt.items, tt.highWater))
		})
	}
}

func TestItem_String(t *testing.T) {
	assert.Equal(t, "[ ] #3 Task3", domain.Item{ID: 3, Name: "Task3"}.String())
	assert.Equal(t, "[x] #4 Task4", domain.Item{ID: 4, Name: "Task4", IsCompleted: true}.String())
}

func TestAssignSeedIDs(t *testing.T) {
	t.Run("fills missing ids after explicit ones", func(t *testing.T) {
		in := []domain.Item{domain.NewItem("a"), {ID: 4, Name: "d"}, domain.NewItem("b")}
		out, err := domain.AssignSeedIDs(nil, 0, in)
		assert.NoError(t, err)
		assert.Equal(t, []domain.Item{{ID: 5, Name: "a"}, {ID: 4, Name: "d"}, {ID: 6, Name: "b"}}, out)
		assert.Zero(t, in[0].ID, "input is not modified")
	})

	t.Run("respects existing items and high water", func(t *testing.T) {
		out, err := domain.AssignSeedIDs([]domain.Item{{ID: 2}}, 7, []domain.Item{{Name: "x"}, {ID: -3, Name: "y"}})
		assert.NoError(t, err)
		assert.Equal(t, []domain.Item{{ID: 8, Name: "x"}, {ID: 9, Name: "y"}}, out)
	})

	t.Run("empty repository starts at FirstID", func(t *testing.T) {
		out, err := domain.AssignSeedIDs(nil, 0, []domain.Item{domain.NewItem("a"), domain.NewItem("b")})
		assert.NoError(t, err)
		assert.Equal(t, []int{1, 2}, []int{out[0].ID, out[1].ID})
	})

	t.Run("duplicates within the batch", func(t *testing.T) {
		_, err := domain.AssignSeedIDs(nil, 0, []domain.Item{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}})
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
	})

	t.Run("duplicates against existing", func(t *testing.T) {
		_, err := domain.AssignSeedIDs(domain.SeedItems(), 5, []domain.Item{{ID: 3, Name: "again"}})
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
	})
}
