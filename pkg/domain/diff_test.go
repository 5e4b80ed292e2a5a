package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old      []Item
		new      []Item
		wantDiff *ItemsDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  []Item{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}},
			wantDiff: &ItemsDiff{
				Added: []Item{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}},
				Order: []int{2, 1},
			},
		},
		{
			name:     "No Changes",
			old:      []Item{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}},
			new:      []Item{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}},
			wantDiff: nil,
		},
		{
			name: "Item Added",
			old:  []Item{{ID: 1, Name: "a"}},
			new:  []Item{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}},
			wantDiff: &ItemsDiff{
				Added: []Item{{ID: 2, Name: "b"}},
				Order: []int{2, 1},
			},
		},
		{
			name: "Item Completed Moves Last",
			old:  []Item{{ID: 3, Name: "c"}, {ID: 2, Name: "b"}},
			new:  []Item{{ID: 2, Name: "b"}, {ID: 3, Name: "c", IsCompleted: true}},
			wantDiff: &ItemsDiff{
				Updated: []Item{{ID: 3, Name: "c", IsCompleted: true}},
				Order:   []int{2, 3},
			},
		},
		{
			name: "Item Removed",
			old:  []Item{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}},
			new:  []Item{{ID: 1, Name: "a"}},
			wantDiff: &ItemsDiff{
				Removed: []int{2},
				Order:   []int{1},
			},
		},
		{
			name:     "Empty To Empty",
			old:      []Item{},
			new:      []Item{},
			wantDiff: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)

			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}
			if !reflect.DeepEqual(got, tt.wantDiff) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.wantDiff)
			}
		})
	}
}

func TestDiff_JSONOmitsEmptySections(t *testing.T) {
	d := Diff([]Item{{ID: 1, Name: "a"}}, []Item{{ID: 1, Name: "a", IsCompleted: true}})

	bytes, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"revision":0,"updated":[{"id":1,"name":"a","is_completed":true}],"order":[1]}`
	if string(bytes) != want {
		t.Errorf("JSON = %s, want %s", bytes, want)
	}
}
