package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsMarkdown_Golden(t *testing.T) {
	items := domain.SeedItems()
	items[2].IsCompleted = true
	items = domain.SortItems(items)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "items_table", []byte(ItemsMarkdown(items)))
	g.Assert(t, "items_escaped", []byte(ItemsMarkdown([]domain.Item{{ID: 7, Name: "a | b\nc"}})))
}

func TestItemsMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "_No items._\n", ItemsMarkdown(nil))
}

func TestItemsRenderer_Glamour(t *testing.T) {
	render, err := newRenderer(glamour.WithStandardStyle("notty"))
	require.NoError(t, err)

	out, err := itemsRenderer(render)(domain.SeedItems())
	require.NoError(t, err)
	for _, name := range []string{"Task1", "Task3", "Task5"} {
		assert.Contains(t, out, name)
	}
}

func TestBanner_Ascii(t *testing.T) {
	out := Banner(termenv.Ascii, "1.2.3\n")
	assert.Contains(t, out, "v1.2.3")
	assert.NotContains(t, out, "\x1b[", "ascii profile must not emit escape codes")

	assert.NotContains(t, Banner(termenv.Ascii, ""), "  v")
}

func TestIsTerminal_NonFile(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Nil(t, ItemsRendererFor(&buf))
}
