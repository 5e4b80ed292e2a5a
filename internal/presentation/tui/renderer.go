package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	return newRenderer(glamour.WithAutoStyle())
}

func newRenderer(opts ...glamour.TermRendererOption) (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// ItemsMarkdown formats items as a markdown table, in the order given.
func ItemsMarkdown(items []domain.Item) string {
	if len(items) == 0 {
		return "_No items._\n"
	}

	var b strings.Builder
	b.WriteString("| ID | Done | Name |\n")
	b.WriteString("|---:|:----:|------|\n")
	for _, it := range items {
		done := " "
		if it.IsCompleted {
			done = "x"
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", it.ID, done, escapeCell(it.Name))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// NewItemsRenderer renders item lists as a glamour-styled table.
func NewItemsRenderer() (func([]domain.Item) (string, error), error) {
	render, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return itemsRenderer(render), nil
}

func itemsRenderer(render func(string) (string, error)) func([]domain.Item) (string, error) {
	return func(items []domain.Item) (string, error) {
		return render(ItemsMarkdown(items))
	}
}
