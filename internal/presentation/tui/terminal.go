package tui

import (
	"io"
	"os"

	"github.com/aretw0/tend/pkg/domain"
	"golang.org/x/term"
)

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ItemsRendererFor picks the glamour renderer when out is a terminal.
// It returns nil otherwise, leaving callers on their plain text output.
func ItemsRendererFor(out io.Writer) func([]domain.Item) (string, error) {
	if !IsTerminal(out) {
		return nil
	}
	render, err := NewItemsRenderer()
	if err != nil {
		return nil
	}
	return render
}
