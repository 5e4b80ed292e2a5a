package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/tend"
	"github.com/aretw0/tend/pkg/domain"
)

// RunDemo walks through the store and repository behaviour on a fresh
// in-memory App and writes each step to w.
func RunDemo(ctx context.Context, w io.Writer) error {
	app, err := tend.New(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Fprintln(w, "== servers store ==")
	servers := app.Servers()
	for _, name := range []string{"dashboard", "alerts"} {
		name := name
		servers.Subscribe(func() {
			fmt.Fprintf(w, "%s: %d servers online in %s\n", name, servers.Get(), app.Region())
		})
	}
	fmt.Fprintf(w, "set online to 5 (was %d)\n", servers.Get())
	servers.Set(5)

	fmt.Fprintln(w, "\n== to-do list ==")
	mgr := app.Tasks()
	if err := printList(ctx, w, app); err != nil {
		return err
	}

	item, err := mgr.Add(ctx, "Task6")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nadded %s\n", item)
	if err := printList(ctx, w, app); err != nil {
		return err
	}

	item, err = mgr.Complete(ctx, 3)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\ncompleted %s\n", item)
	if err := printList(ctx, w, app); err != nil {
		return err
	}

	if err := mgr.Remove(ctx, 6); err != nil {
		return err
	}
	item, err = mgr.Add(ctx, "Task7")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nremoved #6, then added %s\n", item)
	return printList(ctx, w, app)
}

func printList(ctx context.Context, w io.Writer, app *tend.App) error {
	items, err := app.Tasks().Items(ctx)
	if err != nil {
		return err
	}
	out, err := tend.PlainItems(items)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// PrintItems renders items with render, falling back to plain lines.
func PrintItems(w io.Writer, items []domain.Item, render func([]domain.Item) (string, error)) error {
	if render == nil {
		render = tend.PlainItems
	}
	out, err := render(items)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
