package tend

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/tend/pkg/domain"
)

// Runner handles an interactive command loop over an App using provided IO.
// This allows for easy testing and integration with different frontends (CLI, pipes, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ItemsRenderer
}

// ItemsRenderer turns an item list into display text.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ItemsRenderer func([]domain.Item) (string, error)

// errQuit is returned by a command that ends the loop.
var errQuit = errors.New("quit")

const runnerHelp = `commands:
  ls              list items
  add <name>      add an item
  done <id>       mark an item as completed
  undo <id>       mark an item as not completed
  rm <id>         delete an item
  servers [n]     show or set the online servers counter
  help            show this help
  quit            leave`

// NewRunner creates a Runner over in and out.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run reads one command per line until EOF, "quit" or ctx is done.
// Command errors are printed and do not stop the loop.
func (r *Runner) Run(ctx context.Context, app *App) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	render := r.Renderer
	if render == nil {
		render = PlainItems
	}

	if !r.Headless {
		fmt.Fprintf(r.Output, "--- tend %s (type 'help') ---\n", strings.TrimSpace(Version))
		tok := app.Servers().Subscribe(func() {
			fmt.Fprintf(r.Output, "* servers online: %d\n", app.Servers().Get())
		})
		defer app.Servers().Unsubscribe(tok)
	}

	scanner := bufio.NewScanner(r.Input)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := r.exec(ctx, app, render, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
		}
	}
}

func (r *Runner) exec(ctx context.Context, app *App, render ItemsRenderer, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	mgr := app.Tasks()

	switch cmd {
	case "ls", "list":
		items, err := mgr.Items(ctx)
		if err != nil {
			return err
		}
		out, err := render(items)
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		fmt.Fprint(r.Output, out)
		return nil

	case "add":
		if arg == "" {
			return domain.ErrEmptyName
		}
		item, err := mgr.Add(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Output, "added %s\n", item)
		return nil

	case "done", "undo", "rm":
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid id %q", arg)
		}
		switch cmd {
		case "done":
			item, err := mgr.Complete(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.Output, "completed %s\n", item)
		case "undo":
			item, err := mgr.Reopen(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.Output, "reopened %s\n", item)
		default:
			if err := mgr.Remove(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(r.Output, "removed #%d\n", id)
		}
		return nil

	case "servers":
		if arg == "" {
			fmt.Fprintf(r.Output, "%d servers online (%s)\n", app.Servers().Get(), app.Region())
			return nil
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid server count %q", arg)
		}
		app.Servers().Set(n)
		if r.Headless {
			fmt.Fprintf(r.Output, "%d servers online (%s)\n", n, app.Region())
		}
		return nil

	case "help", "?":
		fmt.Fprintln(r.Output, runnerHelp)
		return nil

	case "quit", "exit", "q":
		return errQuit

	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

// PlainItems renders one item per line.
func PlainItems(items []domain.Item) (string, error) {
	if len(items) == 0 {
		return "(no items)\n", nil
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.String())
		b.WriteByte('\n')
	}
	return b.String(), nil
}
