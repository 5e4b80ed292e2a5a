/*
Package tend is a small to-do list service built around two pieces: an observable
value store and an ordered, auto-identifying item repository.

# Concept

An App owns an online-servers counter (an observable.Store[int]) and a to-do list
(a tasks.Manager over any ports.ItemRepository). Observers subscribe to the counter
and are called synchronously, in registration order, each time it is set. The
to-do list is always read in display order: incomplete items first, newest first
within each group. New items get max(id)+1, and deleted IDs are never handed out
again.

# Storage

The repository is pluggable (Hexagonal Architecture). Adapters are provided for
process memory, Redis and SQLite, and all of them pass the same contract suite
(see ports.RunItemRepositoryContract).

# Usage

	ctx := context.Background()
	app, err := tend.New(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	app.Servers().Subscribe(func() {
		fmt.Println("online:", app.Servers().Get())
	})
	app.Servers().Set(5)

	item, _ := app.Tasks().Add(ctx, "Task6")
	fmt.Println(item) // [ ] #6 Task6

# Front-ends

The same App backs the HTTP API (pkg/adapters/http), the MCP tool server
(pkg/adapters/mcp), the interactive Runner in this package and the tend CLI.
*/
package tend
