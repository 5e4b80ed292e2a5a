/*
Package observable implements a typed value holder that broadcasts every change to
registered callbacks.

A Store keeps one value of type T. Set replaces the value and then synchronously
invokes every callback registered at that moment, in registration order, before
returning. Callbacks receive no arguments; they call Get to read the new value.

	servers := observable.New(0, observable.WithName("montreal"))
	tok := servers.Subscribe(func() {
		fmt.Println("online:", servers.Get())
	})
	servers.Set(5) // prints "online: 5"
	servers.Unsubscribe(tok)

# Failure Policy

A callback that panics does not abort the broadcast. The panic is recovered, logged,
and passed to the handler configured with WithPanicHandler; the remaining callbacks
still run.

# Concurrency

A Store is safe for concurrent use. Notification runs outside the internal locks, so
callbacks may call Get, Set, Subscribe and Unsubscribe on the same Store. A callback
registered while a notification is in flight is not invoked by that notification.
*/
package observable
