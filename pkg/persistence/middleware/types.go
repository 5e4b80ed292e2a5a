package middleware

import "github.com/aretw0/tend/pkg/ports"

// Middleware allows wrapping an ItemRepository to add behavior.
type Middleware func(ports.ItemRepository) ports.ItemRepository

// Chain composes middlewares so that the first one is the outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next ports.ItemRepository) ports.ItemRepository {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
