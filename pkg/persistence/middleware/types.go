package middleware

import "github.com/aretw0/occlusion/pkg/ports"

// Middleware allows wrapping a ResultStore to add behavior.
type Middleware func(ports.ResultStore) ports.ResultStore

// Chain wraps store with every middleware. The first one sees calls first.
func Chain(store ports.ResultStore, mws ...Middleware) ports.ResultStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
