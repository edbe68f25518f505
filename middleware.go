// Copyright (c) Weftworks. All rights reserved.

package loom

import "context"

// ChatHandler is the function signature for a non-streaming completion.
type ChatHandler func(ctx context.Context, req *Request) (*SendResponse, error)

// Middleware wraps a [ChatHandler] to add cross-cutting behavior.
// Middleware should call next to continue the chain, or return early to
// short-circuit.
type Middleware func(next ChatHandler) ChatHandler

// Chain applies middleware in order (first in list = outermost wrapper).
func Chain(handler ChatHandler, mws ...Middleware) ChatHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
