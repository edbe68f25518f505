// Copyright (c) Weftworks. All rights reserved.

package loom

import "context"

// ChatClient is the transport boundary between the agent loop and a
// chat-completions service. Implementations hold no per-call state and may
// be shared across goroutines. The oai subpackage provides the
// OpenAI-compatible HTTP implementation.
type ChatClient interface {
	// Complete performs one non-streaming chat completion.
	Complete(ctx context.Context, req *Request) (*SendResponse, error)

	// StreamComplete performs one streaming chat completion. The network
	// request is bound to the returned stream's lifetime: closing the
	// stream or cancelling ctx aborts the connection.
	StreamComplete(ctx context.Context, req *Request) (*ResponseStream[StreamChunk], error)
}
