// Copyright (c) Weftworks. All rights reserved.

// Package oai implements [loom.ChatClient] against any OpenAI-compatible
// chat-completions endpoint.
//
// Create a client with [New] and pass it to [loom.NewAgent]:
//
//	client, err := oai.New(oai.WithModel("gpt-4o"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	agent := loom.NewAgent(client)
//
// Configuration falls back to the environment: OPENAI_API_KEY for the key
// and OPENAI_BASE_URL for the endpoint. A missing API key fails [New]
// before any network activity.
package oai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/weftworks/loom"
)

// Client talks to an OpenAI-compatible chat-completions service. Use [New]
// to create one. A Client holds no per-call state and is safe for
// concurrent use.
type Client struct {
	tp      transport
	model   string
	handler loom.ChatHandler
}

// Verify interface compliance at compile time.
var _ loom.ChatClient = (*Client)(nil)

// New creates a [Client] from options and environment fallbacks. It returns
// [loom.ErrMissingAPIKey] when no key is configured either way.
func New(opts ...Option) (*Client, error) {
	cfg := resolve(opts)
	if cfg.apiKey == "" {
		return nil, fmt.Errorf("%w: set %s or use WithAPIKey", loom.ErrMissingAPIKey, envAPIKey)
	}
	c := &Client{
		tp:    newHTTPTransport(cfg),
		model: cfg.model,
	}
	c.handler = loom.Chain(c.coreComplete, cfg.middleware...)
	return c, nil
}

// newWithTransport creates a Client with a custom transport (for testing).
func newWithTransport(tp transport, model string) *Client {
	c := &Client{tp: tp, model: model}
	c.handler = c.coreComplete
	return c
}

// Complete performs one non-streaming chat completion.
func (c *Client) Complete(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
	return c.handler(ctx, req)
}

// coreComplete is the base implementation called by the middleware chain.
func (c *Client) coreComplete(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
	body := &chatRequest{Request: prepare(req, c.model)}

	resp, err := c.tp.do(ctx, http.MethodPost, completionsPath, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", loom.ErrTransport, err)
	}

	var out loom.SendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", loom.ErrTransport, err)
	}
	return &out, nil
}

// StreamComplete performs one streaming chat completion, decoding
// server-sent events into [loom.StreamChunk] values. The HTTP request is
// issued by the stream's producer and bound to the stream's context, so
// closing the stream aborts the connection even mid-read.
func (c *Client) StreamComplete(ctx context.Context, req *loom.Request) (*loom.ResponseStream[loom.StreamChunk], error) {
	body := &chatRequest{
		Request:       prepare(req, c.model),
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}

	stream := loom.NewResponseStream(ctx, func(ctx context.Context, ch chan<- loom.StreamChunk) error {
		resp, err := c.tp.do(ctx, http.MethodPost, completionsPath, body)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return decodeSSE(ctx, resp.Body, ch)
	})

	return stream, nil
}
