// Copyright (c) Weftworks. All rights reserved.

package oai

import "github.com/weftworks/loom"

const completionsPath = "/chat/completions"

// chatRequest is a [loom.Request] plus the transport-level stream fields.
// The core request already carries wire-shaped JSON tags, so it embeds
// directly into the body.
type chatRequest struct {
	*loom.Request
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// prepare copies req, filling in the client's default model when unset.
// The caller's request is never mutated.
func prepare(req *loom.Request, defaultModel string) *loom.Request {
	r := *req
	if r.Model == "" {
		r.Model = defaultModel
	}
	return &r
}
