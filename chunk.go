// Copyright (c) Weftworks. All rights reserved.

package loom

// StreamChunk is a single decoded frame of a streaming chat completion.
// Each chunk carries a partial delta; the complete message is the
// concatenation of all deltas in arrival order.
type StreamChunk struct {
	ID      string        `json:"id,omitempty"`
	Object  string        `json:"object,omitempty"`
	Created int64         `json:"created,omitempty"`
	Model   string        `json:"model,omitempty"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice is one generation candidate within a [StreamChunk].
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Delta holds the partial message fields delivered by one frame. Content is
// a pointer so an empty fragment is distinguishable from an absent one.
type Delta struct {
	Role      Role            `json:"role,omitempty"`
	Content   *string         `json:"content,omitempty"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

// ToolCallDelta is a fragment of a tool call spread across several frames.
// Index identifies which call the fragment belongs to; fragments for the
// same index are concatenated to reassemble the call.
type ToolCallDelta struct {
	Index    int               `json:"index"`
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type,omitempty"`
	Function FunctionCallDelta `json:"function"`
}

// FunctionCallDelta carries partial function name and argument text.
type FunctionCallDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Text returns the first choice's content fragment, or "" when the chunk
// carries no choices or no content.
func (c *StreamChunk) Text() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	if s := c.Choices[0].Delta.Content; s != nil {
		return *s
	}
	return ""
}

// FinishReason returns the first choice's finish reason, or "" while the
// model is still generating.
func (c *StreamChunk) FinishReason() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	if fr := c.Choices[0].FinishReason; fr != nil {
		return *fr
	}
	return ""
}

// Accumulator merges streamed chunks back into a complete response. It
// tracks the first choice only: content fragments concatenate in arrival
// order and tool call fragments are reassembled by index. The zero value is
// ready to use.
type Accumulator struct {
	id      string
	object  string
	created int64
	model   string
	role    Role
	content string
	calls   []ToolCall
	finish  string
	usage   *Usage
	seen    bool
}

// Add folds one chunk into the accumulator.
func (a *Accumulator) Add(chunk StreamChunk) {
	if chunk.ID != "" {
		a.id = chunk.ID
	}
	if chunk.Object != "" {
		a.object = chunk.Object
	}
	if chunk.Created != 0 {
		a.created = chunk.Created
	}
	if chunk.Model != "" {
		a.model = chunk.Model
	}
	if chunk.Usage != nil {
		a.usage = chunk.Usage
	}
	if len(chunk.Choices) == 0 {
		return
	}
	a.seen = true
	choice := chunk.Choices[0]
	if choice.Delta.Role != "" {
		a.role = choice.Delta.Role
	}
	if choice.Delta.Content != nil {
		a.content += *choice.Delta.Content
	}
	for _, d := range choice.Delta.ToolCalls {
		for d.Index >= len(a.calls) {
			a.calls = append(a.calls, ToolCall{})
		}
		call := &a.calls[d.Index]
		if d.ID != "" {
			call.ID = d.ID
		}
		if d.Type != "" {
			call.Type = d.Type
		}
		call.Function.Name += d.Function.Name
		call.Function.Arguments += d.Function.Arguments
	}
	if choice.FinishReason != nil {
		a.finish = *choice.FinishReason
	}
}

// ToolCalls returns the tool calls reassembled so far, in index order.
func (a *Accumulator) ToolCalls() []ToolCall {
	return a.calls
}

// Usage returns the last usage payload seen, or nil. Services report
// cumulative usage in the final chunk, so no summing happens here.
func (a *Accumulator) Usage() *Usage {
	return a.usage
}

// Message returns the assistant message reconstructed from the deltas.
func (a *Accumulator) Message() Message {
	role := a.role
	if role == "" {
		role = RoleAssistant
	}
	return Message{Role: role, Content: a.content, ToolCalls: a.calls}
}

// Response returns the merged [SendResponse]. A stream that never delivered
// a choice yields a response with an empty choice list.
func (a *Accumulator) Response() *SendResponse {
	resp := &SendResponse{
		ID:      a.id,
		Object:  a.object,
		Created: a.created,
		Model:   a.model,
		Usage:   a.usage,
	}
	if a.seen {
		resp.Choices = []Choice{{Message: a.Message(), FinishReason: a.finish}}
	}
	return resp
}
