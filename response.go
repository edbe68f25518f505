// Copyright (c) Weftworks. All rights reserved.

package loom

// SendResponse is the complete (non-streaming) response from a [ChatClient],
// in the wire shape of the chat-completions API. For agent runs, Usage holds
// the accumulated totals across all rounds.
type SendResponse struct {
	ID      string   `json:"id,omitempty"`
	Object  string   `json:"object,omitempty"`
	Created int64    `json:"created,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is one generation candidate within a [SendResponse].
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// First returns the first choice's message, or nil when the response carries
// no choices. An empty choice list is a valid terminal state, not an error.
func (r *SendResponse) First() *Message {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	return &r.Choices[0].Message
}

// Text returns the first choice's content, or "" when there are no choices.
func (r *SendResponse) Text() string {
	if m := r.First(); m != nil {
		return m.Content
	}
	return ""
}

// FinishReason returns the first choice's finish reason, or "" when there
// are no choices or the model reported none.
func (r *SendResponse) FinishReason() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].FinishReason
}

// ToolCalls returns the first choice's tool calls, or nil when there are no
// choices or the model requested none.
func (r *SendResponse) ToolCalls() []ToolCall {
	if m := r.First(); m != nil {
		return m.ToolCalls
	}
	return nil
}
