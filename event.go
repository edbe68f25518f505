// Copyright (c) Weftworks. All rights reserved.

package loom

// EventType discriminates the variants of a streaming [Event].
type EventType string

const (
	// EventContent carries a decoded chunk with a non-empty content delta.
	EventContent EventType = "content"

	// EventToolCall is emitted immediately before a tool handler runs.
	EventToolCall EventType = "tool_call"

	// EventToolResult carries the outcome of a completed tool call.
	EventToolResult EventType = "tool_result"

	// EventRoundEnd marks all of a round's tool calls as resolved; the
	// next round's stream opens after it.
	EventRoundEnd EventType = "round_end"
)

// Event is one element of a tool-augmented streaming sequence: content
// chunks interleaved with tool lifecycle markers in deterministic order.
// Events are in-process signaling only; this package never puts them on
// the wire.
type Event struct {
	Type EventType

	// Chunk is set on EventContent.
	Chunk *StreamChunk

	// Call is set on EventToolCall and EventToolResult.
	Call *ToolCall

	// Result is set on EventToolResult: the handler's result, or the
	// structured error result fed back to the model.
	Result any

	// Round is the 1-based round this event belongs to.
	Round int
}

// Text returns the content fragment for content events, "" otherwise.
func (e Event) Text() string {
	return e.Chunk.Text()
}
