// Copyright (c) Weftworks. All rights reserved.

package loom

import (
	"context"
	"fmt"
	"log/slog"
)

// runState holds everything one call owns: its conversation, its usage
// accumulator, and its tool lookup. Nothing here is shared across calls.
type runState struct {
	client    ChatClient
	logger    *slog.Logger
	model     string
	registry  *Registry
	messages  []Message
	maxRounds int
	usage     Usage
}

func (s *runState) request() *Request {
	return &Request{
		Model:    s.model,
		Messages: s.messages,
		Tools:    s.registry.Specs(),
	}
}

// run drives the non-streaming loop: one completion per round, tool calls
// dispatched sequentially in call order, until the model answers without
// tool calls or the round budget is exhausted.
func (s *runState) run(ctx context.Context) (*SendResponse, error) {
	for round := 1; round <= s.maxRounds; round++ {
		s.logger.DebugContext(ctx, "agent round started",
			"round", round,
			"message_count", len(s.messages),
		)

		resp, err := s.client.Complete(ctx, s.request())
		if err != nil {
			return nil, err
		}
		s.usage.Add(resp.Usage)

		calls := resp.ToolCalls()
		if len(calls) == 0 {
			final := *resp
			total := s.usage
			final.Usage = &total
			return &final, nil
		}

		s.appendAssistant(*resp.First())
		if err := s.dispatchCalls(ctx, round, calls, nil); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w (%d)", ErrMaxIterations, s.maxRounds)
}

// runStream drives the streaming loop as a [ResponseStream] producer.
// Events go out strictly in order: content as decoded, then per call a
// tool_call marker, the invocation, and its tool_result, then round_end.
func (s *runState) runStream(ctx context.Context, ch chan<- Event) error {
	emit := func(ev Event) error {
		select {
		case ch <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for round := 1; round <= s.maxRounds; round++ {
		s.logger.DebugContext(ctx, "agent round started",
			"round", round,
			"message_count", len(s.messages),
			"streaming", true,
		)

		calls, err := s.streamRound(ctx, round, emit)
		if err != nil {
			return err
		}
		if len(calls) == 0 {
			return nil
		}

		if err := s.dispatchCalls(ctx, round, calls, emit); err != nil {
			return err
		}
		if err := emit(Event{Type: EventRoundEnd, Round: round}); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w (%d)", ErrMaxIterations, s.maxRounds)
}

// streamRound consumes one round's chunk stream: non-empty content deltas
// become content events, tool call fragments are reassembled by index, and
// the assistant message is appended when calls were requested. Returns the
// reassembled calls, empty when the model finished without any.
func (s *runState) streamRound(ctx context.Context, round int, emit func(Event) error) ([]ToolCall, error) {
	src, err := s.client.StreamComplete(ctx, s.request())
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var acc Accumulator
	for {
		chunk, ok, err := src.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		acc.Add(chunk)
		if chunk.Text() != "" {
			if err := emit(Event{Type: EventContent, Chunk: &chunk, Round: round}); err != nil {
				return nil, err
			}
		}
	}
	s.usage.Add(acc.Usage())

	calls := acc.ToolCalls()
	if len(calls) > 0 {
		s.appendAssistant(acc.Message())
	}
	return calls, nil
}

// dispatchCalls executes a round's tool calls sequentially in call order,
// appending one tool message per call so each tool_call_id lines up with
// the assistant message that requested it. Tool failures become error
// results for the model; only context cancellation aborts the run.
func (s *runState) dispatchCalls(ctx context.Context, round int, calls []ToolCall, emit func(Event) error) error {
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if emit != nil {
			if err := emit(Event{Type: EventToolCall, Call: &call, Round: round}); err != nil {
				return err
			}
		}

		result, content, err := s.registry.Dispatch(ctx, call)
		if err != nil {
			s.logger.WarnContext(ctx, "tool dispatch failed",
				"tool", call.Function.Name,
				"call_id", call.ID,
				"error", err,
			)
		} else {
			s.logger.DebugContext(ctx, "tool dispatched",
				"tool", call.Function.Name,
				"call_id", call.ID,
			)
		}
		s.messages = append(s.messages, NewToolMessage(call.ID, content))

		if emit != nil {
			if err := emit(Event{Type: EventToolResult, Call: &call, Result: result, Round: round}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *runState) appendAssistant(msg Message) {
	if msg.Role == "" {
		msg.Role = RoleAssistant
	}
	s.messages = append(s.messages, msg)
}
