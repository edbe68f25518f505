// Copyright (c) Weftworks. All rights reserved.

package loom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Registry is a name-keyed lookup over an ordered tool list, owned by one
// call. Duplicate names are not defended against: the last registered tool
// wins the lookup.
type Registry struct {
	tools []Tool
	index map[string]Tool
}

// NewRegistry builds a registry from the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{index: make(map[string]Tool, len(tools))}
	r.Add(tools...)
	return r
}

// Add registers additional tools, preserving registration order.
func (r *Registry) Add(tools ...Tool) {
	for _, t := range tools {
		r.tools = append(r.tools, t)
		r.index[t.Name()] = t
	}
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// Specs returns the wire declarations for all registered tools in
// registration order, without invoking any handler. Nil when empty, so an
// empty registry adds no tools field to the request.
func (r *Registry) Specs() []ToolSpec {
	if len(r.tools) == 0 {
		return nil
	}
	specs := make([]ToolSpec, len(r.tools))
	for i, t := range r.tools {
		specs[i] = ToolSpecFor(t)
	}
	return specs
}

// Execute runs a single tool call: look up the name, parse the raw argument
// text, and invoke the handler. Failures come back as a [ToolError] wrapping
// the classifying sentinel (ErrUnknownTool, ErrInvalidArguments,
// ErrToolFailed); they are meant to be caught by the agent loop, not
// surfaced to the caller.
func (r *Registry) Execute(ctx context.Context, call ToolCall) (any, error) {
	name := call.Function.Name
	tool, ok := r.Lookup(name)
	if !ok {
		return nil, &ToolError{ToolName: name, Message: "not registered", Err: ErrUnknownTool}
	}

	args := call.Function.Arguments
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	if !json.Valid([]byte(args)) {
		return nil, &ToolError{ToolName: name, Message: "arguments are not valid JSON", Err: ErrInvalidArguments}
	}

	result, err := tool.Invoke(ctx, json.RawMessage(args))
	if err != nil {
		if errors.Is(err, ErrTool) {
			return nil, err
		}
		return nil, &ToolError{ToolName: name, Message: err.Error(), Err: ErrToolFailed}
	}
	return result, nil
}

// Dispatch executes one call and shapes the outcome for the conversation.
// Tool failures never propagate as call failures: they become structured
// {"error": ...} results the model can react to. The returned content is
// the tool message body; err reports what went wrong for logging.
func (r *Registry) Dispatch(ctx context.Context, call ToolCall) (result any, content string, err error) {
	result, err = r.Execute(ctx, call)
	if err != nil {
		result = map[string]any{"error": dispatchErrorMessage(call, err)}
	}
	return result, marshalResult(result), err
}

func dispatchErrorMessage(call ToolCall, err error) string {
	msg := err.Error()
	var te *ToolError
	if errors.As(err, &te) && te.Message != "" {
		msg = te.Message
	}
	switch {
	case errors.Is(err, ErrUnknownTool):
		return "Unknown tool: " + call.Function.Name
	case errors.Is(err, ErrInvalidArguments):
		return "Invalid arguments: " + msg
	default:
		return "Tool execution failed: " + msg
	}
}

// marshalResult converts a tool result to tool message content: strings
// pass through unchanged, everything else serializes to JSON.
func marshalResult(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(b)
}
