// Copyright (c) Weftworks. All rights reserved.

package loom

import (
	"context"
	"encoding/json"
)

// Tool defines a callable capability that can be exposed to the model.
type Tool interface {
	// Name returns the function name as exposed to the model.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Parameters returns the JSON Schema describing the function's input.
	Parameters() json.RawMessage

	// Invoke calls the function with the given JSON arguments. Argument
	// failures should wrap [ErrInvalidArguments]; any other error counts
	// as an execution failure.
	Invoke(ctx context.Context, args json.RawMessage) (any, error)
}

// ToolSpec is the wire-format tool declaration sent to the service.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec describes one declared function within a [ToolSpec].
type FunctionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolSpecFor builds the wire declaration for a tool without invoking it.
func ToolSpecFor(t Tool) ToolSpec {
	return ToolSpec{
		Type: "function",
		Function: FunctionSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}

// FunctionTool is a concrete [Tool] backed by a Go function.
type FunctionTool struct {
	name        string
	description string
	parameters  json.RawMessage
	fn          func(ctx context.Context, args json.RawMessage) (any, error)
}

// NewTool creates a [FunctionTool] from a raw JSON schema and handler.
func NewTool(name, description string, parameters json.RawMessage, fn func(ctx context.Context, args json.RawMessage) (any, error)) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewTypedTool creates a [FunctionTool] that generates its JSON Schema from
// the Args type parameter and handles argument deserialization. Arguments
// that fail to parse, miss a required property, or carry a mismatched type
// are rejected with [ErrInvalidArguments] before the handler runs.
//
// Args should be a struct with json tags. The `jsonschema` struct tag adds
// schema metadata; fields without `omitempty` are required:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name"`
//	    Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
//	}
func NewTypedTool[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error)) *FunctionTool {
	schema := GenerateSchema[Args]()

	wrapped := func(ctx context.Context, raw json.RawMessage) (any, error) {
		if err := validateArguments(schema, raw); err != nil {
			return nil, &ToolError{ToolName: name, Message: err.Error(), Err: ErrInvalidArguments}
		}
		var args Args
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, &ToolError{ToolName: name, Message: err.Error(), Err: ErrInvalidArguments}
		}
		return fn(ctx, args)
	}

	return NewTool(name, description, schema, wrapped)
}

func (t *FunctionTool) Name() string                { return t.name }
func (t *FunctionTool) Description() string         { return t.description }
func (t *FunctionTool) Parameters() json.RawMessage { return t.parameters }

// Invoke calls the tool's backing function.
func (t *FunctionTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	if t.fn == nil {
		return nil, &ToolError{
			ToolName: t.name,
			Message:  "tool has no handler",
			Err:      ErrToolFailed,
		}
	}
	return t.fn(ctx, args)
}
