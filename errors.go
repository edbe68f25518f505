// Copyright (c) Weftworks. All rights reserved.

package loom

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrClient is the base error for client-side failures.
	ErrClient = errors.New("loom client error")

	// ErrConfiguration indicates an invalid or incomplete client configuration.
	ErrConfiguration = fmt.Errorf("%w: configuration", ErrClient)

	// ErrMissingAPIKey is returned when no API key is supplied explicitly or
	// through the environment. Raised at construction time, before any
	// network activity.
	ErrMissingAPIKey = fmt.Errorf("%w: missing API key", ErrConfiguration)

	// ErrTransport is the base error for HTTP transport failures.
	// Non-2xx responses wrap it; see [TransportError] for details.
	ErrTransport = errors.New("transport error")

	// ErrAuth indicates the service rejected the request's credentials.
	ErrAuth = fmt.Errorf("%w: authentication", ErrTransport)

	// ErrInvalidRequest indicates the service rejected the request body.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrTransport)

	// ErrTool is the base error for tool dispatch failures. Tool errors are
	// caught inside the agent loop and fed back to the model as structured
	// error results; they never abort the surrounding call.
	ErrTool = errors.New("tool error")

	// ErrUnknownTool indicates the model requested a tool name absent from
	// the registry.
	ErrUnknownTool = fmt.Errorf("%w: unknown tool", ErrTool)

	// ErrInvalidArguments indicates tool call arguments that could not be
	// parsed or did not validate against the tool's schema.
	ErrInvalidArguments = fmt.Errorf("%w: invalid arguments", ErrTool)

	// ErrToolFailed indicates the tool's handler itself returned an error.
	ErrToolFailed = fmt.Errorf("%w: execution", ErrTool)

	// ErrMaxIterations is returned when the agent loop exhausts its round
	// budget without the model producing a tool-call-free response. Fatal to
	// the call; never retried internally.
	ErrMaxIterations = errors.New("max iterations reached")
)

// TransportError provides rich context for non-2xx service responses.
// Use errors.As to extract it from a wrapped error chain. The Error string
// always contains the status code and the response body text.
type TransportError struct {
	StatusCode int
	Body       string
	Code       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Body)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ToolError provides context for tool dispatch failures. Err carries the
// classifying sentinel (ErrUnknownTool, ErrInvalidArguments, ErrToolFailed).
type ToolError struct {
	ToolName string
	Message  string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %s", e.ToolName, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }
