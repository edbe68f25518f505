// Copyright (c) Weftworks. All rights reserved.

package loom

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DefaultMaxToolRounds is the round budget for agent runs unless overridden
// with [WithMaxToolRounds] or [WithRunMaxRounds].
const DefaultMaxToolRounds = 10

// Agent drives the tool-execution loop over a [ChatClient]: it sends the
// conversation, executes the tool calls the model requests, feeds results
// back, and repeats until the model answers without tool calls or the round
// budget runs out.
//
// An Agent holds only immutable configuration; each Run owns its own
// conversation, usage accumulator, and tool lookup, so one Agent may serve
// unrelated concurrent calls.
//
// Create one with [NewAgent] and functional options:
//
//	agent := loom.NewAgent(client,
//	    loom.WithName("assistant"),
//	    loom.WithInstructions("You are helpful."),
//	    loom.WithTools(weatherTool),
//	)
type Agent struct {
	id           string
	name         string
	client       ChatClient
	instructions string
	tools        []Tool
	model        string
	maxRounds    int
	logger       *slog.Logger
}

// AgentOption configures an [Agent] via [NewAgent].
type AgentOption func(*Agent)

// WithName sets the agent's display name.
func WithName(name string) AgentOption {
	return func(a *Agent) { a.name = name }
}

// WithInstructions sets the system instructions prepended to conversations
// that do not already carry a system message.
func WithInstructions(instructions string) AgentOption {
	return func(a *Agent) { a.instructions = instructions }
}

// WithTools adds tools to the agent's default tool set.
func WithTools(tools ...Tool) AgentOption {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

// WithModel sets the model requested for runs. When unset, the client's
// default model applies.
func WithModel(model string) AgentOption {
	return func(a *Agent) { a.model = model }
}

// WithMaxToolRounds sets the default round budget for runs.
func WithMaxToolRounds(n int) AgentOption {
	return func(a *Agent) { a.maxRounds = n }
}

// WithLogger sets the logger for loop diagnostics. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) { a.logger = logger }
}

// NewAgent creates an Agent with the given [ChatClient] and options.
func NewAgent(client ChatClient, opts ...AgentOption) *Agent {
	a := &Agent{
		id:        uuid.New().String(),
		client:    client,
		maxRounds: DefaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// RunOption configures a single [Agent.Run] or [Agent.RunStream] call.
type RunOption func(*runConfig)

type runConfig struct {
	model     string
	tools     []Tool
	maxRounds int
}

// WithRunModel overrides the model for one call.
func WithRunModel(model string) RunOption {
	return func(c *runConfig) { c.model = model }
}

// WithRunTools replaces the agent's tool set for one call.
func WithRunTools(tools ...Tool) RunOption {
	return func(c *runConfig) { c.tools = tools }
}

// WithRunMaxRounds overrides the round budget for one call.
func WithRunMaxRounds(n int) RunOption {
	return func(c *runConfig) { c.maxRounds = n }
}

// Run executes the agent loop to completion and returns the final response.
// The returned response carries the last round's full choice list and the
// usage accumulated across all rounds.
func (a *Agent) Run(ctx context.Context, prompt Prompt, opts ...RunOption) (*SendResponse, error) {
	st, err := a.newRunState(prompt, opts)
	if err != nil {
		return nil, err
	}
	return st.run(ctx)
}

// RunStream executes the agent loop as a lazy event sequence: content
// chunks as they arrive, tool lifecycle events as calls execute, and a
// round_end marker between rounds. With no tools registered it degenerates
// to a plain content stream. Closing the stream aborts the network
// connection and prevents any further tool handler from running.
func (a *Agent) RunStream(ctx context.Context, prompt Prompt, opts ...RunOption) (*ResponseStream[Event], error) {
	st, err := a.newRunState(prompt, opts)
	if err != nil {
		return nil, err
	}
	return NewResponseStream(ctx, st.runStream), nil
}

func (a *Agent) newRunState(prompt Prompt, opts []RunOption) (*runState, error) {
	if a.client == nil {
		return nil, fmt.Errorf("%w: agent has no chat client", ErrConfiguration)
	}

	cfg := runConfig{
		model:     a.model,
		tools:     a.tools,
		maxRounds: a.maxRounds,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxRounds <= 0 {
		cfg.maxRounds = DefaultMaxToolRounds
	}

	return &runState{
		client:    a.client,
		logger:    a.logger,
		model:     cfg.model,
		registry:  NewRegistry(cfg.tools...),
		messages:  PrependInstructions(prompt.Messages(), a.instructions),
		maxRounds: cfg.maxRounds,
	}, nil
}
