// Copyright (c) Weftworks. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/weftworks/loom"
	"github.com/weftworks/loom/mcptool"
	"github.com/weftworks/loom/oai"
)

// runtime bundles everything a subcommand needs: the resolved config, the
// assembled agent, and the MCP servers that must be shut down on exit.
type runtime struct {
	Cfg          *Config
	ProviderName string
	Model        string
	Profile      *Profile
	Agent        *loom.Agent
	ToolNames    []string

	servers []*mcptool.Server
}

// newRuntime resolves flags, config, and profile into a ready-to-run agent.
// Precedence for provider and model is flag, then profile, then config.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var profile *Profile
	if profileFlag != "" {
		profilePath := filepath.Join(cfg.Agent.ProfilesDir, profileFlag+".yaml")
		profile, err = LoadProfile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
	}

	providerName := providerFlag
	if providerName == "" {
		if profile != nil && profile.Provider != "" {
			providerName = profile.Provider
		} else {
			providerName = cfg.DefaultProvider
		}
	}

	provider, err := cfg.Provider(providerName)
	if err != nil {
		return nil, err
	}

	model := modelFlag
	if model == "" {
		if profile != nil && profile.Model != "" {
			model = profile.Model
		} else {
			model = provider.Models["default"]
		}
	}

	maxRounds := cfg.Agent.MaxRounds
	if profile != nil && profile.MaxRounds > 0 {
		maxRounds = profile.MaxRounds
	}

	var clientOpts []oai.Option
	if provider.APIKey != "" {
		clientOpts = append(clientOpts, oai.WithAPIKey(provider.APIKey))
	}
	if provider.BaseURL != "" {
		clientOpts = append(clientOpts, oai.WithBaseURL(provider.BaseURL))
	}
	if model != "" {
		clientOpts = append(clientOpts, oai.WithModel(model))
	}
	clientOpts = append(clientOpts, oai.WithMiddleware(loom.LoggingMiddleware(slog.Default())))

	client, err := oai.New(clientOpts...)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		Cfg:          cfg,
		ProviderName: providerName,
		Model:        model,
		Profile:      profile,
	}

	tools := builtinTools()
	for name, tc := range cfg.Tools {
		srv, err := mcptool.Connect(ctx, name, tc.Command, tc.Env, tc.Args...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: tool server %s: %v\n", name, err)
			continue
		}
		rt.servers = append(rt.servers, srv)
		tools = append(tools, srv.Tools()...)
	}

	if profile != nil && len(profile.Tools) > 0 {
		tools = filterTools(tools, profile.Tools)
	}
	for _, t := range tools {
		rt.ToolNames = append(rt.ToolNames, t.Name())
	}

	agentOpts := []loom.AgentOption{
		loom.WithName("loomctl"),
		loom.WithTools(tools...),
		loom.WithMaxToolRounds(maxRounds),
	}
	if profile != nil && profile.SystemPrompt != "" {
		agentOpts = append(agentOpts, loom.WithInstructions(profile.SystemPrompt))
	}

	rt.Agent = loom.NewAgent(client, agentOpts...)
	return rt, nil
}

// Close shuts down any MCP servers the runtime started.
func (rt *runtime) Close() {
	for _, srv := range rt.servers {
		if err := srv.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing tool server %s: %v\n", srv.Name(), err)
		}
	}
}

// filterTools keeps only the named tools, preserving registration order.
func filterTools(tools []loom.Tool, names []string) []loom.Tool {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	var kept []loom.Tool
	for _, t := range tools {
		if allowed[t.Name()] {
			kept = append(kept, t)
		}
	}
	return kept
}

// builtinTools returns the tools available without any MCP server.
func builtinTools() []loom.Tool {
	clock := loom.NewTypedTool("current_time",
		"Get the current date and time.",
		func(ctx context.Context, args struct {
			Timezone string `json:"timezone,omitempty" jsonschema:"description=IANA timezone name such as Europe/Amsterdam; defaults to local time"`
		}) (any, error) {
			loc := time.Local
			if args.Timezone != "" {
				var err error
				loc, err = time.LoadLocation(args.Timezone)
				if err != nil {
					return nil, fmt.Errorf("unknown timezone %q", args.Timezone)
				}
			}
			return time.Now().In(loc).Format(time.RFC1123), nil
		},
	)

	readFile := loom.NewTypedTool("read_file",
		"Read a UTF-8 text file from the local filesystem.",
		func(ctx context.Context, args struct {
			Path     string `json:"path" jsonschema:"description=Path to the file"`
			MaxBytes int    `json:"max_bytes,omitempty" jsonschema:"description=Truncate the file after this many bytes (default 65536)"`
		}) (any, error) {
			limit := args.MaxBytes
			if limit <= 0 {
				limit = 64 * 1024
			}
			data, err := os.ReadFile(args.Path)
			if err != nil {
				return nil, err
			}
			truncated := false
			if len(data) > limit {
				data = data[:limit]
				truncated = true
			}
			return map[string]any{
				"path":      args.Path,
				"content":   string(data),
				"truncated": truncated,
			}, nil
		},
	)

	return []loom.Tool{clock, readFile}
}
