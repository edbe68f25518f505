// Copyright (c) Weftworks. All rights reserved.

// Package mcptool exposes the tools of a Model Context Protocol server as
// [loom.Tool] values, so an agent can call into MCP servers next to local
// functions:
//
//	srv, err := mcptool.Connect(ctx, "files", "mcp-filesystem-server", nil, "/data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//
//	agent := loom.NewAgent(client, loom.WithTools(srv.Tools()...))
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/weftworks/loom"
)

// caller is the slice of the MCP client used at invocation time;
// tests substitute a fake.
type caller interface {
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Server is a connection to one MCP server subprocess. Its discovered
// tools join an agent's registry via [Server.Tools].
type Server struct {
	name   string
	client *client.Client
	tools  []loom.Tool
}

// Connect launches command as an MCP server over stdio, initializes the
// protocol, and discovers its tools. Close must be called to tear the
// subprocess down.
func Connect(ctx context.Context, name, command string, env []string, args ...string) (*Server, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("starting MCP server %s (%s): %w", name, command, err)
	}

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ClientInfo: mcp.Implementation{
				Name:    "loom",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("initializing MCP server %s: %w", name, err)
	}

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("listing tools from %s: %w", name, err)
	}

	return &Server{
		name:   name,
		client: c,
		tools:  wrapTools(c, listed.Tools),
	}, nil
}

// Name returns the connection name given to [Connect].
func (s *Server) Name() string { return s.name }

// Tools returns the server's tools in discovery order.
func (s *Server) Tools() []loom.Tool { return s.tools }

// ToolNames returns the names of all discovered tools.
func (s *Server) ToolNames() []string {
	names := make([]string, len(s.tools))
	for i, t := range s.tools {
		names[i] = t.Name()
	}
	return names
}

// Close shuts down the MCP server subprocess.
func (s *Server) Close() error { return s.client.Close() }

// wrapTools adapts discovered MCP tools into [loom.Tool] values.
func wrapTools(c caller, tools []mcp.Tool) []loom.Tool {
	out := make([]loom.Tool, 0, len(tools))
	for _, t := range tools {
		params := map[string]any{"type": t.InputSchema.Type}
		if t.InputSchema.Properties != nil {
			params["properties"] = t.InputSchema.Properties
		}
		if len(t.InputSchema.Required) > 0 {
			params["required"] = t.InputSchema.Required
		}
		schema, _ := json.Marshal(params)

		out = append(out, &serverTool{
			caller:      c,
			name:        t.Name,
			description: t.Description,
			parameters:  schema,
		})
	}
	return out
}

// serverTool adapts one MCP tool to [loom.Tool], forwarding invocations
// over the connection.
type serverTool struct {
	caller      caller
	name        string
	description string
	parameters  json.RawMessage
}

func (t *serverTool) Name() string                { return t.name }
func (t *serverTool) Description() string         { return t.description }
func (t *serverTool) Parameters() json.RawMessage { return t.parameters }

// Invoke forwards the call to the MCP server and flattens text content.
// A server-side isError result surfaces as an execution error, which the
// agent loop feeds back to the model.
func (t *serverTool) Invoke(ctx context.Context, raw json.RawMessage) (any, error) {
	var args map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, &loom.ToolError{ToolName: t.name, Message: err.Error(), Err: loom.ErrInvalidArguments}
		}
	}

	result, err := t.caller.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      t.name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling tool %s: %w", t.name, err)
	}

	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")

	if result.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return nil, errors.New(text)
	}
	return text, nil
}
