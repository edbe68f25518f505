// Copyright (c) Weftworks. All rights reserved.

// Command loomctl is a terminal front end for loom agents.
//
// It reads provider settings from loom.yaml (or environment variables),
// wires up builtin and MCP tools, and exposes three subcommands: ask for
// one-shot prompts, chat for an interactive session, and serve for an
// HTTP endpoint that relays agent events over SSE.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	providerFlag string
	modelFlag    string
	profileFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "loomctl",
	Short: "loomctl - Terminal front end for loom agents",
	Long: `loomctl runs loom agents against any OpenAI-compatible chat endpoint.

Providers are configured in loom.yaml (looked up in . and $HOME/.loom) or
via OPENAI_API_KEY and OPENAI_BASE_URL. Agents can load MCP tool servers
declared in the config and YAML profiles that set a system prompt, model,
and tool filter.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "Provider from loom.yaml (overrides default_provider)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Model to use (overrides config and profile)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Agent profile to use (e.g. default, reviewer)")
}

func main() {
	// Load .env file if present (ignored if missing).
	_ = godotenv.Load()

	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
