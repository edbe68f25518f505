// Copyright (c) Weftworks. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weftworks/loom"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Run the agent once and print its answer",
	Long: `Send a single prompt through the agent loop and print the final answer.
Tool calls run automatically; use DEBUG=1 to see them logged.

Examples:
  loomctl ask "What time is it in Tokyo?"
  loomctl ask --model gpt-4o-mini "Summarize README.md"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.Agent.Run(ctx, loom.Text(strings.Join(args, " ")))
	if err != nil {
		return err
	}

	fmt.Println(resp.Text())
	if resp.Usage != nil && resp.Usage.TotalTokens > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "[tokens: %d in, %d out]\n",
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	return nil
}
