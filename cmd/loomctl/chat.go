// Copyright (c) Weftworks. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/weftworks/loom"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session with an agent",
	Long: `Start an interactive conversation with a loom agent.
The agent can use tools to help answer your questions.

Examples:
  loomctl chat
  loomctl chat --provider local
  loomctl chat --profile reviewer --model gpt-4o`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Printf("loomctl - Interactive Agent Chat\n")
	if rt.Profile != nil {
		fmt.Printf("Profile: %s\n", rt.Profile.Name)
	}
	fmt.Printf("Provider: %s | Model: %s\n", rt.ProviderName, rt.Model)
	fmt.Printf("Tools: %s\n", strings.Join(rt.ToolNames, ", "))
	fmt.Printf("Type /help for commands, /quit to exit\n\n")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36myou>\033[0m ",
		HistoryFile:     "/tmp/loomctl_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	history := loom.NewHistory()

	// Per-request cancellation: Ctrl+C cancels the active request, not the
	// whole app. Cancelling mid-stream also stops any pending tool calls.
	var reqCancel context.CancelFunc
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range sigCh {
			if reqCancel != nil {
				reqCancel()
			}
		}
	}()

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleCommand(input, rt, history) {
				continue
			}
		}

		turn := append(history.Messages(), loom.NewUserMessage(input))

		reqCtx, cancel := context.WithCancel(context.Background())
		reqCancel = cancel

		fmt.Printf("\n\033[32mloom>\033[0m ")
		reply, err := streamTurn(reqCtx, rt, turn)
		wasInterrupted := reqCtx.Err() != nil
		cancel()
		reqCancel = nil

		if err != nil {
			if wasInterrupted {
				fmt.Println("\n(interrupted)")
				continue
			}
			fmt.Printf("\n\033[31merror: %s\033[0m\n\n", err)
			continue
		}

		history.Add(loom.NewUserMessage(input), loom.NewAssistantMessage(reply))
		fmt.Printf("\n\n")
	}
}

// streamTurn runs one agent turn and renders its events, returning the
// assistant's full reply text.
func streamTurn(ctx context.Context, rt *runtime, turn []loom.Message) (string, error) {
	stream, err := rt.Agent.RunStream(ctx, loom.Conversation(turn...))
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		ev, ok, err := stream.Next(ctx)
		if err != nil {
			return reply.String(), err
		}
		if !ok {
			return reply.String(), nil
		}

		switch ev.Type {
		case loom.EventContent:
			fmt.Print(ev.Text())
			reply.WriteString(ev.Text())
		case loom.EventToolCall:
			fmt.Printf("\n  \033[33m⚡ %s\033[0m\n", formatToolCall(ev.Call))
		case loom.EventToolResult:
			printResultPreview(ev.Result)
		}
	}
}

// formatToolCall renders a call as name(args) with the arguments compacted.
func formatToolCall(call *loom.ToolCall) string {
	if call == nil {
		return ""
	}
	args := strings.TrimSpace(call.Function.Arguments)
	if args == "" || args == "{}" {
		return call.Function.Name + "()"
	}
	if len(args) > 120 {
		args = args[:120] + "…"
	}
	return fmt.Sprintf("%s(%s)", call.Function.Name, args)
}

// printResultPreview shows the first few lines of a tool result in gray.
func printResultPreview(result any) {
	text, ok := result.(string)
	if !ok {
		data, err := json.Marshal(result)
		if err != nil {
			return
		}
		text = string(data)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	preview := lines
	if len(preview) > 8 {
		preview = preview[:8]
	}
	for _, line := range preview {
		fmt.Printf("  \033[90m│ %s\033[0m\n", line)
	}
	if len(lines) > 8 {
		fmt.Printf("  \033[90m│ ... (%d more lines)\033[0m\n", len(lines)-8)
	}
	fmt.Println()
}

func handleCommand(input string, rt *runtime, history *loom.History) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit", "/q":
		fmt.Println("Goodbye!")
		rt.Close()
		os.Exit(0)
	case "/reset":
		history.Clear(false)
		fmt.Println("Conversation reset.")
		fmt.Println()
	case "/history":
		data, err := json.MarshalIndent(history.Messages(), "", "  ")
		if err == nil {
			fmt.Println(string(data))
		}
		fmt.Println()
	case "/tools":
		for _, name := range rt.ToolNames {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println()
	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /help     - Show this help")
		fmt.Println("  /reset    - Clear conversation history")
		fmt.Println("  /history  - Show raw conversation history (JSON)")
		fmt.Println("  /tools    - List available tools")
		fmt.Println("  /quit     - Exit")
		fmt.Println()
	default:
		fmt.Printf("Unknown command: %s (try /help)\n\n", input)
	}
	return true
}
