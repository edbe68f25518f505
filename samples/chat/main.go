// Copyright (c) Weftworks. All rights reserved.

// Command chat demonstrates a multi-turn conversational agent with tool use.
//
// It works with any OpenAI-compatible chat-completions endpoint.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	export OPENAI_BASE_URL=https://api.openai.com/v1   # optional
//	go run .
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/weftworks/loom"
	"github.com/weftworks/loom/oai"
)

func main() {
	// Load .env file if present (ignored if missing).
	_ = godotenv.Load()

	// Enable debug logging if requested
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	client, err := oai.New(
		oai.WithModel("gpt-4o"),
		oai.WithMiddleware(loom.LoggingMiddleware(slog.Default())),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Define tools.
	weatherTool := loom.NewTypedTool("get_weather",
		"Get the current weather for a location.",
		func(ctx context.Context, args struct {
			Location string `json:"location" jsonschema:"description=City name or location"`
			Unit     string `json:"unit,omitempty" jsonschema:"description=Temperature unit,enum=celsius,enum=fahrenheit"`
		}) (any, error) {
			// Simulated weather API
			unit := args.Unit
			if unit == "" {
				unit = "fahrenheit"
			}
			temp := 72
			if unit == "celsius" {
				temp = 22
			}
			return map[string]any{
				"location":    args.Location,
				"temperature": temp,
				"unit":        unit,
				"condition":   "sunny",
			}, nil
		},
	)

	timeTool := loom.NewTool("get_time",
		"Get the current time.",
		json.RawMessage(`{"type":"object","properties":{}}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return "2025-01-15T10:30:00Z", nil
		},
	)

	// Create the agent.
	agent := loom.NewAgent(client,
		loom.WithName("assistant"),
		loom.WithInstructions("You are a helpful assistant. When asked about the weather, use the get_weather tool. When asked about the time, use the get_time tool. Keep responses concise."),
		loom.WithTools(weatherTool, timeTool),
	)

	// Keep the conversation across turns.
	history := loom.NewHistory()

	fmt.Println("Chat with the assistant (type 'quit' to exit, 'stream' prefix for streaming)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		ctx := context.Background()

		if strings.HasPrefix(input, "stream ") {
			// Streaming mode
			input = strings.TrimPrefix(input, "stream ")
			turn := append(history.Messages(), loom.NewUserMessage(input))
			stream, err := agent.RunStream(ctx, loom.Conversation(turn...))
			if err != nil {
				log.Printf("Error: %v", err)
				continue
			}

			fmt.Print("Assistant: ")
			var reply strings.Builder
			for {
				ev, ok, err := stream.Next(ctx)
				if err != nil {
					log.Printf("\nStream error: %v", err)
					break
				}
				if !ok {
					break
				}
				switch ev.Type {
				case loom.EventContent:
					fmt.Print(ev.Text())
					reply.WriteString(ev.Text())
				case loom.EventToolCall:
					fmt.Printf("\n[calling %s]\n", ev.Call.Function.Name)
				}
			}
			fmt.Println()
			stream.Close()
			history.Add(loom.NewUserMessage(input), loom.NewAssistantMessage(reply.String()))
		} else {
			// Non-streaming mode
			turn := append(history.Messages(), loom.NewUserMessage(input))
			resp, err := agent.Run(ctx, loom.Conversation(turn...))
			if err != nil {
				log.Printf("Error: %v", err)
				continue
			}

			fmt.Printf("Assistant: %s\n", resp.Text())
			if resp.Usage != nil && resp.Usage.TotalTokens > 0 {
				fmt.Printf("  [tokens: %d in, %d out]\n",
					resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			}
			history.Add(loom.NewUserMessage(input), loom.NewAssistantMessage(resp.Text()))
		}
		fmt.Println()
	}
}
