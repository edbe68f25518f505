// Copyright (c) Weftworks. All rights reserved.

// Command mcptools demonstrates backing an agent with tools from an MCP
// server. It launches the reference filesystem server over stdio and lets
// the model browse the current directory through it.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	go run . "What Go files are in this directory?"
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/weftworks/loom"
	"github.com/weftworks/loom/mcptool"
	"github.com/weftworks/loom/oai"
)

func main() {
	_ = godotenv.Load()

	prompt := "List the files here and describe what this project is."
	if len(os.Args) > 1 {
		prompt = strings.Join(os.Args[1:], " ")
	}

	client, err := oai.New(oai.WithModel("gpt-4o"))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	// Launch the MCP filesystem server as a child process. Requires npx.
	srv, err := mcptool.Connect(ctx, "filesystem",
		"npx", nil, "-y", "@modelcontextprotocol/server-filesystem", cwd)
	if err != nil {
		log.Fatalf("connecting to MCP server: %v", err)
	}
	defer srv.Close()

	fmt.Printf("Connected to %s with tools: %s\n\n",
		srv.Name(), strings.Join(srv.ToolNames(), ", "))

	agent := loom.NewAgent(client,
		loom.WithName("file-explorer"),
		loom.WithInstructions("You help users explore the local filesystem. Use the available tools to answer; keep responses concise."),
		loom.WithTools(srv.Tools()...),
	)

	stream, err := agent.RunStream(ctx, loom.Text(prompt))
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()

	for {
		ev, ok, err := stream.Next(ctx)
		if err != nil {
			log.Fatalf("stream error: %v", err)
		}
		if !ok {
			break
		}
		switch ev.Type {
		case loom.EventContent:
			fmt.Print(ev.Text())
		case loom.EventToolCall:
			fmt.Printf("\n[round %d: calling %s]\n", ev.Round, ev.Call.Function.Name)
		}
	}
	fmt.Println()
}
