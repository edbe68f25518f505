// Copyright (c) Weftworks. All rights reserved.

// Package loom is a client library for OpenAI-compatible chat-completions
// APIs with an agentic tool-execution loop: the model's tool calls are
// dispatched to locally registered handlers and the results fed back until
// the model produces a final answer.
//
// # Quick Start
//
// Create a client (from the oai subpackage) and build an Agent:
//
//	client, err := oai.New(oai.WithModel("gpt-4o"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	agent := loom.NewAgent(client,
//	    loom.WithInstructions("You are helpful."),
//	    loom.WithTools(weatherTool),
//	)
//
//	resp, err := agent.Run(ctx, loom.Text("What's the weather in Oslo?"))
//	fmt.Println(resp.Text())
//
// # Architecture
//
//   - [Agent]: drives the tool loop over a [ChatClient]; [Agent.Run] returns
//     the final response, [Agent.RunStream] yields [Event] values as the
//     conversation unfolds.
//   - [ChatClient]: the transport boundary; [Request] is its manual/advanced
//     surface with raw tool declarations and no automatic dispatch.
//   - [Tool] and [Registry]: locally registered capabilities the model may
//     call; argument parsing and validation failures are fed back to the
//     model as structured error results instead of failing the call.
//   - [ResponseStream]: generic pull-based iterator; production is paced by
//     consumer demand and Close aborts the underlying network stream.
//
// # Tools
//
// Use [NewTypedTool] for type-safe tools with automatic JSON Schema
// generation:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name"`
//	    Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
//	}
//
//	tool := loom.NewTypedTool("get_weather", "Get current weather",
//	    func(ctx context.Context, args WeatherArgs) (any, error) {
//	        return fetchWeather(args.Location, args.Unit)
//	    },
//	)
//
// # Streaming
//
// RunStream interleaves content with tool lifecycle events:
//
//	stream, _ := agent.RunStream(ctx, loom.Text("Plan my trip"))
//	defer stream.Close()
//	for {
//	    ev, ok, err := stream.Next(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    switch ev.Type {
//	    case loom.EventContent:
//	        fmt.Print(ev.Text())
//	    case loom.EventToolCall:
//	        fmt.Printf("\n[%s...]\n", ev.Call.Function.Name)
//	    }
//	}
package loom
