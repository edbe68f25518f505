// Copyright (c) Weftworks. All rights reserved.

package loom_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/weftworks/loom"
)

func TestAgent_BasicRun(t *testing.T) {
	callCount := 0
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			callCount++
			resp := textResponse("I'm here to help!")
			resp.Usage = &loom.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
			return resp, nil
		},
	}

	agent := loom.NewAgent(client,
		loom.WithName("test-agent"),
		loom.WithInstructions("You are helpful."),
	)

	if agent.Name() != "test-agent" {
		t.Errorf("Name = %q", agent.Name())
	}
	if agent.ID() == "" {
		t.Error("ID should not be empty")
	}

	resp, err := agent.Run(context.Background(), loom.Text("hi"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if resp.Text() != "I'm here to help!" {
		t.Errorf("Text = %q", resp.Text())
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	// Without tool calls the loop returns after a single round.
	if callCount != 1 {
		t.Errorf("completions = %d, want 1", callCount)
	}
}

func TestAgent_ToolRound(t *testing.T) {
	tool := loom.NewTypedTool("add", "Adds two numbers",
		func(ctx context.Context, args struct {
			A int `json:"a"`
			B int `json:"b"`
		}) (any, error) {
			return args.A + args.B, nil
		},
	)

	callCount := 0
	var secondRequest *loom.Request
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			callCount++
			if callCount == 1 {
				if len(req.Tools) != 1 || req.Tools[0].Function.Name != "add" {
					t.Errorf("round 1 tools = %+v", req.Tools)
				}
				return toolCallResponse(functionCall("call-1", "add", `{"a":3,"b":4}`)), nil
			}
			secondRequest = req
			return textResponse("The answer is 7."), nil
		},
	}

	agent := loom.NewAgent(client, loom.WithTools(tool))
	resp, err := agent.Run(context.Background(), loom.Text("what is 3+4?"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if callCount != 2 {
		t.Errorf("client called %d times, want 2", callCount)
	}
	if resp.Text() != "The answer is 7." {
		t.Errorf("Text = %q", resp.Text())
	}

	// The second round's conversation must carry the assistant's tool call
	// followed by a tool message answering the same call id.
	msgs := secondRequest.Messages
	if len(msgs) != 3 {
		t.Fatalf("round 2 messages = %d, want 3", len(msgs))
	}
	if msgs[1].Role != loom.RoleAssistant || len(msgs[1].ToolCalls) != 1 {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}
	if msgs[2].Role != loom.RoleTool {
		t.Errorf("msgs[2].Role = %q", msgs[2].Role)
	}
	if msgs[2].ToolCallID != "call-1" {
		t.Errorf("msgs[2].ToolCallID = %q", msgs[2].ToolCallID)
	}
	if msgs[2].Content != "7" {
		t.Errorf("msgs[2].Content = %q", msgs[2].Content)
	}
}

func TestAgent_UnknownTool(t *testing.T) {
	invoked := false
	tool := loom.NewTool("real", "The only registered tool", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			invoked = true
			return "ok", nil
		},
	)

	callCount := 0
	var toolContent string
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			callCount++
			if callCount == 1 {
				return toolCallResponse(functionCall("call-1", "imaginary", `{}`)), nil
			}
			toolContent = req.Messages[len(req.Messages)-1].Content
			return textResponse("understood"), nil
		},
	}

	agent := loom.NewAgent(client, loom.WithTools(tool))
	resp, err := agent.Run(context.Background(), loom.Text("go"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if invoked {
		t.Error("registered tool must not run for an unknown name")
	}
	if toolContent != `{"error":"Unknown tool: imaginary"}` {
		t.Errorf("tool content = %q", toolContent)
	}
	if resp.Text() != "understood" {
		t.Errorf("Text = %q", resp.Text())
	}
}

func TestAgent_InvalidToolArguments(t *testing.T) {
	tool := loom.NewTypedTool("count", "Counts things",
		func(ctx context.Context, args struct {
			N int `json:"n"`
		}) (any, error) {
			return args.N, nil
		},
	)

	callCount := 0
	var toolContent string
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			callCount++
			if callCount == 1 {
				return toolCallResponse(functionCall("call-1", "count", `{"n":"three"}`)), nil
			}
			toolContent = req.Messages[len(req.Messages)-1].Content
			return textResponse("fixed"), nil
		},
	}

	agent := loom.NewAgent(client, loom.WithTools(tool))
	if _, err := agent.Run(context.Background(), loom.Text("count")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(toolContent), &result); err != nil {
		t.Fatalf("tool content %q is not JSON: %v", toolContent, err)
	}
	if !strings.HasPrefix(result["error"], "Invalid arguments: ") {
		t.Errorf("error = %q", result["error"])
	}
}

func TestAgent_ToolFailure(t *testing.T) {
	tool := loom.NewTool("flaky", "Always fails", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return nil, errors.New("boom")
		},
	)

	callCount := 0
	var toolContent string
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			callCount++
			if callCount == 1 {
				return toolCallResponse(functionCall("call-1", "flaky", `{}`)), nil
			}
			toolContent = req.Messages[len(req.Messages)-1].Content
			return textResponse("noted"), nil
		},
	}

	agent := loom.NewAgent(client, loom.WithTools(tool))
	if _, err := agent.Run(context.Background(), loom.Text("try")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if toolContent != `{"error":"Tool execution failed: boom"}` {
		t.Errorf("tool content = %q", toolContent)
	}
}

func TestAgent_MaxRounds(t *testing.T) {
	tool := loom.NewTool("loop", "Requested forever", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return "again", nil
		},
	)

	callCount := 0
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			callCount++
			return toolCallResponse(functionCall("call-1", "loop", `{}`)), nil
		},
	}

	agent := loom.NewAgent(client, loom.WithTools(tool), loom.WithMaxToolRounds(1))
	_, err := agent.Run(context.Background(), loom.Text("go"))

	if !errors.Is(err, loom.ErrMaxIterations) {
		t.Fatalf("err = %v, want ErrMaxIterations", err)
	}
	if callCount != 1 {
		t.Errorf("client called %d times, want exactly 1", callCount)
	}
}

func TestAgent_UsageAcrossRounds(t *testing.T) {
	tool := loom.NewTool("noop", "", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return "ok", nil
		},
	)

	callCount := 0
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			callCount++
			if callCount == 1 {
				resp := toolCallResponse(functionCall("call-1", "noop", `{}`))
				resp.Usage = &loom.Usage{
					PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30,
					PromptTokensDetails: &loom.PromptTokensDetails{CachedTokens: 5},
				}
				return resp, nil
			}
			resp := textResponse("done")
			resp.Usage = &loom.Usage{
				PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15,
				CompletionTokensDetails: &loom.CompletionTokensDetails{ReasoningTokens: 3},
			}
			return resp, nil
		},
	}

	agent := loom.NewAgent(client, loom.WithTools(tool))
	resp, err := agent.Run(context.Background(), loom.Text("go"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	u := resp.Usage
	if u == nil {
		t.Fatal("usage missing")
	}
	if u.PromptTokens != 30 || u.CompletionTokens != 15 || u.TotalTokens != 45 {
		t.Errorf("usage = %+v", u)
	}
	if u.PromptTokensDetails == nil || u.PromptTokensDetails.CachedTokens != 5 {
		t.Errorf("prompt details = %+v", u.PromptTokensDetails)
	}
	if u.CompletionTokensDetails == nil || u.CompletionTokensDetails.ReasoningTokens != 3 {
		t.Errorf("completion details = %+v", u.CompletionTokensDetails)
	}
}

func TestAgent_InstructionsPrepended(t *testing.T) {
	var firstRequest *loom.Request
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			if firstRequest == nil {
				firstRequest = req
			}
			return textResponse("ok"), nil
		},
	}

	agent := loom.NewAgent(client, loom.WithInstructions("Be terse."))
	if _, err := agent.Run(context.Background(), loom.Text("hi")); err != nil {
		t.Fatal(err)
	}

	msgs := firstRequest.Messages
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != loom.RoleSystem || msgs[0].Content != "Be terse." {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}

	// A caller-supplied system message takes precedence.
	firstRequest = nil
	_, err := agent.Run(context.Background(), loom.Conversation(
		loom.NewSystemMessage("Override."),
		loom.NewUserMessage("hi"),
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(firstRequest.Messages) != 2 || firstRequest.Messages[0].Content != "Override." {
		t.Errorf("messages = %+v", firstRequest.Messages)
	}
}

func TestAgent_RunOptions(t *testing.T) {
	var lastRequest *loom.Request
	client := &mockClient{
		completeFn: func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
			lastRequest = req
			return textResponse("ok"), nil
		},
	}

	defaultTool := loom.NewTool("default-tool", "", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil })
	runTool := loom.NewTool("run-tool", "", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil })

	agent := loom.NewAgent(client,
		loom.WithModel("gpt-4o"),
		loom.WithTools(defaultTool),
	)

	_, err := agent.Run(context.Background(), loom.Text("hi"),
		loom.WithRunModel("gpt-4o-mini"),
		loom.WithRunTools(runTool),
	)
	if err != nil {
		t.Fatal(err)
	}

	if lastRequest.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", lastRequest.Model)
	}
	if len(lastRequest.Tools) != 1 || lastRequest.Tools[0].Function.Name != "run-tool" {
		t.Errorf("tools = %+v, want only run-tool", lastRequest.Tools)
	}
}

func TestAgent_NilClient(t *testing.T) {
	agent := loom.NewAgent(nil)

	_, err := agent.Run(context.Background(), loom.Text("hi"))
	if !errors.Is(err, loom.ErrConfiguration) {
		t.Errorf("Run err = %v, want ErrConfiguration", err)
	}

	_, err = agent.RunStream(context.Background(), loom.Text("hi"))
	if !errors.Is(err, loom.ErrConfiguration) {
		t.Errorf("RunStream err = %v, want ErrConfiguration", err)
	}
}

// mockClient implements ChatClient for testing.
type mockClient struct {
	completeFn func(ctx context.Context, req *loom.Request) (*loom.SendResponse, error)
	streamFn   func(ctx context.Context, req *loom.Request) (*loom.ResponseStream[loom.StreamChunk], error)
}

func (m *mockClient) Complete(ctx context.Context, req *loom.Request) (*loom.SendResponse, error) {
	return m.completeFn(ctx, req)
}

func (m *mockClient) StreamComplete(ctx context.Context, req *loom.Request) (*loom.ResponseStream[loom.StreamChunk], error) {
	if m.streamFn != nil {
		return m.streamFn(ctx, req)
	}
	// Derive a chunk stream from the non-streaming response.
	return loom.NewResponseStream(ctx, func(ctx context.Context, ch chan<- loom.StreamChunk) error {
		resp, err := m.completeFn(ctx, req)
		if err != nil {
			return err
		}
		for _, chunk := range chunksFromResponse(resp) {
			select {
			case ch <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}), nil
}

// chunksFromResponse replays a complete response as streaming chunks.
func chunksFromResponse(resp *loom.SendResponse) []loom.StreamChunk {
	msg := resp.First()
	if msg == nil {
		return nil
	}

	var chunks []loom.StreamChunk
	if msg.Content != "" {
		content := msg.Content
		chunks = append(chunks, loom.StreamChunk{Choices: []loom.ChunkChoice{{
			Delta: loom.Delta{Role: msg.Role, Content: &content},
		}}})
	}
	for i, call := range msg.ToolCalls {
		chunks = append(chunks, toolChunk(loom.ToolCallDelta{
			Index: i,
			ID:    call.ID,
			Type:  call.Type,
			Function: loom.FunctionCallDelta{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		}))
	}
	chunks = append(chunks, finishChunk(resp.FinishReason()))
	return chunks
}

func textResponse(text string) *loom.SendResponse {
	return &loom.SendResponse{
		ID: "resp-1",
		Choices: []loom.Choice{{
			Message:      loom.NewAssistantMessage(text),
			FinishReason: loom.FinishReasonStop,
		}},
	}
}

func toolCallResponse(calls ...loom.ToolCall) *loom.SendResponse {
	return &loom.SendResponse{
		ID: "resp-1",
		Choices: []loom.Choice{{
			Message: loom.Message{
				Role:      loom.RoleAssistant,
				ToolCalls: calls,
			},
			FinishReason: loom.FinishReasonToolCalls,
		}},
	}
}
