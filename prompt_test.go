// Copyright (c) Weftworks. All rights reserved.

package loom_test

import (
	"testing"

	"github.com/weftworks/loom"
)

func TestPrompt_Text(t *testing.T) {
	p := loom.Text("hello there")

	msgs := p.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want 1", len(msgs))
	}
	if msgs[0].Role != loom.RoleUser {
		t.Errorf("role = %q", msgs[0].Role)
	}
	if msgs[0].Content != "hello there" {
		t.Errorf("content = %q", msgs[0].Content)
	}
}

func TestPrompt_Conversation(t *testing.T) {
	p := loom.Conversation(
		loom.NewSystemMessage("be brief"),
		loom.NewUserMessage("hi"),
	)

	msgs := p.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].Role != loom.RoleSystem || msgs[1].Role != loom.RoleUser {
		t.Errorf("roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}

	// Each resolution hands out a fresh copy.
	msgs[1].Content = "mutated"
	if p.Messages()[1].Content != "hi" {
		t.Error("mutating the returned slice should not affect the prompt")
	}
}

func TestPrompt_Zero(t *testing.T) {
	var p loom.Prompt
	if len(p.Messages()) != 0 {
		t.Errorf("zero prompt resolved to %d messages", len(p.Messages()))
	}
}

func TestPrependInstructions(t *testing.T) {
	msgs := []loom.Message{loom.NewUserMessage("hi")}

	out := loom.PrependInstructions(msgs, "be helpful")
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Role != loom.RoleSystem || out[0].Content != "be helpful" {
		t.Errorf("out[0] = %+v", out[0])
	}

	// A conversation with its own system message is left alone.
	seeded := []loom.Message{loom.NewSystemMessage("custom"), loom.NewUserMessage("hi")}
	out = loom.PrependInstructions(seeded, "be helpful")
	if len(out) != 2 || out[0].Content != "custom" {
		t.Errorf("existing system message should win: %+v", out)
	}

	// Empty instructions are a no-op.
	out = loom.PrependInstructions(msgs, "")
	if len(out) != 1 {
		t.Errorf("len = %d, want 1", len(out))
	}
}
