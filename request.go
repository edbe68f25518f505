// Copyright (c) Weftworks. All rights reserved.

package loom

import (
	"encoding/json"
	"strings"
)

// ToolChoice controls how the model selects tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ToolChoiceFunction returns a ToolChoice that forces the model to call
// the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice("function:" + name)
}

// MarshalJSON writes the wire representation: plain policy strings pass
// through, forced-function choices expand to the object form.
func (tc ToolChoice) MarshalJSON() ([]byte, error) {
	if name, ok := strings.CutPrefix(string(tc), "function:"); ok {
		return json.Marshal(map[string]any{
			"type":     "function",
			"function": map[string]string{"name": name},
		})
	}
	return json.Marshal(string(tc))
}

// Request is a fully caller-constructed chat completion request: the
// manual/advanced path with raw wire tool declarations and no automatic
// tool dispatch. Pointer fields use nil for "unset" (service default).
type Request struct {
	Model            string     `json:"model"`
	Messages         []Message  `json:"messages"`
	Tools            []ToolSpec `json:"tools,omitempty"`
	ToolChoice       ToolChoice `json:"tool_choice,omitempty"`
	Temperature      *float64   `json:"temperature,omitempty"`
	TopP             *float64   `json:"top_p,omitempty"`
	MaxTokens        *int       `json:"max_tokens,omitempty"`
	Stop             []string   `json:"stop,omitempty"`
	Seed             *int       `json:"seed,omitempty"`
	FrequencyPenalty *float64   `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64   `json:"presence_penalty,omitempty"`
	User             string     `json:"user,omitempty"`
}
