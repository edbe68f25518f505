// Copyright (c) Weftworks. All rights reserved.

package loom

// Usage holds token consumption statistics for a model response, in the wire
// shape of the chat-completions API. The agent loop accumulates one Usage per
// call by summing each round's reported usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	PromptTokensDetails     *PromptTokensDetails     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

// PromptTokensDetails breaks down prompt token consumption.
type PromptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
	AudioTokens  int `json:"audio_tokens,omitempty"`
}

// CompletionTokensDetails breaks down completion token consumption.
type CompletionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
	AudioTokens     int `json:"audio_tokens,omitempty"`
}

// Add merges other into u. Scalar counters sum; nested detail counters sum
// component-wise, allocating the detail struct on first sight. A nil other
// leaves u unchanged, so absent usage in a response is a no-op. Adding into
// a zero Usage copies other verbatim.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens

	if d := other.PromptTokensDetails; d != nil {
		if u.PromptTokensDetails == nil {
			u.PromptTokensDetails = &PromptTokensDetails{}
		}
		u.PromptTokensDetails.CachedTokens += d.CachedTokens
		u.PromptTokensDetails.AudioTokens += d.AudioTokens
	}
	if d := other.CompletionTokensDetails; d != nil {
		if u.CompletionTokensDetails == nil {
			u.CompletionTokensDetails = &CompletionTokensDetails{}
		}
		u.CompletionTokensDetails.ReasoningTokens += d.ReasoningTokens
		u.CompletionTokensDetails.AudioTokens += d.AudioTokens
	}
}
