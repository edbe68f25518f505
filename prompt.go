// Copyright (c) Weftworks. All rights reserved.

package loom

// Prompt is the input to an agent run: either a plain text string or a fully
// caller-constructed conversation. Construct one with [Text] or
// [Conversation]; the zero value is an empty conversation. The variant is
// resolved once when the run starts, so the loop itself only ever sees
// []Message.
type Prompt struct {
	text     string
	messages []Message
	isText   bool
}

// Text creates a [Prompt] from a single user utterance.
func Text(s string) Prompt {
	return Prompt{text: s, isText: true}
}

// Conversation creates a [Prompt] from an existing ordered message list.
// The messages are used as the seed conversation verbatim.
func Conversation(messages ...Message) Prompt {
	return Prompt{messages: messages}
}

// Messages resolves the prompt into the seed conversation. The returned
// slice is a fresh copy owned by the caller.
func (p Prompt) Messages() []Message {
	if p.isText {
		return []Message{NewUserMessage(p.text)}
	}
	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}
