// Copyright (c) Weftworks. All rights reserved.

package loom

// History is an in-process append-only conversation log for callers running
// multi-turn conversations over the single-call agent loop: append each
// turn's messages, seed the next run with a snapshot. It lives only for the
// process; nothing is persisted.
//
// History is not safe for concurrent use; each conversation owns its own.
type History struct {
	messages []Message
}

// NewHistory creates a History seeded with the given messages.
func NewHistory(initial ...Message) *History {
	h := &History{}
	h.Add(initial...)
	return h
}

// Add appends messages in order.
func (h *History) Add(msgs ...Message) {
	h.messages = append(h.messages, msgs...)
}

// Messages returns a snapshot of the log, isolated from later mutation.
func (h *History) Messages() []Message {
	cp := make([]Message, len(h.messages))
	copy(cp, h.messages)
	return cp
}

// Len returns the number of stored messages.
func (h *History) Len() int { return len(h.messages) }

// Clear empties the log. When keepSystem is true, leading system messages
// survive so standing instructions carry over.
func (h *History) Clear(keepSystem bool) {
	if !keepSystem {
		h.messages = nil
		return
	}
	var kept []Message
	for _, m := range h.messages {
		if m.Role != RoleSystem {
			break
		}
		kept = append(kept, m)
	}
	h.messages = kept
}
