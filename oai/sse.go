// Copyright (c) Weftworks. All rights reserved.

package oai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/weftworks/loom"
)

// decodeSSE reads server-sent events from r and sends decoded chunks to ch.
// It returns when the stream is exhausted ([DONE] or EOF), the context is
// cancelled, or a read error occurs. Malformed JSON payloads are skipped
// rather than aborting the stream.
func decodeSSE(ctx context.Context, r io.Reader, ch chan<- loom.StreamChunk) error {
	scanner := bufio.NewScanner(r)
	// Allow large SSE lines (some responses can be substantial).
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// SSE format: lines starting with "data: "
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		data = strings.TrimSpace(data)

		// Stream terminator.
		if data == "[DONE]" {
			return nil
		}

		var chunk loom.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks rather than aborting.
			continue
		}

		select {
		case ch <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: read SSE stream: %v", loom.ErrTransport, err)
	}

	return nil
}
