// Copyright (c) Weftworks. All rights reserved.

package loom

import (
	"context"
	"log/slog"
	"time"
)

// LoggingMiddleware returns a [Middleware] that logs completion calls using
// slog. A nil logger falls back to slog.Default.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatHandler) ChatHandler {
		return func(ctx context.Context, req *Request) (*SendResponse, error) {
			start := time.Now()
			logger.DebugContext(ctx, "completion started",
				"model", req.Model,
				"message_count", len(req.Messages),
				"tool_count", len(req.Tools),
			)

			resp, err := next(ctx, req)

			duration := time.Since(start)
			if err != nil {
				logger.WarnContext(ctx, "completion failed",
					"model", req.Model,
					"duration", duration,
					"error", err,
				)
				return nil, err
			}

			attrs := []any{
				"model", req.Model,
				"duration", duration,
				"finish_reason", resp.FinishReason(),
			}
			if resp.Usage != nil {
				attrs = append(attrs,
					"prompt_tokens", resp.Usage.PromptTokens,
					"completion_tokens", resp.Usage.CompletionTokens,
				)
			}
			logger.DebugContext(ctx, "completion finished", attrs...)
			return resp, nil
		}
	}
}
