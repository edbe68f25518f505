// Copyright (c) Weftworks. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weftworks/loom"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the agent over HTTP with SSE streaming",
	Long: `Start an HTTP server that runs the agent loop for each request and
relays its events as server-sent events.

POST /v1/runs accepts {"prompt": "..."} or {"messages": [...]} and streams
content, tool_call, tool_result, and round_end events, closing with a done
event.

Examples:
  loomctl serve
  loomctl serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	port := rt.Cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	as := &agentServer{rt: rt, logger: slog.Default()}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Get("/healthz", as.handleHealth)
	r.Post("/v1/runs", as.handleRun)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			as.logger.Warn("server shutdown", "error", err)
		}
	}()

	as.logger.Info("loomctl server starting",
		"addr", fmt.Sprintf("http://localhost:%d", port),
		"provider", rt.ProviderName,
		"model", rt.Model,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type agentServer struct {
	rt     *runtime
	logger *slog.Logger
}

// runRequest is the body of POST /v1/runs. Either Prompt or Messages must
// be set; Messages takes precedence.
type runRequest struct {
	Prompt   string         `json:"prompt,omitempty"`
	Messages []loom.Message `json:"messages,omitempty"`
	Model    string         `json:"model,omitempty"`
}

// wireEvent is the SSE data payload for one agent event.
type wireEvent struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Tool   string `json:"tool,omitempty"`
	CallID string `json:"call_id,omitempty"`
	Args   string `json:"args,omitempty"`
	Result any    `json:"result,omitempty"`
	Round  int    `json:"round,omitempty"`
}

// doneEvent closes a run stream.
type doneEvent struct {
	RunID  string `json:"run_id"`
	Rounds int    `json:"rounds,omitempty"`
}

func (s *agentServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

func (s *agentServer) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var prompt loom.Prompt
	switch {
	case len(req.Messages) > 0:
		prompt = loom.Conversation(req.Messages...)
	case req.Prompt != "":
		prompt = loom.Text(req.Prompt)
	default:
		http.Error(w, "prompt or messages required", http.StatusBadRequest)
		return
	}

	var runOpts []loom.RunOption
	if req.Model != "" {
		runOpts = append(runOpts, loom.WithRunModel(req.Model))
	}

	// Start the stream before committing to SSE so setup failures can still
	// return a proper status code.
	stream, err := s.rt.Agent.RunStream(ctx, prompt, runOpts...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer stream.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	runID := uuid.New().String()
	s.logger.InfoContext(ctx, "run started",
		"run_id", runID,
		"request_id", middleware.GetReqID(ctx),
		"message_count", len(req.Messages),
	)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Run-ID", runID)
	w.WriteHeader(http.StatusOK)

	var lastRound int
	for {
		ev, ok, err := stream.Next(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "run failed", "run_id", runID, "error", err)
			writeSSE(w, flusher, "error", map[string]string{"error": err.Error()})
			return
		}
		if !ok {
			break
		}
		if ev.Round > 0 {
			lastRound = ev.Round
		}
		writeSSE(w, flusher, string(ev.Type), wireEventFrom(ev))
	}

	s.logger.InfoContext(ctx, "run finished", "run_id", runID, "rounds", lastRound)
	writeSSE(w, flusher, "done", doneEvent{RunID: runID, Rounds: lastRound})
}

func wireEventFrom(ev loom.Event) wireEvent {
	we := wireEvent{Type: string(ev.Type), Round: ev.Round}
	switch ev.Type {
	case loom.EventContent:
		we.Text = ev.Text()
	case loom.EventToolCall:
		we.Tool = ev.Call.Function.Name
		we.CallID = ev.Call.ID
		we.Args = ev.Call.Function.Arguments
	case loom.EventToolResult:
		we.Tool = ev.Call.Function.Name
		we.CallID = ev.Call.ID
		we.Result = ev.Result
	}
	return we
}

// writeSSE sends one SSE frame and flushes it to the client.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
