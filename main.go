package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/va6996/boulderagent/bootstrap"
	"github.com/va6996/boulderagent/config"
	logcontext "github.com/va6996/boulderagent/context"
	"github.com/va6996/boulderagent/log"
	"github.com/va6996/boulderagent/orm"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ChatServer exposes the guide over a small JSON API
type ChatServer struct {
	app *bootstrap.App
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	RequestID string         `json:"request_id"`
	Answer    string         `json:"answer"`
	ToolCalls []orm.ToolCall `json:"tool_calls"`
}

func (s *ChatServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	requestID := logcontext.NewRequestID()
	ctx := logcontext.WithRequestID(r.Context(), requestID)

	log.Infof(ctx, "Received chat request: %s", req.Query)

	answer, err := s.app.Guide.Answer(ctx, req.Query)
	if err != nil {
		log.Errorf(ctx, "Error processing request: %v", err)
		http.Error(w, "failed to process request", http.StatusInternalServerError)
		return
	}

	// Observability trace is best-effort; a write failure must not fail
	// the turn.
	if err := orm.AppendTrace(s.app.DB, requestID, req.Query, answer.ToolCalls, answer.Text); err != nil {
		log.Errorf(ctx, "Failed to append trace: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{
		RequestID: requestID,
		Answer:    answer.Text,
		ToolCalls: answer.ToolCalls,
	})
}

// corsHandler allows all origins (dev mode)
func corsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func main() {
	log.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C (SIGINT)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info(context.Background(), "Program terminated externally. Exiting...")
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(context.Background(), "Failed to load config: %v", err)
	}

	app, err := bootstrap.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf(context.Background(), "Setup failed: %v", err)
	}

	mux := http.NewServeMux()
	server := &ChatServer{app: app}
	mux.HandleFunc("/v1/chat", server.handleChat)

	// h2c allows HTTP/2 without TLS (dev and internal services)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: h2c.NewHandler(corsHandler(mux), &http2.Server{}),
	}

	go func() {
		<-ctx.Done()
		log.Info(context.Background(), "Shutting down server...")
		srv.Shutdown(context.Background())
	}()

	log.Infof(context.Background(), "Starting server on port %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf(context.Background(), "Server failed: %v", err)
	}
}
