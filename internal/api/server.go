// Package api exposes the gateway over HTTP: two JSON operations plus a
// health probe. Every failure is written as {"error": ...} with the
// status the gateway's taxonomy dictates; raw upstream errors never
// reach the wire.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tubelens/tubelens/internal/gateway"
)

// Gateway is the operation surface the server fronts.
type Gateway interface {
	GenerateTimestamps(ctx context.Context, videoID string) ([]string, error)
	Chat(ctx context.Context, req gateway.ChatRequest) (*gateway.ChatResult, error)
}

type Server struct {
	router *chi.Mux
	port   int
	gw     Gateway
	logger *slog.Logger
}

func NewServer(port int, gw Gateway, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		gw:     gw,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Post("/generate-timestamps", s.generateTimestamps)
	router.Post("/chat-with-video", s.chatWithVideo)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type contextKey string

const requestIDKey contextKey = "request_id"

// requestID tags each request with a correlation ID, echoed in the
// response headers and available to handlers for logging.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeGatewayError maps a classified gateway failure to its wire status.
// Anything unclassified becomes a plain 500.
func (s *Server) writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		writeError(w, gwErr.HTTPStatus(), gwErr.Message)
		return
	}
	s.logger.Error("unclassified gateway error", "error", err, "request_id", r.Context().Value(requestIDKey))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
