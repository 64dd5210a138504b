// Package rest exposes the assistant over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"legalbot/internal/domain"
	"legalbot/internal/logger"
	"legalbot/internal/metrics"
	"legalbot/internal/service"
)

const (
	msgQueryRequired = "Query is required."
	msgInternal      = "An internal error occurred while processing your query."
)

// Assistant is the part of service.Assistant the HTTP layer calls.
type Assistant interface {
	Reply(ctx context.Context, input string) (string, error)
	Matches(ctx context.Context, query string) ([]service.Match, error)
	Len() int
	EmbedderName() string
}

// Server holds the HTTP handlers.
type Server struct {
	assistant Assistant
	logger    *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(a Assistant, l *zap.Logger) *Server {
	return &Server{assistant: a, logger: logger.OrNop(l)}
}

// Router mounts the handlers with recovery, request ids, request logging,
// metrics and CORS for the given origins.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
	}))

	r.Post("/ask", s.Ask)
	r.Post("/matches", s.Matches)
	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type queryRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Response string `json:"response"`
}

type matchItem struct {
	ID         string  `json:"id"`
	Index      int     `json:"index"`
	Score      float64 `json:"score"`
	ShortTitle string  `json:"short_title"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}
	reply, err := s.assistant.Reply(r.Context(), req.Query)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Response: reply})
}

// Matches handles POST /matches.
func (s *Server) Matches(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}
	matches, err := s.assistant.Matches(r.Context(), req.Query)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	items := make([]matchItem, len(matches))
	for i, m := range matches {
		items[i] = matchItem{
			ID:         m.Record.ID,
			Index:      m.Index,
			Score:      m.Score,
			ShortTitle: m.Record.ShortTitle.String(),
		}
	}
	writeJSON(w, http.StatusOK, items)
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"records":  s.assistant.Len(),
		"embedder": s.assistant.EmbedderName(),
	})
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}
	logger.FromContext(r.Context(), s.logger).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgInternal)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
