// Package web is the presentation surface: a JSON API over the orchestrator.
// It holds no state of its own; every route delegates to internal/chef.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/amosley/fridgechef/internal/chef"
)

// maxImageBytes bounds scan uploads; detection models reject anything larger.
const maxImageBytes = 10 << 20

type Server struct {
	orchestrator *chef.Orchestrator
	mux          *http.ServeMux
	logger       *slog.Logger
}

func NewServer(o *chef.Orchestrator, logger *slog.Logger) *Server {
	s := &Server{
		orchestrator: o,
		mux:          http.NewServeMux(),
		logger:       logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /inventory", s.handleListInventory)
	s.mux.HandleFunc("POST /inventory/items", s.handleAddIngredient)
	s.mux.HandleFunc("DELETE /inventory/items/{name}", s.handleRemoveIngredient)
	s.mux.HandleFunc("POST /inventory/reset", s.handleResetInventory)

	s.mux.HandleFunc("POST /sessions", s.handleCreateSession)
	s.mux.HandleFunc("POST /sessions/{id}/scan", s.handleScan)
	s.mux.HandleFunc("POST /sessions/{id}/chat", s.handleChat)
	s.mux.HandleFunc("GET /sessions/{id}/history", s.handleHistory)
	s.mux.HandleFunc("DELETE /sessions/{id}/history", s.handleClearHistory)
	s.mux.HandleFunc("POST /sessions/{id}/shopping-list", s.handleShoppingList)

	s.mux.HandleFunc("POST /recipes", s.handleSaveRecipe)
	s.mux.HandleFunc("GET /recipes", s.handleListRecipes)
	s.mux.HandleFunc("DELETE /recipes/{id}", s.handleDeleteRecipe)
}

// hardeningHeaders adds defensive HTTP response headers to every response.
func hardeningHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, hardeningHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a small JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
