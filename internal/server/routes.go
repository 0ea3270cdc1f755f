package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// securityHeaders are set on every response, including the 404 page
var securityHeaders = [][2]string{
	{"X-Powered-By", "PHP 7.4.3"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-XSS-Protection", "1; mode=block"},
	{"Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
	{"Surrogate-Control", "no-store"},
	{"Access-Control-Allow-Origin", "*"},
}

// Routes configures all routes and returns the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	for _, h := range securityHeaders {
		r.Use(middleware.SetHeader(h[0], h[1]))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, s.cfg.IndexFile)
	})

	fileServer := http.FileServer(http.Dir(s.cfg.PublicDir))
	r.Handle("/public/*", http.StripPrefix("/public", fileServer))

	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/leaderboard", s.handleLeaderboard)

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.world.Stats()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"players":    stats.Players,
		"broadcasts": stats.Broadcasts,
		"bytes":      stats.Bytes,
		"dropped":    stats.Dropped,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.world.Leaderboard()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// handleNotFound echoes the hardened response headers back in the body
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	headers := make(map[string]string, len(securityHeaders))
	for _, h := range securityHeaders {
		headers[h[0]] = w.Header().Get(h[0])
	}
	respondJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Not Found",
		"headers": headers,
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode json response", "error", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
