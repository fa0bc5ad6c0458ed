// Package api provides the HTTP server for CoinQuest.
// It exposes the rewards REST API and the live celebration SSE feed.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the CoinQuest HTTP API server.
type Server struct {
	rewards        *RewardsAPI
	metricsEnabled bool
	celebrationHub *CelebrationHub
}

// NewServer creates a new API server.
func NewServer(rewards *RewardsAPI) *Server {
	return &Server{rewards: rewards}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCelebrationHub sets the live celebration SSE hub.
func (s *Server) SetCelebrationHub(h *CelebrationHub) { s.celebrationHub = h }

// CelebrationHub returns the live celebration hub (for broadcasting events).
func (s *Server) CelebrationHub() *CelebrationHub { return s.celebrationHub }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": "0.1.0",
		})
	})

	// Rewards API
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.rewards.HandleState)
		r.Get("/wallet", s.rewards.HandleWallet)
		r.Get("/history", s.rewards.HandleHistory)

		r.Get("/tasks", s.rewards.HandleTasks)
		r.Post("/tasks/{id}/start", s.rewards.HandleTaskStart)
		r.Post("/tasks/{id}/submit", s.rewards.HandleTaskSubmit)
		r.Post("/tasks/{id}/abandon", s.rewards.HandleTaskAbandon)

		r.Post("/ad/watch", s.rewards.HandleAdWatch)
		r.Get("/ad/status", s.rewards.HandleAdStatus)
		r.Post("/ad/close", s.rewards.HandleAdClose)

		r.Post("/arcade/wheel/spin", s.rewards.HandleWheelSpin)
		r.Post("/arcade/tap", s.rewards.HandleTap)
		r.Get("/arcade/trivia/question", s.rewards.HandleTriviaQuestion)
		r.Post("/arcade/trivia/answer", s.rewards.HandleTriviaAnswer)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Live celebration SSE feed
	if s.celebrationHub != nil {
		r.Get("/api/celebrations/live", s.celebrationHub.HandleCelebrationSSE)
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
