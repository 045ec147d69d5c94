package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Service summary and liveness
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)

	// WebSocket live feed of analysis records
	mux.HandleFunc("/ws", s.app.Feed.HandleWebSocket)

	// API routes
	mux.HandleFunc("/api/check", s.handleCheck) // POST (GET tolerated) - manual cycle trigger
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{http.MethodGet: s.handleRecords})
	})
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{http.MethodPost: s.handleAnalyze})
	})
	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{http.MethodGet: s.handleVersion})
	})

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleAPINotFound)

	return mux
}
