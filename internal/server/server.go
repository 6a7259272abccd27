// Package server provides the HTTP server for the rep counter.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/repcounter/internal/app"
	"github.com/ayusman/repcounter/internal/server/api"
	"github.com/ayusman/repcounter/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Store     *store.Store
}

// Server represents the HTTP server for the rep counter.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		exercises := api.NewExerciseHandler(s.config.App.Catalog(), s.config.Store)
		s.mux.Handle("/api/exercises", exercises)
		s.mux.Handle("/api/exercises/", exercises)

		session := api.NewSessionHandler(s.config.App)
		s.mux.Handle("/api/session", session)
		s.mux.Handle("/api/session/", session)

		s.mux.Handle("/api/camera/", api.NewCameraHandler(s.config.App))
		s.mux.Handle("/api/status/ws", NewStatusHandler(s.config.App))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["camera_on"] = s.config.App.CameraOn()
		response["exercise_active"] = s.config.App.ExerciseActive()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Handler returns the server as an http.Server bound to addr.
func (s *Server) Handler(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return s.Handler(addr).ListenAndServe()
}
