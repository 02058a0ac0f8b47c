// Package server provides the HTTP server for the isaac tracking service.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mayur-samrutwar/isaac/internal/capture"
	"github.com/mayur-samrutwar/isaac/internal/pipeline"
	"github.com/mayur-samrutwar/isaac/internal/server/api"
	"github.com/mayur-samrutwar/isaac/internal/session"
	"github.com/mayur-samrutwar/isaac/internal/store"
	"github.com/mayur-samrutwar/isaac/internal/track"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Pipeline  *pipeline.Pipeline
	Camera    capture.Camera
}

// Server represents the HTTP server for the isaac application.
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

	if s.config.Store != nil {
		// Target edits are pushed straight into the running pipeline.
		var apply func([]track.Target)
		if s.config.Pipeline != nil {
			apply = s.config.Pipeline.SetTargets
		}

		targetsHandler := api.NewTargetsHandler(s.config.Store, apply)
		s.mux.Handle("/api/targets", targetsHandler)
		s.mux.Handle("/api/targets/", targetsHandler)

		sessionsHandler := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionsHandler)
		s.mux.Handle("/api/sessions/", sessionsHandler)
	}

	if s.config.Pipeline != nil {
		s.mux.HandleFunc("/api/recording/start", s.handleRecordingStart)
		s.mux.HandleFunc("/api/recording/stop", s.handleRecordingStop)

		// Live fused-frame broadcast; the handler registers itself as a
		// pipeline sink.
		framesHandler := NewFramesHandler()
		s.config.Pipeline.AddSink(framesHandler)
		s.mux.Handle("/api/frames", framesHandler)
	}

	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
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
	if s.config.Pipeline != nil {
		response["pipeline"] = s.config.Pipeline.State().String()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type startRecordingRequest struct {
	Action string `json:"action"`
}

// handleRecordingStart handles POST /api/recording/start.
func (s *Server) handleRecordingStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.config.Pipeline.StartRecording(req.Action)
	switch {
	case errors.Is(err, session.ErrNoActionLabel):
		api.WriteError(w, http.StatusBadRequest, "An action label is required to record")
	case errors.Is(err, pipeline.ErrNotStreaming):
		api.WriteError(w, http.StatusConflict, "Pipeline is not streaming")
	case errors.Is(err, session.ErrAlreadyRecording):
		api.WriteError(w, http.StatusConflict, "Recording already in progress")
	case err != nil:
		api.WriteError(w, http.StatusInternalServerError, err.Error())
	default:
		api.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "recording", "action": req.Action})
	}
}

// handleRecordingStop handles POST /api/recording/stop.
func (s *Server) handleRecordingStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.config.Pipeline.StopRecording()
	switch {
	case errors.Is(err, session.ErrNotRecording):
		api.WriteError(w, http.StatusConflict, "No recording in progress")
	case err != nil:
		api.WriteError(w, http.StatusInternalServerError, err.Error())
	case result == nil:
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
	default:
		api.WriteJSON(w, http.StatusOK, result.Metadata)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
