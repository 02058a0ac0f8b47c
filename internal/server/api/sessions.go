package api

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mayur-samrutwar/isaac/internal/store"
)

// SessionsHandler handles HTTP requests for recorded session resources.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a new SessionsHandler with the given store.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/sessions, /api/sessions/{id},
	// /api/sessions/{id}/data, /api/sessions/{id}/meta
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "data":
		h.download(w, r, id, artifactData)
	case "meta":
		h.download(w, r, id, artifactMeta)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

type sessionResponse struct {
	ID            string    `json:"id"`
	Action        string    `json:"action"`
	StartedAt     time.Time `json:"startedAt"`
	DurationSec   float64   `json:"durationSec"`
	FrameCount    int       `json:"frameCount"`
	FPS           float64   `json:"fps"`
	SchemaVersion string    `json:"schemaVersion"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:            s.ID,
		Action:        s.Action,
		StartedAt:     s.StartedAt,
		DurationSec:   s.DurationSec,
		FrameCount:    s.FrameCount,
		FPS:           s.FPS,
		SchemaVersion: s.SchemaVersion,
	}
}

// list handles GET /api/sessions, most recent first.
func (h *SessionsHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for i := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(&sessions[i]))
	}

	WriteJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Session not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

// delete handles DELETE /api/sessions/{id}. Recording artifacts are removed
// from disk along with the catalog row; a missing file is not an error.
func (h *SessionsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Session not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	if err := h.store.Sessions().Delete(id); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	for _, p := range []string{sess.BinPath, sess.MetaPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			WriteError(w, http.StatusInternalServerError, "Failed to remove session artifacts")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

type artifactKind int

const (
	artifactData artifactKind = iota
	artifactMeta
)

// download serves a recording artifact as a file attachment.
func (h *SessionsHandler) download(w http.ResponseWriter, r *http.Request, id string, kind artifactKind) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Session not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	var path, name, contentType string
	switch kind {
	case artifactData:
		path = sess.BinPath
		name = sess.ID + "_data.bin"
		contentType = "application/octet-stream"
	case artifactMeta:
		path = sess.MetaPath
		name = sess.ID + "_meta.json"
		contentType = "application/json"
	}

	if _, err := os.Stat(path); err != nil {
		WriteError(w, http.StatusNotFound, "Session artifact missing on disk")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	http.ServeFile(w, r, path)
}
