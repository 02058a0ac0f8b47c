// Package api provides HTTP API handlers for the isaac tracking service.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mayur-samrutwar/isaac/internal/store"
	"github.com/mayur-samrutwar/isaac/internal/track"
)

// TargetsHandler handles HTTP requests for collision target resources.
type TargetsHandler struct {
	store *store.Store
	// apply pushes the full persisted target set into the running pipeline
	// after every mutation. May be nil when no pipeline is attached.
	apply func([]track.Target)
}

// NewTargetsHandler creates a new TargetsHandler with the given store.
func NewTargetsHandler(s *store.Store, apply func([]track.Target)) *TargetsHandler {
	return &TargetsHandler{store: s, apply: apply}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *TargetsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/targets or /api/targets/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/targets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type targetRequest struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

type targetResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

type listTargetsResponse struct {
	Targets []targetResponse `json:"targets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTargetResponse(t *store.TargetRecord) targetResponse {
	return targetResponse{ID: t.ID, Name: t.Name, X: t.X, Y: t.Y, Radius: t.Radius}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/targets and returns all targets.
func (h *TargetsHandler) list(w http.ResponseWriter, r *http.Request) {
	targets, err := h.store.Targets().List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list targets")
		return
	}

	response := listTargetsResponse{
		Targets: make([]targetResponse, 0, len(targets)),
	}
	for i := range targets {
		response.Targets = append(response.Targets, toTargetResponse(&targets[i]))
	}

	WriteJSON(w, http.StatusOK, response)
}

// create handles POST /api/targets.
func (h *TargetsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Radius <= 0 {
		WriteError(w, http.StatusBadRequest, "Target radius must be positive")
		return
	}

	record := &store.TargetRecord{
		ID:     uuid.NewString(),
		Name:   req.Name,
		X:      req.X,
		Y:      req.Y,
		Radius: req.Radius,
	}
	if err := h.store.Targets().Create(record); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to create target")
		return
	}

	h.applyTargets()
	WriteJSON(w, http.StatusCreated, toTargetResponse(record))
}

// get handles GET /api/targets/{id}.
func (h *TargetsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	record, err := h.store.Targets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Target not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to get target")
		return
	}

	WriteJSON(w, http.StatusOK, toTargetResponse(record))
}

// update handles PUT /api/targets/{id}.
func (h *TargetsHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Radius <= 0 {
		WriteError(w, http.StatusBadRequest, "Target radius must be positive")
		return
	}

	record := &store.TargetRecord{
		ID:     id,
		Name:   req.Name,
		X:      req.X,
		Y:      req.Y,
		Radius: req.Radius,
	}
	if err := h.store.Targets().Update(record); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Target not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to update target")
		return
	}

	h.applyTargets()
	WriteJSON(w, http.StatusOK, toTargetResponse(record))
}

// delete handles DELETE /api/targets/{id}.
func (h *TargetsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Targets().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Target not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to delete target")
		return
	}

	h.applyTargets()
	w.WriteHeader(http.StatusNoContent)
}

// applyTargets pushes the current persisted target set into the pipeline.
func (h *TargetsHandler) applyTargets() {
	if h.apply == nil {
		return
	}

	records, err := h.store.Targets().List()
	if err != nil {
		log.Printf("Failed to reload targets: %v", err)
		return
	}

	targets := make([]track.Target, len(records))
	for i := range records {
		targets[i] = records[i].ToTarget()
	}
	h.apply(targets)
}
