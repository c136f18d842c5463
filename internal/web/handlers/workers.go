package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/constants"
)

// WorkersHandler handles the worker registry endpoints
type WorkersHandler struct {
	engine *attendance.Engine
}

// NewWorkersHandler creates a new workers handler
func NewWorkersHandler(engine *attendance.Engine) *WorkersHandler {
	return &WorkersHandler{engine: engine}
}

// CreateWorkerRequest registers a worker.
type CreateWorkerRequest struct {
	Name string `json:"name"`
}

// CreateWorkerResponse carries the allocated worker id.
type CreateWorkerResponse struct {
	Status   string `json:"status"`
	WorkerID string `json:"worker_id"`
}

// List returns registered workers, filtered by the q query parameter.
func (h *WorkersHandler) List(w http.ResponseWriter, r *http.Request) {
	workers, err := h.engine.Workers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("Listing workers failed: %v", err)
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, workers)
}

// Create registers a worker under the next free id.
func (h *WorkersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if status, err := decodeJSON(w, r, constants.MaxJSONRequestSize, &req); err != nil {
		respondError(w, status, errInvalidRequestBody)
		return
	}

	id, err := h.engine.Register(r.Context(), req.Name)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Registering worker %q failed: %v", sanitizeForLog(req.Name), err)
		}
		respondError(w, status, err.Error())
		return
	}

	log.Printf("Registered worker %s (%s)", id, sanitizeForLog(req.Name))
	respondJSON(w, http.StatusOK, CreateWorkerResponse{Status: "ok", WorkerID: id})
}

// Delete removes a worker together with their attendance rows.
func (h *WorkersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "worker_id")

	if err := h.engine.Remove(r.Context(), id); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Removing worker %s failed: %v", sanitizeForLog(id), err)
		}
		respondError(w, status, err.Error())
		return
	}

	log.Printf("Removed worker %s", sanitizeForLog(id))
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
