package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/site-attendance/internal/ai"
	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/constants"
)

// KioskHandler serves the gate kiosk: worker lookup, automatic PPE check and
// supervisor-confirmed presence.
type KioskHandler struct {
	engine *attendance.Engine
}

// NewKioskHandler creates a new kiosk handler
func NewKioskHandler(engine *attendance.Engine) *KioskHandler {
	return &KioskHandler{engine: engine}
}

// KioskRequest is the body of every kiosk call. Image is a data URL and unused by precheck.
type KioskRequest struct {
	WorkerID workerID `json:"worker_id"`
	Image    string   `json:"image"`
}

// PrecheckResponse answers a worker lookup.
type PrecheckResponse struct {
	Status     string `json:"status"`
	WorkerName string `json:"worker_name,omitempty"`
	Message    string `json:"message,omitempty"`
}

// VerifyResponse answers an automatic check. Missing is present for PRESENT and ABSENT.
type VerifyResponse struct {
	Status     string  `json:"status"`
	WorkerName string  `json:"worker_name,omitempty"`
	Missing    *string `json:"missing,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// ManualUploadResponse answers a supervisor confirmation.
type ManualUploadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Precheck looks up a worker before the camera is started.
func (h *KioskHandler) Precheck(w http.ResponseWriter, r *http.Request) {
	var req KioskRequest
	if status, err := decodeJSON(w, r, constants.MaxJSONRequestSize, &req); err != nil {
		respondJSON(w, status, PrecheckResponse{Status: statusError, Message: errInvalidRequestBody})
		return
	}

	name, err := h.engine.Precheck(r.Context(), string(req.WorkerID))
	if err != nil {
		status := statusForError(err)
		resp := PrecheckResponse{Status: statusError, Message: err.Error()}
		switch status {
		case http.StatusNotFound:
			resp.Status = statusNotFound
		case http.StatusInternalServerError:
			log.Printf("Precheck for worker %s failed: %v", sanitizeForLog(string(req.WorkerID)), err)
		}
		respondJSON(w, status, resp)
		return
	}

	respondJSON(w, http.StatusOK, PrecheckResponse{Status: statusSuccess, WorkerName: name})
}

// Verify classifies a frame and records the outcome.
func (h *KioskHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req KioskRequest
	if status, err := decodeJSON(w, r, constants.MaxFrameRequestSize, &req); err != nil {
		respondJSON(w, status, VerifyResponse{Status: statusError, Message: errInvalidRequestBody})
		return
	}

	decision, err := h.engine.Verify(r.Context(), string(req.WorkerID), req.Image)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Verification for worker %s failed: %v", sanitizeForLog(string(req.WorkerID)), err)
		}
		respondJSON(w, status, VerifyResponse{Status: statusError, Message: err.Error()})
		return
	}

	if decision.Outcome == ai.OutcomeRetry {
		respondJSON(w, http.StatusOK, VerifyResponse{Status: string(ai.OutcomeRetry), Message: decision.Message})
		return
	}

	missing := decision.Missing
	respondJSON(w, http.StatusOK, VerifyResponse{
		Status:     string(decision.Outcome),
		WorkerName: decision.WorkerName,
		Missing:    &missing,
	})
}

// ManualUpload records a supervisor-confirmed presence.
func (h *KioskHandler) ManualUpload(w http.ResponseWriter, r *http.Request) {
	var req KioskRequest
	if status, err := decodeJSON(w, r, constants.MaxFrameRequestSize, &req); err != nil {
		respondJSON(w, status, ManualUploadResponse{Status: statusError, Message: errInvalidRequestBody})
		return
	}

	if _, err := h.engine.ManualUpload(r.Context(), string(req.WorkerID), req.Image); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Manual upload for worker %s failed: %v", sanitizeForLog(string(req.WorkerID)), err)
		}
		respondJSON(w, status, ManualUploadResponse{Status: statusError, Message: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, ManualUploadResponse{Status: statusSuccess})
}
