package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/constants"
	"github.com/kozaktomas/site-attendance/internal/report"
	"github.com/kozaktomas/site-attendance/internal/web/middleware"
)

// AttendanceHandler handles the admin attendance endpoints
type AttendanceHandler struct {
	engine *attendance.Engine
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(engine *attendance.Engine) *AttendanceHandler {
	return &AttendanceHandler{engine: engine}
}

// ManualMarkRequest is an admin override. Status defaults to PRESENT and Date to today.
type ManualMarkRequest struct {
	WorkerID workerID `json:"worker_id"`
	Status   string   `json:"status"`
	Date     string   `json:"date"`
}

// ManualMark writes an admin override record.
func (h *AttendanceHandler) ManualMark(w http.ResponseWriter, r *http.Request) {
	var req ManualMarkRequest
	if status, err := decodeJSON(w, r, constants.MaxJSONRequestSize, &req); err != nil {
		respondError(w, status, errInvalidRequestBody)
		return
	}

	rec, err := h.engine.AdminOverride(r.Context(), string(req.WorkerID), req.Status, req.Date)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Admin override for worker %s failed: %v", sanitizeForLog(string(req.WorkerID)), err)
		}
		respondError(w, status, err.Error())
		return
	}

	operator := "anonymous"
	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil && claims.Subject != "" {
		operator = claims.Subject
	}
	log.Printf("Admin %s marked worker %s %s for %s",
		sanitizeForLog(operator), sanitizeForLog(rec.WorkerID), rec.AttendanceStatus, rec.Date)

	respondJSON(w, http.StatusOK, map[string]string{"status": statusSuccess})
}

// Logs lists attendance rows newest first, for one date or for all dates.
func (h *AttendanceHandler) Logs(w http.ResponseWriter, r *http.Request) {
	rows, err := h.engine.Logs(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Listing attendance failed: %v", err)
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// Export sends the rows of one day (default today) as an xlsx workbook.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.engine.Today()
	}

	rows, err := h.engine.Logs(r.Context(), date)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Exporting attendance for %s failed: %v", sanitizeForLog(date), err)
		}
		respondError(w, status, err.Error())
		return
	}

	workers, err := h.engine.Workers(r.Context(), "")
	if err != nil {
		log.Printf("Exporting attendance for %s failed: %v", date, err)
		respondError(w, statusForError(err), err.Error())
		return
	}
	names := make(map[string]string, len(workers))
	for _, wk := range workers {
		names[wk.WorkerID] = wk.Name
	}

	var buf bytes.Buffer
	if err := report.WriteLogs(&buf, rows, names); err != nil {
		log.Printf("Writing attendance workbook for %s failed: %v", date, err)
		respondError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s.xlsx"`, date))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
