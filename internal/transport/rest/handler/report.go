package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
	"github.com/KingBbwe/lta/internal/service"
)

// ReportHandler handles metrics and report endpoints (admin)
type ReportHandler struct {
	sessionSvc *service.SessionService
}

// NewReportHandler creates a new report handler
func NewReportHandler(sessionSvc *service.SessionService) *ReportHandler {
	return &ReportHandler{sessionSvc: sessionSvc}
}

// Metrics handles GET /v1/reports/{sessionId}/metrics
func (h *ReportHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	controller, err := h.sessionSvc.LoadSession(r.Context(), sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, controller.Scoring().Snapshot(r.Context()))
}

// Final handles GET /v1/reports/{sessionId}/final
func (h *ReportHandler) Final(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	controller, err := h.sessionSvc.LoadSession(r.Context(), sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if controller.Session().Status != model.SessionCompleted {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not_completed"})
		return
	}

	report, err := controller.Complete(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}
