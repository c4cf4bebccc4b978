package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
	"github.com/KingBbwe/lta/internal/service"
	"github.com/KingBbwe/lta/internal/transport/rest/middleware"
)

// NavigationHandler handles the respondent question flow
type NavigationHandler struct {
	sessionSvc *service.SessionService
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(sessionSvc *service.SessionService) *NavigationHandler {
	return &NavigationHandler{sessionSvc: sessionSvc}
}

func (h *NavigationHandler) load(ctx context.Context, w http.ResponseWriter) *service.SequencingController {
	controller, err := h.sessionSvc.LoadSession(ctx, middleware.GetSessionID(ctx))
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	return controller
}

// Current handles GET /v1/session/question/current
func (h *NavigationHandler) Current(w http.ResponseWriter, r *http.Request) {
	controller := h.load(r.Context(), w)
	if controller == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"question": controller.CurrentQuestion(),
		"progress": controller.Progress(),
	})
}

// AdvanceRequest is the request body for submitting a response
type AdvanceRequest struct {
	QuestionID string                `json:"questionId,omitempty"`
	Payload    model.ResponsePayload `json:"payload"`
}

// Advance handles POST /v1/session/responses
func (h *NavigationHandler) Advance(w http.ResponseWriter, r *http.Request) {
	controller := h.load(r.Context(), w)
	if controller == nil {
		return
	}

	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next, err := controller.Advance(r.Context(), req.QuestionID, req.Payload)
	if err != nil {
		writeNavigationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"done":         next == nil,
		"nextQuestion": next,
		"progress":     controller.Progress(),
		"canSubmit":    controller.CanSubmit(),
	})
}

// Back handles POST /v1/session/back
func (h *NavigationHandler) Back(w http.ResponseWriter, r *http.Request) {
	controller := h.load(r.Context(), w)
	if controller == nil {
		return
	}

	q, err := controller.GoBack(r.Context())
	if err != nil {
		writeNavigationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"atStart":  q == nil,
		"question": q,
	})
}

// JumpRequest is the request body for jumping to a question
type JumpRequest struct {
	QuestionID string `json:"questionId"`
}

// Jump handles POST /v1/session/jump
func (h *NavigationHandler) Jump(w http.ResponseWriter, r *http.Request) {
	controller := h.load(r.Context(), w)
	if controller == nil {
		return
	}

	var req JumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, err := controller.Jump(r.Context(), req.QuestionID)
	if err != nil {
		writeNavigationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"question": q})
}

// Progress handles GET /v1/session/progress
func (h *NavigationHandler) Progress(w http.ResponseWriter, r *http.Request) {
	controller := h.load(r.Context(), w)
	if controller == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"progress":  controller.Progress(),
		"sections":  controller.SectionProgress(),
		"canSubmit": controller.CanSubmit(),
	})
}

// Complete handles POST /v1/session/complete
func (h *NavigationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	controller := h.load(r.Context(), w)
	if controller == nil {
		return
	}

	report, err := controller.Complete(r.Context())
	if errors.Is(err, service.ErrRequiredUnanswered) {
		writeError(w, http.StatusConflict, "required questions are unanswered")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeNavigationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
