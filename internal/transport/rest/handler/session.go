package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
	"github.com/KingBbwe/lta/internal/service"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	authSvc    *service.AuthService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		authSvc:    authSvc,
	}
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	controller, err := h.sessionSvc.StartSession(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	session := controller.Session()
	token, err := h.authSvc.GenerateRespondentToken(session.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, model.StartSessionResponse{
		SessionID:     session.ID,
		Token:         token,
		FirstQuestion: controller.CurrentQuestion(),
	})
}

// Incomplete handles GET /v1/sessions/incomplete (admin)
func (h *SessionHandler) Incomplete(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionSvc.IncompleteSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// Export handles GET /v1/sessions/{sessionId}/export (admin)
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	bundle, err := h.sessionSvc.Export(r.Context(), sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// Clear handles DELETE /v1/sessions/{sessionId} (admin)
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.sessionSvc.Clear(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
