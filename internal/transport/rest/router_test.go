package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingBbwe/lta/internal/catalog"
	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
	"github.com/KingBbwe/lta/internal/service"
	"github.com/KingBbwe/lta/internal/transport/ws"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)

	authSvc := service.NewAuthService()
	sessionSvc := service.NewSessionService(c, repository.NewMemoryStore(), nil, nil)
	hub := ws.NewHub()
	sessionSvc.SetBroadcaster(hub)

	return NewRouter(&Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		WSHub:          hub,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func startSession(t *testing.T, router http.Handler) model.StartSessionResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp model.StartSessionResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStartSessionReturnsTokenAndFirstQuestion(t *testing.T) {
	router := newTestRouter(t)

	resp := startSession(t, router)
	assert.NotEmpty(t, resp.SessionID)
	require.NotNil(t, resp.FirstQuestion)
	assert.Equal(t, "q1", resp.FirstQuestion.ID)
}

func TestRespondentRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/session/question/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/session/question/current", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRespondentFlow(t *testing.T) {
	router := newTestRouter(t)
	session := startSession(t, router)

	w := doJSON(t, router, http.MethodGet, "/v1/session/question/current", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var current struct {
		Question model.Question `json:"question"`
	}
	decode(t, w, &current)
	assert.Equal(t, "q1", current.Question.ID)

	// Completing before the required questions are answered conflicts.
	w = doJSON(t, router, http.MethodPost, "/v1/session/complete", session.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	answers := map[string]model.ResponsePayload{
		"q1":  {Value: "Consumer"},
		"q2":  {Text: "LTA and Meridian"},
		"q3":  {Values: []string{"LTA"}},
		"q5":  {Value: "Very"},
		"q7":  {Value: "Probably"},
		"q10": {Value: "Yes, once"},
		"q12": {Value: "8"},
		"q14": {Value: "Wider availability"},
	}
	var last struct {
		Done      bool `json:"done"`
		CanSubmit bool `json:"canSubmit"`
	}
	for _, id := range []string{"q1", "q2", "q3", "q5", "q7", "q10", "q12", "q14"} {
		w = doJSON(t, router, http.MethodPost, "/v1/session/responses", session.Token, map[string]interface{}{
			"questionId": id,
			"payload":    answers[id],
		})
		require.Equal(t, http.StatusOK, w.Code, "advance %s: %s", id, w.Body.String())
		decode(t, w, &last)
	}
	assert.True(t, last.CanSubmit)

	w = doJSON(t, router, http.MethodPost, "/v1/session/complete", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report model.FinalReport
	decode(t, w, &report)
	assert.Equal(t, session.SessionID, report.SessionID)
	assert.NotEmpty(t, report.Recommendations)

	// The session is sealed now.
	w = doJSON(t, router, http.MethodPost, "/v1/session/responses", session.Token, map[string]interface{}{
		"questionId": "q1",
		"payload":    map[string]string{"value": "Retailer"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBackAndJumpEndpoints(t *testing.T) {
	router := newTestRouter(t)
	session := startSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/v1/session/responses", session.Token, map[string]interface{}{
		"questionId": "q1",
		"payload":    map[string]string{"value": "Consumer"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/session/back", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var back struct {
		AtStart  bool            `json:"atStart"`
		Question *model.Question `json:"question"`
	}
	decode(t, w, &back)
	require.False(t, back.AtStart)
	assert.Equal(t, "q1", back.Question.ID)

	w = doJSON(t, router, http.MethodPost, "/v1/session/jump", session.Token, map[string]string{"questionId": "q12"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/session/jump", session.Token, map[string]string{"questionId": "q99"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLoginAndRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", handlerLogin("admin", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/auth/login", "", handlerLogin("admin", "password123"))
	require.Equal(t, http.StatusOK, w.Code)
	var login model.LoginResponse
	decode(t, w, &login)
	require.NotEmpty(t, login.Token)

	w = doJSON(t, router, http.MethodGet, "/v1/sessions/incomplete", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	session := startSession(t, router)

	w = doJSON(t, router, http.MethodGet, "/v1/sessions/incomplete", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var incomplete struct {
		Sessions []model.Session `json:"sessions"`
	}
	decode(t, w, &incomplete)
	require.Len(t, incomplete.Sessions, 1)
	assert.Equal(t, session.SessionID, incomplete.Sessions[0].ID)

	path := fmt.Sprintf("/v1/sessions/%s/export", session.SessionID)
	w = doJSON(t, router, http.MethodGet, path, login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bundle model.ExportBundle
	decode(t, w, &bundle)
	require.NotNil(t, bundle.Session)
	assert.Equal(t, session.SessionID, bundle.Session.ID)

	// A respondent token does not open admin routes.
	w = doJSON(t, router, http.MethodGet, "/v1/sessions/incomplete", session.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/sessions/%s", session.SessionID), login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, path, login.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", handlerLogin("admin", "password123"))
	require.Equal(t, http.StatusOK, w.Code)
	var login model.LoginResponse
	decode(t, w, &login)

	session := startSession(t, router)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/reports/%s/final", session.SessionID), login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"not_completed"}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/reports/%s/metrics", session.SessionID), login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot model.MetricsSnapshot
	decode(t, w, &snapshot)
	assert.Equal(t, session.SessionID, snapshot.SessionID)

	w = doJSON(t, router, http.MethodGet, "/v1/reports/s_missing/metrics", login.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func handlerLogin(username, password string) map[string]string {
	return map[string]string{"username": username, "password": password}
}
