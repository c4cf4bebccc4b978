package rest

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/KingBbwe/lta/internal/service"
	"github.com/KingBbwe/lta/internal/transport/rest/handler"
	"github.com/KingBbwe/lta/internal/transport/rest/middleware"
	"github.com/KingBbwe/lta/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	WSHub          *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.AuthService)
	navigationHandler := handler.NewNavigationHandler(c.SessionService)
	reportHandler := handler.NewReportHandler(c.SessionService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)
	r.Use(requestLogger)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.ObserveSession).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Respondent routes (session-scoped token)
	respondentRoutes := v1.NewRoute().Subrouter()
	respondentRoutes.Use(authMW.RequireRespondent)

	respondentRoutes.HandleFunc("/session/question/current", navigationHandler.Current).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/session/responses", navigationHandler.Advance).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/session/back", navigationHandler.Back).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/session/jump", navigationHandler.Jump).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/session/progress", navigationHandler.Progress).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/session/complete", navigationHandler.Complete).Methods("POST", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/sessions/incomplete", sessionHandler.Incomplete).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/sessions/{sessionId}/export", sessionHandler.Export).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Clear).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/reports/{sessionId}/metrics", reportHandler.Metrics).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/reports/{sessionId}/final", reportHandler.Final).Methods("GET", "OPTIONS")

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
