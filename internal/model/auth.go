package model

import "github.com/golang-jwt/jwt/v5"

// RespondentClaims scope a token to a single survey session
type RespondentClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// AdminClaims authorize catalog and cross-session operations
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// LoginResponse is returned from the admin login endpoint
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}

// StartSessionResponse is returned when a respondent session is created
type StartSessionResponse struct {
	SessionID     string    `json:"sessionId"`
	Token         string    `json:"token"`
	FirstQuestion *Question `json:"firstQuestion"`
}

// ExportBundle is the full dump of one session's data
type ExportBundle struct {
	Session   *Session          `json:"session"`
	Responses []*Response       `json:"responses"`
	Analytics []AnalyticsRecord `json:"analytics"`
}
