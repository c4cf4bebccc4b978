package service

import "errors"

var (
	ErrQuestionNotFound   = errors.New("question not found in catalog")
	ErrSessionCompleted   = errors.New("session is already completed")
	ErrRequiredUnanswered = errors.New("required questions are unanswered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
