// Package repository implements the durable response store over MongoDB,
// plus an in-memory variant used for embedded runs and tests.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/KingBbwe/lta/internal/model"
)

// ErrNotFound is returned when a session, response or analytics record
// does not exist. Mongo's ErrNoDocuments is always mapped to this.
var ErrNotFound = errors.New("not found")

type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	// Update merges the non-nil fields and bumps lastModifiedAt,
	// returning the updated session.
	Update(ctx context.Context, id string, update *model.SessionUpdate) (*model.Session, error)
	ListIncomplete(ctx context.Context) ([]*model.Session, error)
	Delete(ctx context.Context, id string) error
}

type ResponseRepo interface {
	// Save upserts by the (sessionId, questionId) composite key.
	Save(ctx context.Context, response *model.Response) error
	Get(ctx context.Context, sessionID, questionID string) (*model.Response, error)
	ListBySession(ctx context.Context, sessionID string) ([]*model.Response, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

type AnalyticsRepo interface {
	// Save upserts by the (sessionId, metricType) composite key.
	Save(ctx context.Context, sessionID, metricType string, data interface{}) error
	// Get decodes the stored data document into out.
	Get(ctx context.Context, sessionID, metricType string, out interface{}) error
	ListBySession(ctx context.Context, sessionID string) ([]model.AnalyticsRecord, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

// Store bundles the three repositories and implements the cross-cutting
// operations (export, cascading clear).
type Store struct {
	Sessions  SessionRepo
	Responses ResponseRepo
	Analytics AnalyticsRepo
}

// ExportSession dumps a session together with all its responses and analytics
func (s *Store) ExportSession(ctx context.Context, sessionID string) (*model.ExportBundle, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	responses, err := s.Responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	analytics, err := s.Analytics.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}
	return &model.ExportBundle{
		Session:   session,
		Responses: responses,
		Analytics: analytics,
	}, nil
}

// ClearSession deletes a session and everything keyed to it
func (s *Store) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.Responses.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	if err := s.Analytics.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete analytics: %w", err)
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
