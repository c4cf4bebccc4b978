package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KingBbwe/lta/internal/cache"
	"github.com/KingBbwe/lta/internal/catalog"
	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
)

// SessionService creates and rehydrates per-session sequencing controllers.
// Each controller is an isolated context object; nothing here is a global.
type SessionService struct {
	catalog      *catalog.Catalog
	store        *repository.Store
	sessionCache cache.SessionCache // optional
	metricsCache cache.MetricsCache // optional
	broadcaster  Broadcaster        // optional
}

// NewSessionService creates a new session service
func NewSessionService(c *catalog.Catalog, store *repository.Store, sessionCache cache.SessionCache, metricsCache cache.MetricsCache) *SessionService {
	return &SessionService{
		catalog:      c,
		store:        store,
		sessionCache: sessionCache,
		metricsCache: metricsCache,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StartSession creates a fresh in-progress session positioned at the first
// catalog question.
func (s *SessionService) StartSession(ctx context.Context) (*SequencingController, error) {
	now := time.Now()
	first := s.catalog.First()
	session := &model.Session{
		ID:              "s_" + uuid.New().String()[:8],
		Status:          model.SessionInProgress,
		CurrentQuestion: first.ID,
		CurrentSection:  first.SectionID,
		CatalogVersion:  s.catalog.Version,
		CreatedAt:       now,
		LastModifiedAt:  now,
	}
	if err := s.store.Sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if s.sessionCache != nil {
		_ = s.sessionCache.Set(ctx, session)
	}
	return s.controller(session, make(Responses)), nil
}

// LoadSession rehydrates a controller from the cache or the store, including
// the full response map.
func (s *SessionService) LoadSession(ctx context.Context, sessionID string) (*SequencingController, error) {
	var session *model.Session
	if s.sessionCache != nil {
		cached, err := s.sessionCache.Get(ctx, sessionID)
		if err == nil && cached != nil {
			session = cached
		}
	}
	if session == nil {
		stored, err := s.store.Sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		session = stored
	}

	stored, err := s.store.Responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	responses := make(Responses, len(stored))
	for _, r := range stored {
		responses[r.QuestionID] = r.Payload
	}
	return s.controller(session, responses), nil
}

func (s *SessionService) controller(session *model.Session, responses Responses) *SequencingController {
	return &SequencingController{
		catalog:      s.catalog,
		store:        s.store,
		engine:       NewSkipLogicEngine(s.catalog),
		scoring:      NewScoringEngine(s.catalog, s.store, s.metricsCache, session.ID),
		sessionCache: s.sessionCache,
		broadcaster:  s.broadcaster,
		session:      session,
		responses:    responses,
	}
}

// IncompleteSessions lists all sessions still in progress
func (s *SessionService) IncompleteSessions(ctx context.Context) ([]*model.Session, error) {
	return s.store.Sessions.ListIncomplete(ctx)
}

// Export dumps one session with its responses and analytics
func (s *SessionService) Export(ctx context.Context, sessionID string) (*model.ExportBundle, error) {
	return s.store.ExportSession(ctx, sessionID)
}

// Clear deletes a session and everything keyed to it, including cache
// entries.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.ClearSession(ctx, sessionID); err != nil {
		return err
	}
	if s.sessionCache != nil {
		_ = s.sessionCache.Delete(ctx, sessionID)
	}
	if s.metricsCache != nil {
		_ = s.metricsCache.Delete(ctx, sessionID)
	}
	return nil
}
