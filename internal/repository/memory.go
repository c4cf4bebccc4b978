package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/KingBbwe/lta/internal/model"
)

// NewMemoryStore builds a Store backed entirely by process memory. Used when
// the service runs without Mongo (embedded mode) and throughout the tests.
func NewMemoryStore() *Store {
	return &Store{
		Sessions:  &memorySessionRepo{sessions: make(map[string]*model.Session)},
		Responses: &memoryResponseRepo{responses: make(map[string]map[string]*model.Response)},
		Analytics: &memoryAnalyticsRepo{records: make(map[string]map[string][]byte), updated: make(map[string]map[string]time.Time)},
	}
}

type memorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

func (r *memorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memorySessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *memorySessionRepo) Update(ctx context.Context, id string, update *model.SessionUpdate) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	update.Apply(session, time.Now())
	cp := *session
	return &cp, nil
}

func (r *memorySessionRepo) ListIncomplete(ctx context.Context) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Session{}
	for _, session := range r.sessions {
		if session.Status == model.SessionInProgress {
			cp := *session
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

type memoryResponseRepo struct {
	mu        sync.RWMutex
	responses map[string]map[string]*model.Response // sessionID -> questionID -> response
}

func (r *memoryResponseRepo) Save(ctx context.Context, response *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byQuestion, ok := r.responses[response.SessionID]
	if !ok {
		byQuestion = make(map[string]*model.Response)
		r.responses[response.SessionID] = byQuestion
	}
	cp := *response
	byQuestion[response.QuestionID] = &cp
	return nil
}

func (r *memoryResponseRepo) Get(ctx context.Context, sessionID, questionID string) (*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	response, ok := r.responses[sessionID][questionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *response
	return &cp, nil
}

func (r *memoryResponseRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Response{}
	for _, response := range r.responses[sessionID] {
		cp := *response
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryResponseRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.responses, sessionID)
	return nil
}

type memoryAnalyticsRepo struct {
	mu      sync.RWMutex
	records map[string]map[string][]byte // sessionID -> metricType -> JSON
	updated map[string]map[string]time.Time
}

func (r *memoryAnalyticsRepo) Save(ctx context.Context, sessionID, metricType string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records[sessionID] == nil {
		r.records[sessionID] = make(map[string][]byte)
		r.updated[sessionID] = make(map[string]time.Time)
	}
	r.records[sessionID][metricType] = raw
	r.updated[sessionID][metricType] = time.Now()
	return nil
}

func (r *memoryAnalyticsRepo) Get(ctx context.Context, sessionID, metricType string, out interface{}) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	raw, ok := r.records[sessionID][metricType]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (r *memoryAnalyticsRepo) ListBySession(ctx context.Context, sessionID string) ([]model.AnalyticsRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := []model.AnalyticsRecord{}
	for metricType, raw := range r.records[sessionID] {
		var data map[string]interface{}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
		records = append(records, model.AnalyticsRecord{
			SessionID:  sessionID,
			MetricType: metricType,
			Data:       data,
			UpdatedAt:  r.updated[sessionID][metricType],
		})
	}
	return records, nil
}

func (r *memoryAnalyticsRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sessionID)
	delete(r.updated, sessionID)
	return nil
}
