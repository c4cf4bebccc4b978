package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/KingBbwe/lta/internal/cache"
	"github.com/KingBbwe/lta/internal/catalog"
	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
)

// ScoringEngine accumulates per-session metrics incrementally and produces
// the final report at completion. All of its persistence is best-effort:
// a degraded snapshot never blocks navigation.
type ScoringEngine struct {
	catalog      *catalog.Catalog
	store        *repository.Store
	metricsCache cache.MetricsCache // optional

	sessionID string
	snapshot  *model.MetricsSnapshot
}

// NewScoringEngine creates a scoring engine bound to one session
func NewScoringEngine(c *catalog.Catalog, store *repository.Store, metricsCache cache.MetricsCache, sessionID string) *ScoringEngine {
	return &ScoringEngine{
		catalog:      c,
		store:        store,
		metricsCache: metricsCache,
		sessionID:    sessionID,
	}
}

// Snapshot returns the current metrics snapshot, loading it from cache or
// store on first use. A session with no recorded metrics gets an empty
// snapshot, never an error.
func (s *ScoringEngine) Snapshot(ctx context.Context) *model.MetricsSnapshot {
	if s.snapshot != nil {
		return s.snapshot
	}
	if s.metricsCache != nil {
		if cached, err := s.metricsCache.Get(ctx, s.sessionID); err == nil && cached != nil {
			s.snapshot = cached
			return s.snapshot
		}
	}
	var stored model.MetricsSnapshot
	if err := s.store.Analytics.Get(ctx, s.sessionID, model.MetricTypeSnapshot, &stored); err == nil {
		s.snapshot = &stored
		return s.snapshot
	}
	// Missing or unreadable analytics degrade to a fresh snapshot; metrics
	// never gate the survey.
	s.snapshot = model.NewMetricsSnapshot(s.sessionID)
	return s.snapshot
}

// RecordResponse updates funnel, section and stakeholder metrics for one
// response and persists the whole snapshot.
func (s *ScoringEngine) RecordResponse(ctx context.Context, session *model.Session, q *model.Question, payload model.ResponsePayload) error {
	snap := s.Snapshot(ctx)

	score := s.ScoreResponse(q, payload)
	if stage := s.catalog.FunnelStage(q.ID); stage != "" {
		rec := snap.Record(stage)
		if score > rec.Score {
			rec.Score = score
		}
	}

	s.updateSectionMetrics(ctx, snap, q, payload, score)

	if session.StakeholderType != "" {
		rec := snap.Record(model.StakeholderMetricKey(session.StakeholderType))
		rec.ResponseCount++
		rec.Patterns = append(rec.Patterns, model.ResponsePattern{
			QuestionID: q.ID,
			Kind:       string(q.Type),
			Value:      payload.Primary(),
		})
	}

	snap.UpdatedAt = time.Now()

	if err := s.store.Analytics.Save(ctx, s.sessionID, model.MetricTypeSnapshot, snap); err != nil {
		return fmt.Errorf("failed to persist metrics snapshot: %w", err)
	}
	if s.metricsCache != nil {
		if err := s.metricsCache.Set(ctx, snap); err != nil {
			return fmt.Errorf("failed to cache metrics snapshot: %w", err)
		}
	}
	return nil
}

func (s *ScoringEngine) updateSectionMetrics(ctx context.Context, snap *model.MetricsSnapshot, q *model.Question, payload model.ResponsePayload, score float64) {
	sec, ok := s.catalog.Section(q.SectionID)
	if !ok {
		return
	}
	rec := snap.Record(model.SectionMetricKey(sec.ID))
	rec.ResponseCount++

	// Completion is recomputed from the store on every update. O(section
	// size) per response; fine at survey scale.
	answered := map[string]bool{}
	if stored, err := s.store.Responses.ListBySession(ctx, s.sessionID); err == nil {
		for _, r := range stored {
			answered[r.QuestionID] = true
		}
	}
	answered[q.ID] = true
	count := 0
	for _, id := range sec.QuestionIDs {
		if answered[id] {
			count++
		}
	}
	if len(sec.QuestionIDs) > 0 {
		rec.CompletionPct = math.Round(100*float64(count)/float64(len(sec.QuestionIDs))*10) / 10
	}

	if insight, ok := s.extractInsight(q, payload, score); ok {
		rec.AddInsight(insight)
	}
}

// extractInsight flags responses that cross the hardcoded significance
// thresholds: long free-text answers and extreme categorical choices.
func (s *ScoringEngine) extractInsight(q *model.Question, payload model.ResponsePayload, score float64) (model.Insight, bool) {
	now := time.Now()
	if q.Type == model.QuestionTypeFreeText && payload.WordCount() >= 12 {
		return model.Insight{
			QuestionID: q.ID,
			Text:       fmt.Sprintf("detailed free-text answer (%d words)", payload.WordCount()),
			ObservedAt: now,
		}, true
	}
	if q.Scoring != nil && q.Scoring.Kind == model.ScoringCategorical && !payload.IsEmpty() {
		if score >= 10 {
			return model.Insight{QuestionID: q.ID, Text: "strongly positive choice: " + payload.Primary(), ObservedAt: now}, true
		}
		if score <= 0 {
			return model.Insight{QuestionID: q.ID, Text: "strongly negative choice: " + payload.Primary(), ObservedAt: now}, true
		}
	}
	return model.Insight{}, false
}

// ScoreResponse maps a response to a 0-10 score using the question's scoring
// rule. Questions without a rule, and empty payloads, score 0.
func (s *ScoringEngine) ScoreResponse(q *model.Question, payload model.ResponsePayload) float64 {
	if q.Scoring == nil || payload.IsEmpty() {
		return 0
	}
	switch q.Scoring.Kind {
	case model.ScoringRecall:
		return math.Min(float64(payload.WordCount())*2, 10)
	case model.ScoringCategorical:
		return q.Scoring.CategoryScores[payload.Primary()]
	case model.ScoringSelection:
		return 10
	case model.ScoringScale:
		n, ok := payload.Numeric()
		if !ok {
			return 0
		}
		return math.Max(0, math.Min(n, 10))
	}
	return 0
}
