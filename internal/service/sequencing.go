package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/KingBbwe/lta/internal/cache"
	"github.com/KingBbwe/lta/internal/catalog"
	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
)

// Progress is the whole-catalog completion summary
type Progress struct {
	Percentage int `json:"percentage"`
	Answered   int `json:"answered"`
	Total      int `json:"total"`
}

// SectionProgress is the per-section completion summary
type SectionProgress struct {
	SectionID  string `json:"sectionId"`
	Title      string `json:"title"`
	Percentage int    `json:"percentage"`
	Answered   int    `json:"answered"`
	Total      int    `json:"total"`
}

// SequencingController drives one session through the question graph. It
// owns the live session state and the in-memory response map; every write
// goes through the store so the session survives a reload.
//
// There is exactly one writer per session, so the controller takes no lock;
// concurrent tabs on the same session get last-write-wins per record.
type SequencingController struct {
	catalog      *catalog.Catalog
	store        *repository.Store
	engine       *SkipLogicEngine
	scoring      *ScoringEngine
	sessionCache cache.SessionCache // optional
	broadcaster  Broadcaster        // optional

	session   *model.Session
	responses Responses
}

// Session returns the live session state
func (c *SequencingController) Session() *model.Session { return c.session }

// Scoring exposes the session's scoring engine (snapshot and report reads)
func (c *SequencingController) Scoring() *ScoringEngine { return c.scoring }

// CurrentQuestion resolves the session's current position against the
// catalog, defaulting to the first question when the position is unresolved.
func (c *SequencingController) CurrentQuestion() *model.Question {
	if q, ok := c.catalog.Question(c.session.CurrentQuestion); ok {
		return q
	}
	return c.catalog.First()
}

// Advance records a response for questionID (the current question when
// empty), forwards it to scoring, and moves the session to the next
// question. A nil question with nil error signals end-of-questionnaire.
func (c *SequencingController) Advance(ctx context.Context, questionID string, payload model.ResponsePayload) (*model.Question, error) {
	if c.session.Status == model.SessionCompleted {
		return nil, ErrSessionCompleted
	}
	if questionID == "" {
		questionID = c.CurrentQuestion().ID
	}
	q, ok := c.catalog.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}

	response := &model.Response{
		SessionID:  c.session.ID,
		QuestionID: q.ID,
		Payload:    payload,
		AnsweredAt: time.Now(),
	}
	if err := c.store.Responses.Save(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}
	c.responses[q.ID] = payload

	update := &model.SessionUpdate{}
	if q.ID == c.catalog.Scoring.StakeholderQuestion {
		// Resolving the stakeholder type takes effect immediately: the
		// next-question computation below already filters with it.
		st := NormalizeStakeholder(payload.Primary())
		c.session.StakeholderType = st
		update.StakeholderType = &st
	}

	// Metrics degrade silently; scoring never gates navigation.
	_ = c.scoring.RecordResponse(ctx, c.session, q, payload)

	next := c.engine.NextQuestion(q.ID, c.responses, c.session.StakeholderType)
	if next != nil {
		update.CurrentQuestion = &next.ID
		update.CurrentSection = &next.SectionID
	}
	progress := c.Progress()
	update.ProgressPct = &progress.Percentage

	if err := c.persistSession(ctx, update); err != nil {
		return nil, err
	}
	if c.broadcaster != nil {
		c.notifyProgress(progress)
		c.broadcaster.BroadcastToSession(c.session.ID, "metrics_update", c.scoring.Snapshot(ctx))
	}

	return next, nil
}

// GoBack walks backward in catalog order from the current position and
// returns the first eligible question, moving the session to it. It returns
// nil at the start of the catalog; that is a boundary, not an error.
func (c *SequencingController) GoBack(ctx context.Context) (*model.Question, error) {
	if c.session.Status == model.SessionCompleted {
		return nil, ErrSessionCompleted
	}
	idx, ok := c.catalog.Index(c.session.CurrentQuestion)
	if !ok {
		return nil, nil
	}
	for i := idx - 1; i >= 0; i-- {
		q := c.catalog.At(i)
		if c.engine.ShouldSkip(q, c.responses, c.session.StakeholderType) {
			continue
		}
		update := &model.SessionUpdate{CurrentQuestion: &q.ID, CurrentSection: &q.SectionID}
		if err := c.persistSession(ctx, update); err != nil {
			return nil, err
		}
		return q, nil
	}
	return nil, nil
}

// Jump moves the session directly to a question by id
func (c *SequencingController) Jump(ctx context.Context, questionID string) (*model.Question, error) {
	if c.session.Status == model.SessionCompleted {
		return nil, ErrSessionCompleted
	}
	q, ok := c.catalog.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	update := &model.SessionUpdate{CurrentQuestion: &q.ID, CurrentSection: &q.SectionID}
	if err := c.persistSession(ctx, update); err != nil {
		return nil, err
	}
	return q, nil
}

// Progress returns the distinct-answered ratio over the whole catalog
func (c *SequencingController) Progress() Progress {
	answered := 0
	for id := range c.responses {
		if _, ok := c.catalog.Index(id); ok {
			answered++
		}
	}
	total := c.catalog.Len()
	return Progress{
		Percentage: roundPct(answered, total),
		Answered:   answered,
		Total:      total,
	}
}

// SectionProgress returns the same ratio scoped to each section, in catalog
// section order.
func (c *SequencingController) SectionProgress() []SectionProgress {
	out := []SectionProgress{}
	for _, sec := range c.catalog.Sections() {
		answered := 0
		for _, id := range sec.QuestionIDs {
			if _, ok := c.responses[id]; ok {
				answered++
			}
		}
		out = append(out, SectionProgress{
			SectionID:  sec.ID,
			Title:      sec.Title,
			Percentage: roundPct(answered, len(sec.QuestionIDs)),
			Answered:   answered,
			Total:      len(sec.QuestionIDs),
		})
	}
	return out
}

// CanSubmit reports whether every required question has a stored response
func (c *SequencingController) CanSubmit() bool {
	for i := 0; i < c.catalog.Len(); i++ {
		q := c.catalog.At(i)
		if !q.Required {
			continue
		}
		if _, ok := c.responses[q.ID]; !ok {
			return false
		}
	}
	return true
}

// Complete marks the session completed and generates the final report.
// Completing an already-completed session returns the stored report without
// recomputing it, so the completion timestamp is stable.
func (c *SequencingController) Complete(ctx context.Context) (*model.FinalReport, error) {
	if c.session.Status == model.SessionCompleted {
		var stored model.FinalReport
		err := c.store.Analytics.Get(ctx, c.session.ID, model.MetricTypeFinalReport, &stored)
		if err == nil {
			return &stored, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			// Completed before a report was persisted; regenerate without
			// touching the completion timestamp.
			return c.scoring.GenerateFinalReport(ctx, c.responses), nil
		}
		return nil, fmt.Errorf("failed to load final report: %w", err)
	}
	if !c.CanSubmit() {
		return nil, ErrRequiredUnanswered
	}

	now := time.Now()
	status := model.SessionCompleted
	update := &model.SessionUpdate{Status: &status, CompletedAt: &now}
	if err := c.persistSession(ctx, update); err != nil {
		return nil, err
	}

	report := c.scoring.GenerateFinalReport(ctx, c.responses)
	// A report that cannot be persisted is still returned; reporting is not
	// a gate on completion.
	_ = c.store.Analytics.Save(ctx, c.session.ID, model.MetricTypeFinalReport, report)

	if c.broadcaster != nil {
		c.broadcaster.BroadcastToSession(c.session.ID, "session_completed", report.Summary)
	}
	return report, nil
}

func (c *SequencingController) persistSession(ctx context.Context, update *model.SessionUpdate) error {
	session, err := c.store.Sessions.Update(ctx, c.session.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	c.session = session
	if c.sessionCache != nil {
		// Best-effort flush; the store is authoritative.
		_ = c.sessionCache.Set(ctx, session)
	}
	return nil
}

func (c *SequencingController) notifyProgress(progress Progress) {
	c.broadcaster.BroadcastToSession(c.session.ID, "progress_update", map[string]interface{}{
		"percentage":      progress.Percentage,
		"answered":        progress.Answered,
		"total":           progress.Total,
		"currentQuestion": c.session.CurrentQuestion,
	})
}

// NormalizeStakeholder maps an option label to a stakeholder type tag
func NormalizeStakeholder(value string) model.StakeholderType {
	return model.StakeholderType(strings.ToLower(strings.TrimSpace(value)))
}

func roundPct(answered, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(answered) / float64(total)))
}
