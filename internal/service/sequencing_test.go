package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingBbwe/lta/internal/catalog"
	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
)

func newTestController(t *testing.T) *SequencingController {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	svc := NewSessionService(c, repository.NewMemoryStore(), nil, nil)
	controller, err := svc.StartSession(context.Background())
	require.NoError(t, err)
	return controller
}

// requiredAnswers covers every required question of the default catalog.
var requiredAnswers = map[string]model.ResponsePayload{
	"q1":  {Value: "Consumer"},
	"q2":  {Text: "Earl Grey and a couple of Assam blends"},
	"q3":  {Values: []string{"LTA"}},
	"q5":  {Value: "Extremely"},
	"q7":  {Value: "Probably"},
	"q10": {Value: "Yes, once"},
	"q12": {Value: "9"},
	"q14": {Value: "New flavours"},
}

func answerAllRequired(t *testing.T, c *SequencingController) {
	t.Helper()
	for _, id := range []string{"q1", "q2", "q3", "q5", "q7", "q10", "q12", "q14"} {
		_, err := c.Advance(context.Background(), id, requiredAnswers[id])
		require.NoError(t, err)
	}
}

func TestStartSessionPositionsAtFirstQuestion(t *testing.T) {
	c := newTestController(t)

	session := c.Session()
	assert.Equal(t, model.SessionInProgress, session.Status)
	assert.Equal(t, "q1", session.CurrentQuestion)
	assert.Equal(t, "screening", session.CurrentSection)
	assert.Equal(t, "q1", c.CurrentQuestion().ID)
	assert.Equal(t, 0, c.Progress().Percentage)
}

func TestAdvanceMovesSequentially(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	next, err := c.Advance(ctx, "q1", model.ResponsePayload{Value: "Consumer"})
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "q2", next.ID)
	assert.Equal(t, "q2", c.Session().CurrentQuestion)
	assert.Equal(t, "awareness", c.Session().CurrentSection)
}

func TestAdvanceUnknownQuestion(t *testing.T) {
	c := newTestController(t)

	_, err := c.Advance(context.Background(), "q99", model.ResponsePayload{Value: "x"})
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestStakeholderResolutionTakesEffectImmediately(t *testing.T) {
	ctx := context.Background()

	// A retailer reaches the stocking question q9.
	c := newTestController(t)
	_, err := c.Advance(ctx, "q1", model.ResponsePayload{Value: "Retailer"})
	require.NoError(t, err)
	assert.Equal(t, model.StakeholderRetailer, c.Session().StakeholderType)

	next, err := c.Advance(ctx, "q8", model.ResponsePayload{Ranking: []string{"Taste", "Price"}})
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "q9", next.ID)

	// A consumer skips straight over it.
	c = newTestController(t)
	_, err = c.Advance(ctx, "q1", model.ResponsePayload{Value: "Consumer"})
	require.NoError(t, err)

	next, err = c.Advance(ctx, "q8", model.ResponsePayload{Ranking: []string{"Taste", "Price"}})
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "q10", next.ID)
}

func TestAdvanceFollowsJumpRule(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	_, err := c.Advance(ctx, "q1", model.ResponsePayload{Value: "Consumer"})
	require.NoError(t, err)
	_, err = c.Advance(ctx, "q2", model.ResponsePayload{Text: "none really"})
	require.NoError(t, err)

	next, err := c.Advance(ctx, "q3", model.ResponsePayload{Values: []string{"None of these"}})
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "q5", next.ID, "no brand awareness skips the rest of the awareness section")
}

func TestProgressCountsDistinctAnswers(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	_, err := c.Advance(ctx, "q1", model.ResponsePayload{Value: "Consumer"})
	require.NoError(t, err)
	assert.Equal(t, Progress{Percentage: 7, Answered: 1, Total: 14}, c.Progress())

	// Re-answering the same question does not move progress.
	_, err = c.Advance(ctx, "q1", model.ResponsePayload{Value: "Retailer"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Progress().Answered)

	_, err = c.Advance(ctx, "q2", model.ResponsePayload{Text: "LTA"})
	require.NoError(t, err)
	assert.Equal(t, Progress{Percentage: 14, Answered: 2, Total: 14}, c.Progress())
	assert.Equal(t, 14, c.Session().ProgressPct)
}

func TestSectionProgress(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	_, err := c.Advance(ctx, "q1", model.ResponsePayload{Value: "Consumer"})
	require.NoError(t, err)

	sections := c.SectionProgress()
	require.NotEmpty(t, sections)
	assert.Equal(t, "screening", sections[0].SectionID)
	assert.Equal(t, 100, sections[0].Percentage)
	assert.Equal(t, 0, sections[1].Percentage)
}

func TestGoBack(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	// At the first question there is nowhere to go.
	q, err := c.GoBack(ctx)
	require.NoError(t, err)
	assert.Nil(t, q)

	_, err = c.Advance(ctx, "q1", model.ResponsePayload{Value: "Consumer"})
	require.NoError(t, err)
	_, err = c.Advance(ctx, "q2", model.ResponsePayload{Text: "LTA"})
	require.NoError(t, err)

	q, err = c.GoBack(ctx)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "q2", q.ID)
	assert.Equal(t, "q2", c.Session().CurrentQuestion)
}

func TestGoBackSkipsIneligibleQuestions(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	_, err := c.Advance(ctx, "q1", model.ResponsePayload{Value: "Consumer"})
	require.NoError(t, err)
	_, err = c.Jump(ctx, "q10")
	require.NoError(t, err)

	// q9 is retailer-only, so a consumer going back from q10 lands on q8.
	q, err := c.GoBack(ctx)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "q8", q.ID)
}

func TestJump(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	q, err := c.Jump(ctx, "q12")
	require.NoError(t, err)
	assert.Equal(t, "q12", q.ID)
	assert.Equal(t, "advocacy", c.Session().CurrentSection)

	_, err = c.Jump(ctx, "q99")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestCanSubmit(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	assert.False(t, c.CanSubmit())

	for _, id := range []string{"q1", "q2", "q3", "q5", "q7", "q10", "q12"} {
		_, err := c.Advance(ctx, id, requiredAnswers[id])
		require.NoError(t, err)
	}
	assert.False(t, c.CanSubmit(), "q14 still unanswered")

	_, err := c.Advance(ctx, "q14", requiredAnswers["q14"])
	require.NoError(t, err)
	assert.True(t, c.CanSubmit())
}

func TestCompleteRejectsUnansweredRequired(t *testing.T) {
	c := newTestController(t)

	_, err := c.Complete(context.Background())
	assert.ErrorIs(t, err, ErrRequiredUnanswered)
	assert.Equal(t, model.SessionInProgress, c.Session().Status)
}

func TestCompleteGeneratesReportOnce(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	answerAllRequired(t, c)

	report, err := c.Complete(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, c.Session().ID, report.SessionID)
	assert.Equal(t, model.SessionCompleted, c.Session().Status)
	require.NotNil(t, c.Session().CompletedAt)

	// Completing again returns the stored report, timestamp and all.
	again, err := c.Complete(ctx)
	require.NoError(t, err)
	assert.True(t, report.GeneratedAt.Equal(again.GeneratedAt))
	assert.Equal(t, report.Summary, again.Summary)
}

func TestCompletedSessionRejectsMutation(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	answerAllRequired(t, c)
	_, err := c.Complete(ctx)
	require.NoError(t, err)

	_, err = c.Advance(ctx, "q1", model.ResponsePayload{Value: "Retailer"})
	assert.ErrorIs(t, err, ErrSessionCompleted)
	_, err = c.GoBack(ctx)
	assert.ErrorIs(t, err, ErrSessionCompleted)
	_, err = c.Jump(ctx, "q2")
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestLoadSessionRehydrates(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	svc := NewSessionService(cat, repository.NewMemoryStore(), nil, nil)
	ctx := context.Background()

	c, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = c.Advance(ctx, "q1", model.ResponsePayload{Value: "Retailer"})
	require.NoError(t, err)
	_, err = c.Advance(ctx, "q2", model.ResponsePayload{Text: "LTA"})
	require.NoError(t, err)

	reloaded, err := svc.LoadSession(ctx, c.Session().ID)
	require.NoError(t, err)
	assert.Equal(t, c.Session().CurrentQuestion, reloaded.Session().CurrentQuestion)
	assert.Equal(t, model.StakeholderRetailer, reloaded.Session().StakeholderType)
	assert.Equal(t, c.Progress(), reloaded.Progress())

	_, err = svc.LoadSession(ctx, "s_missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClearSessionCascades(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	svc := NewSessionService(cat, store, nil, nil)
	ctx := context.Background()

	c, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = c.Advance(ctx, "q1", model.ResponsePayload{Value: "Consumer"})
	require.NoError(t, err)
	sessionID := c.Session().ID

	require.NoError(t, svc.Clear(ctx, sessionID))

	_, err = store.Sessions.Get(ctx, sessionID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	responses, err := store.Responses.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, responses)
}

type capturingBroadcaster struct {
	events []string
}

func (b *capturingBroadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	b.events = append(b.events, msgType)
}

func TestBroadcasterReceivesSessionEvents(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	svc := NewSessionService(cat, repository.NewMemoryStore(), nil, nil)
	broadcaster := &capturingBroadcaster{}
	svc.SetBroadcaster(broadcaster)
	ctx := context.Background()

	c, err := svc.StartSession(ctx)
	require.NoError(t, err)
	answerAllRequired(t, c)
	_, err = c.Complete(ctx)
	require.NoError(t, err)

	assert.Contains(t, broadcaster.events, "progress_update")
	assert.Contains(t, broadcaster.events, "metrics_update")
	assert.Equal(t, "session_completed", broadcaster.events[len(broadcaster.events)-1])
}

func TestNormalizeStakeholder(t *testing.T) {
	assert.Equal(t, model.StakeholderConsumer, NormalizeStakeholder("Consumer"))
	assert.Equal(t, model.StakeholderRetailer, NormalizeStakeholder("  Retailer "))
	assert.Equal(t, model.StakeholderType(""), NormalizeStakeholder(""))
}
