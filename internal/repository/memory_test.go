package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingBbwe/lta/internal/model"
)

func seedSession(t *testing.T, store *Store, id string) {
	t.Helper()
	require.NoError(t, store.Sessions.Create(context.Background(), &model.Session{
		ID:              id,
		Status:          model.SessionInProgress,
		CurrentQuestion: "q1",
		CreatedAt:       time.Now(),
	}))
}

func TestMemorySessionLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedSession(t, store, "s_1")

	got, err := store.Sessions.Get(ctx, "s_1")
	require.NoError(t, err)
	assert.Equal(t, "q1", got.CurrentQuestion)

	// Reads return copies; mutating one must not leak into the store.
	got.CurrentQuestion = "mutated"
	again, err := store.Sessions.Get(ctx, "s_1")
	require.NoError(t, err)
	assert.Equal(t, "q1", again.CurrentQuestion)

	next := "q2"
	updated, err := store.Sessions.Update(ctx, "s_1", &model.SessionUpdate{CurrentQuestion: &next})
	require.NoError(t, err)
	assert.Equal(t, "q2", updated.CurrentQuestion)
	assert.False(t, updated.LastModifiedAt.IsZero())

	_, err = store.Sessions.Get(ctx, "s_missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Sessions.Update(ctx, "s_missing", &model.SessionUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Sessions.Delete(ctx, "s_missing"), ErrNotFound)
}

func TestMemoryListIncomplete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedSession(t, store, "s_open")
	seedSession(t, store, "s_done")

	status := model.SessionCompleted
	_, err := store.Sessions.Update(ctx, "s_done", &model.SessionUpdate{Status: &status})
	require.NoError(t, err)

	open, err := store.Sessions.ListIncomplete(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "s_open", open[0].ID)
}

func TestMemoryResponseUpsert(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	save := func(value string) {
		require.NoError(t, store.Responses.Save(ctx, &model.Response{
			SessionID:  "s_1",
			QuestionID: "q1",
			Payload:    model.ResponsePayload{Value: value},
			AnsweredAt: time.Now(),
		}))
	}
	save("first")
	save("second")

	got, err := store.Responses.Get(ctx, "s_1", "q1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Payload.Value, "saves overwrite by (session, question)")

	all, err := store.Responses.ListBySession(ctx, "s_1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = store.Responses.Get(ctx, "s_1", "q2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAnalyticsRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := model.NewMetricsSnapshot("s_1")
	snap.Record("interest").Score = 7.5
	require.NoError(t, store.Analytics.Save(ctx, "s_1", model.MetricTypeSnapshot, snap))

	var loaded model.MetricsSnapshot
	require.NoError(t, store.Analytics.Get(ctx, "s_1", model.MetricTypeSnapshot, &loaded))
	require.NotNil(t, loaded.Metrics["interest"])
	assert.Equal(t, 7.5, loaded.Metrics["interest"].Score)

	assert.ErrorIs(t, store.Analytics.Get(ctx, "s_1", "missing_type", &loaded), ErrNotFound)

	records, err := store.Analytics.ListBySession(ctx, "s_1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.MetricTypeSnapshot, records[0].MetricType)
}

func TestExportAndClearSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedSession(t, store, "s_1")
	require.NoError(t, store.Responses.Save(ctx, &model.Response{SessionID: "s_1", QuestionID: "q1", Payload: model.ResponsePayload{Value: "a"}}))
	require.NoError(t, store.Analytics.Save(ctx, "s_1", model.MetricTypeSnapshot, model.NewMetricsSnapshot("s_1")))

	bundle, err := store.ExportSession(ctx, "s_1")
	require.NoError(t, err)
	assert.Equal(t, "s_1", bundle.Session.ID)
	assert.Len(t, bundle.Responses, 1)
	assert.Len(t, bundle.Analytics, 1)

	_, err = store.ExportSession(ctx, "s_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.ClearSession(ctx, "s_1"))
	_, err = store.Sessions.Get(ctx, "s_1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing again is a no-op, not an error.
	assert.NoError(t, store.ClearSession(ctx, "s_1"))
}
