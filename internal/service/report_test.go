package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingBbwe/lta/internal/model"
)

func healthyResponses() Responses {
	return Responses{
		"q2":  {Text: words(6)},        // awareness representative, scores 10
		"q5":  {Value: "Extremely"},    // engagement representative, scores 10
		"q12": {Value: "9"},            // conversion representative, scores 9
		"q14": {Value: "New flavours"}, // strategic representative, scores 10
	}
}

func TestGenerateFinalReportHealthy(t *testing.T) {
	engine, _ := newScoringFixture(t)

	report := engine.GenerateFinalReport(context.Background(), healthyResponses())
	require.NotNil(t, report)
	assert.Equal(t, "s_scoring", report.SessionID)
	assert.False(t, report.GeneratedAt.IsZero())

	assert.Equal(t, map[string]float64{
		model.CategoryAwareness:  10,
		model.CategoryEngagement: 10,
		model.CategoryConversion: 9,
		model.CategoryStrategic:  10,
	}, report.CategoryScores)

	// Overall is the rounded mean of awareness and conversion: (10+9)/2 -> 10.
	assert.Equal(t, 10, report.Summary.OverallScore)
	assert.Equal(t, model.CategoryAwareness, report.Summary.PrimaryStrength, "ties break toward the earlier category")
	assert.Equal(t, model.CategoryConversion, report.Summary.PrimaryOpportunity)
	assert.Equal(t, model.NPSPromoter, report.NPS)

	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, "Overall", report.Recommendations[0].Area)
}

func TestGenerateFinalReportMissingConversion(t *testing.T) {
	engine, _ := newScoringFixture(t)

	responses := healthyResponses()
	delete(responses, "q12")

	report := engine.GenerateFinalReport(context.Background(), responses)
	assert.Equal(t, 0.0, report.CategoryScores[model.CategoryConversion])
	assert.Equal(t, model.NPSUnknown, report.NPS)
	assert.Equal(t, 5, report.Summary.OverallScore)
	assert.Equal(t, model.CategoryConversion, report.Summary.PrimaryOpportunity)

	areas := recommendationAreas(report)
	assert.Contains(t, areas, "Advocacy")
	assert.NotContains(t, areas, "Awareness")
}

func TestGenerateFinalReportAllWeak(t *testing.T) {
	engine, _ := newScoringFixture(t)

	report := engine.GenerateFinalReport(context.Background(), Responses{
		"q2":  {Text: "tea"},           // 1 word, scores 2
		"q5":  {Value: "Not at all"},   // scores 0
		"q12": {Value: "2"},            // detractor
		"q14": {Value: "Lower prices"}, // scores 5
	})

	areas := recommendationAreas(report)
	assert.ElementsMatch(t, []string{"Awareness", "Engagement", "Advocacy"}, areas)
	assert.Equal(t, model.NPSDetractor, report.NPS)
	assert.Equal(t, 2, report.Summary.OverallScore)
}

func TestNPSCategoryBuckets(t *testing.T) {
	engine, _ := newScoringFixture(t)

	tests := []struct {
		name      string
		responses Responses
		want      model.NPSCategory
	}{
		{"promoter at nine", Responses{"q12": {Value: "9"}}, model.NPSPromoter},
		{"promoter at ten", Responses{"q12": {Value: "10"}}, model.NPSPromoter},
		{"passive at seven", Responses{"q12": {Value: "7"}}, model.NPSPassive},
		{"detractor at six", Responses{"q12": {Value: "6"}}, model.NPSDetractor},
		{"detractor at zero", Responses{"q12": {Value: "0"}}, model.NPSDetractor},
		{"unknown when unanswered", Responses{}, model.NPSUnknown},
		{"unknown when non-numeric", Responses{"q12": {Value: "very likely"}}, model.NPSUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.npsCategory(tt.responses))
		})
	}
}

func TestGenerateFinalReportDegradesToDefaults(t *testing.T) {
	engine, _ := newScoringFixture(t)

	// No responses and no snapshot: everything zeroes out, nothing errors.
	report := engine.GenerateFinalReport(context.Background(), Responses{})
	require.NotNil(t, report)

	for _, category := range []string{model.CategoryAwareness, model.CategoryEngagement, model.CategoryConversion, model.CategoryStrategic} {
		assert.Equal(t, 0.0, report.CategoryScores[category])
	}
	assert.Equal(t, 0, report.Summary.OverallScore)
	assert.Equal(t, model.CategoryAwareness, report.Summary.PrimaryStrength)
	assert.Equal(t, model.CategoryAwareness, report.Summary.PrimaryOpportunity)
	assert.Equal(t, model.NPSUnknown, report.NPS)

	require.Len(t, report.Visualization.Funnel, len(model.FunnelStages))
	for _, point := range report.Visualization.Funnel {
		assert.Equal(t, 0.0, point.Score)
	}
	assert.Empty(t, report.Visualization.Sentiment)
	require.Len(t, report.Visualization.Comparative, 4)
}

func TestVisualizationReflectsSnapshot(t *testing.T) {
	engine, _ := newScoringFixture(t)
	ctx := context.Background()
	session := &model.Session{ID: "s_scoring"}
	q5, _ := engine.catalog.Question("q5")

	require.NoError(t, engine.RecordResponse(ctx, session, q5, model.ResponsePayload{Value: "Extremely"}))

	report := engine.GenerateFinalReport(ctx, Responses{"q5": {Value: "Extremely"}})

	var interest *model.FunnelPoint
	for i := range report.Visualization.Funnel {
		if report.Visualization.Funnel[i].Stage == "interest" {
			interest = &report.Visualization.Funnel[i]
		}
	}
	require.NotNil(t, interest)
	assert.Equal(t, 10.0, interest.Score)

	require.Len(t, report.Visualization.Sentiment, 1)
	assert.Equal(t, "interest", report.Visualization.Sentiment[0].SectionID)
}

func recommendationAreas(report *model.FinalReport) []string {
	areas := make([]string, 0, len(report.Recommendations))
	for _, rec := range report.Recommendations {
		areas = append(areas, rec.Area)
	}
	return areas
}
