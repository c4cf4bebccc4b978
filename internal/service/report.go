package service

import (
	"context"
	"math"
	"time"

	"github.com/KingBbwe/lta/internal/model"
)

// Recommendation thresholds. Conversion uses the NPS scale, hence the
// higher bar.
const (
	awarenessThreshold  = 5.0
	engagementThreshold = 5.0
	conversionThreshold = 7.0
)

// GenerateFinalReport derives the completion report from the accumulated
// responses and the metrics snapshot. Missing upstream data degrades to
// zeroed scores and a generic recommendation; this never fails.
func (s *ScoringEngine) GenerateFinalReport(ctx context.Context, responses Responses) *model.FinalReport {
	scores := s.categoryScores(responses)

	report := &model.FinalReport{
		SessionID:       s.sessionID,
		CategoryScores:  scores,
		NPS:             s.npsCategory(responses),
		Summary:         s.executiveSummary(scores),
		Recommendations: s.recommendations(scores),
		Visualization:   s.visualization(ctx, scores),
		GeneratedAt:     time.Now(),
	}
	return report
}

// categoryScores scores the designated representative question of each
// report category; an unanswered representative scores 0.
func (s *ScoringEngine) categoryScores(responses Responses) map[string]float64 {
	scores := map[string]float64{
		model.CategoryAwareness:  0,
		model.CategoryEngagement: 0,
		model.CategoryConversion: 0,
		model.CategoryStrategic:  0,
	}
	for category := range scores {
		repID, ok := s.catalog.Scoring.Representatives[category]
		if !ok {
			continue
		}
		q, ok := s.catalog.Question(repID)
		if !ok {
			continue
		}
		if payload, answered := responses[repID]; answered {
			scores[category] = s.ScoreResponse(q, payload)
		}
	}
	return scores
}

func (s *ScoringEngine) npsCategory(responses Responses) model.NPSCategory {
	npsID := s.catalog.Scoring.NPSQuestion
	payload, answered := responses[npsID]
	if npsID == "" || !answered {
		return model.NPSUnknown
	}
	n, ok := payload.Numeric()
	if !ok {
		return model.NPSUnknown
	}
	switch {
	case n >= 9:
		return model.NPSPromoter
	case n >= 7:
		return model.NPSPassive
	default:
		return model.NPSDetractor
	}
}

// executiveSummary computes the overall score as the rounded average of the
// awareness and conversion representatives, and picks strength/opportunity
// by max/min over the summary categories. Ties break toward the category
// that enumerates first.
func (s *ScoringEngine) executiveSummary(scores map[string]float64) model.ExecutiveSummary {
	overall := int(math.Round((scores[model.CategoryAwareness] + scores[model.CategoryConversion]) / 2))

	strength := model.SummaryCategories[0]
	opportunity := model.SummaryCategories[0]
	for _, category := range model.SummaryCategories[1:] {
		if scores[category] > scores[strength] {
			strength = category
		}
		if scores[category] < scores[opportunity] {
			opportunity = category
		}
	}

	return model.ExecutiveSummary{
		OverallScore:       overall,
		PrimaryStrength:    strength,
		PrimaryOpportunity: opportunity,
	}
}

func (s *ScoringEngine) recommendations(scores map[string]float64) []model.Recommendation {
	recs := []model.Recommendation{}
	if scores[model.CategoryAwareness] < awarenessThreshold {
		recs = append(recs, model.Recommendation{
			Area:     "Awareness",
			Text:     "Invest in top-of-funnel visibility: unaided brand recall is weak.",
			Priority: "high",
			Impact:   "Lifts every downstream funnel stage.",
		})
	}
	if scores[model.CategoryEngagement] < engagementThreshold {
		recs = append(recs, model.Recommendation{
			Area:     "Engagement",
			Text:     "Deepen product interest with trial offers and sampling.",
			Priority: "medium",
			Impact:   "Converts passive awareness into active consideration.",
		})
	}
	if scores[model.CategoryConversion] < conversionThreshold {
		recs = append(recs, model.Recommendation{
			Area:     "Advocacy",
			Text:     "Close the recommendation gap: follow up with detractors and passives.",
			Priority: "high",
			Impact:   "Raises NPS and repeat purchase intent.",
		})
	}
	if len(recs) == 0 {
		recs = append(recs, model.Recommendation{
			Area:     "Overall",
			Text:     "All categories are healthy; continue optimizing the current strategy.",
			Priority: "low",
			Impact:   "Maintains funnel performance.",
		})
	}
	return recs
}

// visualization assembles the pass-through chart payloads from the metrics
// snapshot. A missing snapshot yields zeroed stages and empty sections.
func (s *ScoringEngine) visualization(ctx context.Context, scores map[string]float64) model.Visualization {
	snap := s.Snapshot(ctx)

	funnel := make([]model.FunnelPoint, 0, len(model.FunnelStages))
	for _, stage := range model.FunnelStages {
		point := model.FunnelPoint{Stage: stage}
		if rec, ok := snap.Metrics[stage]; ok {
			point.Score = rec.Score
		}
		funnel = append(funnel, point)
	}

	sentiment := []model.SentimentView{}
	for _, sec := range s.catalog.Sections() {
		rec, ok := snap.Metrics[model.SectionMetricKey(sec.ID)]
		if !ok {
			continue
		}
		sentiment = append(sentiment, model.SentimentView{
			SectionID:     sec.ID,
			ResponseCount: rec.ResponseCount,
			CompletionPct: rec.CompletionPct,
		})
	}

	comparative := []model.ComparativeView{}
	for _, category := range []string{model.CategoryAwareness, model.CategoryEngagement, model.CategoryConversion, model.CategoryStrategic} {
		comparative = append(comparative, model.ComparativeView{
			Category: category,
			Score:    scores[category],
		})
	}

	return model.Visualization{
		Funnel:      funnel,
		Sentiment:   sentiment,
		Comparative: comparative,
	}
}
