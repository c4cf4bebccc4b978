package model

import "time"

// Report categories, in enumeration order. The order is load-bearing: summary
// strength/opportunity ties break toward the earlier category.
const (
	CategoryAwareness  = "awareness"
	CategoryEngagement = "engagement"
	CategoryConversion = "conversion"
	CategoryStrategic  = "strategic"
)

// SummaryCategories are the categories considered for strength/opportunity
var SummaryCategories = []string{CategoryAwareness, CategoryEngagement, CategoryConversion}

// NPSCategory buckets a 0-10 rating response
type NPSCategory string

const (
	NPSPromoter  NPSCategory = "promoter"  // 9-10
	NPSPassive   NPSCategory = "passive"   // 7-8
	NPSDetractor NPSCategory = "detractor" // 0-6
	NPSUnknown   NPSCategory = "unknown"   // no rating recorded
)

// Recommendation is one rule-derived action item
type Recommendation struct {
	Area     string `json:"area" bson:"area"`
	Text     string `json:"text" bson:"text"`
	Priority string `json:"priority" bson:"priority"` // "high", "medium", "low"
	Impact   string `json:"impact" bson:"impact"`
}

// ExecutiveSummary is the top-line report block
type ExecutiveSummary struct {
	OverallScore       int    `json:"overallScore" bson:"overallScore"`
	PrimaryStrength    string `json:"primaryStrength" bson:"primaryStrength"`
	PrimaryOpportunity string `json:"primaryOpportunity" bson:"primaryOpportunity"`
}

// FunnelPoint is one stage of the funnel visualization
type FunnelPoint struct {
	Stage string  `json:"stage" bson:"stage"`
	Score float64 `json:"score" bson:"score"`
}

// SentimentView summarizes per-section completion for the sentiment chart
type SentimentView struct {
	SectionID     string  `json:"sectionId" bson:"sectionId"`
	ResponseCount int     `json:"responseCount" bson:"responseCount"`
	CompletionPct float64 `json:"completionPct" bson:"completionPct"`
}

// ComparativeView pairs category scores for the comparison chart
type ComparativeView struct {
	Category string  `json:"category" bson:"category"`
	Score    float64 `json:"score" bson:"score"`
}

// Visualization is pass-through structured data for the report UI
type Visualization struct {
	Funnel      []FunnelPoint     `json:"funnel" bson:"funnel"`
	Sentiment   []SentimentView   `json:"sentiment" bson:"sentiment"`
	Comparative []ComparativeView `json:"comparative" bson:"comparative"`
}

// FinalReport is generated exactly once, at session completion
type FinalReport struct {
	SessionID       string             `json:"sessionId" bson:"sessionId"`
	CategoryScores  map[string]float64 `json:"categoryScores" bson:"categoryScores"`
	NPS             NPSCategory        `json:"nps" bson:"nps"`
	Summary         ExecutiveSummary   `json:"summary" bson:"summary"`
	Recommendations []Recommendation   `json:"recommendations" bson:"recommendations"`
	Visualization   Visualization      `json:"visualization" bson:"visualization"`
	GeneratedAt     time.Time          `json:"generatedAt" bson:"generatedAt"`
}
