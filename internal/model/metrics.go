package model

import "time"

// Metric types persisted through the analytics store
const (
	MetricTypeSnapshot    = "metrics_snapshot"
	MetricTypeFinalReport = "final_report"
)

// Funnel stages, in funnel order. Stage scores live in [0,10].
const (
	StageAwareness     = "awareness"
	StageInterest      = "interest"
	StageConsideration = "consideration"
	StageAction        = "action"
	StageAdvocacy      = "advocacy"
)

// FunnelStages is the canonical stage ordering for reports and visualizations
var FunnelStages = []string{StageAwareness, StageInterest, StageConsideration, StageAction, StageAdvocacy}

const maxInsights = 5

// Insight is a notable observation extracted from a single response
type Insight struct {
	QuestionID string    `json:"questionId" bson:"questionId"`
	Text       string    `json:"text" bson:"text"`
	ObservedAt time.Time `json:"observedAt" bson:"observedAt"`
}

// ResponsePattern is a lightweight per-stakeholder accumulation record
type ResponsePattern struct {
	QuestionID string `json:"questionId" bson:"questionId"`
	Kind       string `json:"kind" bson:"kind"`
	Value      string `json:"value" bson:"value"`
}

// MetricRecord is one entry of the snapshot, keyed by funnel stage name,
// "section_<id>" or "stakeholder_<type>".
type MetricRecord struct {
	Score         float64           `json:"score" bson:"score"`                 // funnel stages: running max
	ResponseCount int               `json:"responseCount" bson:"responseCount"` // sections, stakeholders
	CompletionPct float64           `json:"completionPct" bson:"completionPct"` // sections
	Insights      []Insight         `json:"insights,omitempty" bson:"insights,omitempty"`
	Patterns      []ResponsePattern `json:"patterns,omitempty" bson:"patterns,omitempty"`
}

// AddInsight appends an insight, evicting the oldest once the cap is reached
func (r *MetricRecord) AddInsight(in Insight) {
	r.Insights = append(r.Insights, in)
	if len(r.Insights) > maxInsights {
		r.Insights = r.Insights[len(r.Insights)-maxInsights:]
	}
}

// MetricsSnapshot is the whole-session metrics state. It is recomputed
// incrementally per response and always persisted as a whole.
type MetricsSnapshot struct {
	SessionID string                   `json:"sessionId" bson:"sessionId"`
	Metrics   map[string]*MetricRecord `json:"metrics" bson:"metrics"`
	UpdatedAt time.Time                `json:"updatedAt" bson:"updatedAt"`
}

// NewMetricsSnapshot creates an empty snapshot for a session
func NewMetricsSnapshot(sessionID string) *MetricsSnapshot {
	return &MetricsSnapshot{
		SessionID: sessionID,
		Metrics:   make(map[string]*MetricRecord),
	}
}

// Record returns the metric record for key, creating it if absent
func (s *MetricsSnapshot) Record(key string) *MetricRecord {
	if s.Metrics == nil {
		s.Metrics = make(map[string]*MetricRecord)
	}
	rec, ok := s.Metrics[key]
	if !ok {
		rec = &MetricRecord{}
		s.Metrics[key] = rec
	}
	return rec
}

// SectionMetricKey builds the snapshot key for a section
func SectionMetricKey(sectionID string) string { return "section_" + sectionID }

// StakeholderMetricKey builds the snapshot key for a stakeholder type
func StakeholderMetricKey(st StakeholderType) string { return "stakeholder_" + string(st) }

// AnalyticsRecord is the stored analytics document, upserted by
// (sessionId, metricType).
type AnalyticsRecord struct {
	ID         string      `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID  string      `json:"sessionId" bson:"sessionId"`
	MetricType string      `json:"metricType" bson:"metricType"`
	Data       interface{} `json:"data" bson:"data"`
	UpdatedAt  time.Time   `json:"updatedAt" bson:"updatedAt"`
}
