package model

// QuestionType defines the response control a question expects
type QuestionType string

const (
	QuestionTypeSingleSelect   QuestionType = "SINGLE_SELECT"
	QuestionTypeMultipleSelect QuestionType = "MULTIPLE_SELECT"
	QuestionTypeMatrix         QuestionType = "MATRIX"
	QuestionTypeScale          QuestionType = "SCALE"
	QuestionTypeRanking        QuestionType = "RANKING"
	QuestionTypeFreeText       QuestionType = "FREE_TEXT"
)

// StakeholderType tags the respondent category resolved from the screening question
type StakeholderType string

const (
	StakeholderConsumer    StakeholderType = "consumer"
	StakeholderRetailer    StakeholderType = "retailer"
	StakeholderDistributor StakeholderType = "distributor"
)

// ScoringKind selects how a response to a question maps to a 0-10 stage score
type ScoringKind string

const (
	ScoringRecall      ScoringKind = "recall"      // free-text recall, word-count based
	ScoringCategorical ScoringKind = "categorical" // fixed score per selected option
	ScoringSelection   ScoringKind = "selection"   // any selection = 10, none = 0
	ScoringScale       ScoringKind = "scale"       // numeric 0-10, linear
)

// ScoringRule is per-question scoring metadata from the catalog
type ScoringRule struct {
	Kind           ScoringKind        `json:"kind" bson:"kind"`
	CategoryScores map[string]float64 `json:"categoryScores,omitempty" bson:"categoryScores,omitempty"`
}

// Question is an immutable catalog entry
type Question struct {
	ID        string       `json:"id" bson:"id"` // e.g. "q1", "q54"
	SectionID string       `json:"sectionId" bson:"sectionId"`
	Type      QuestionType `json:"type" bson:"type"`
	Prompt    string       `json:"prompt" bson:"prompt"`
	Options   []string     `json:"options,omitempty" bson:"options,omitempty"`
	Rows      []string     `json:"rows,omitempty" bson:"rows,omitempty"`       // MATRIX only
	Columns   []string     `json:"columns,omitempty" bson:"columns,omitempty"` // MATRIX only
	Required  bool         `json:"required" bson:"required"`
	// Empty means the question is shown to every stakeholder type.
	StakeholderTypes []StakeholderType `json:"stakeholderTypes,omitempty" bson:"stakeholderTypes,omitempty"`
	AllowSpecify     bool              `json:"allowSpecify,omitempty" bson:"allowSpecify,omitempty"`
	Scoring          *ScoringRule      `json:"scoring,omitempty" bson:"scoring,omitempty"`
}

// RestrictedTo reports whether the question is hidden from the given stakeholder type.
// Questions with no restriction are visible to everyone, including sessions whose
// stakeholder type is not yet resolved.
func (q *Question) RestrictedTo(st StakeholderType) bool {
	if len(q.StakeholderTypes) == 0 {
		return false
	}
	if st == "" {
		return true
	}
	for _, allowed := range q.StakeholderTypes {
		if allowed == st {
			return false
		}
	}
	return true
}

// Section groups questions and maps them to a funnel stage
type Section struct {
	ID          string   `json:"id" bson:"id"`
	Title       string   `json:"title" bson:"title"`
	FunnelStage string   `json:"funnelStage,omitempty" bson:"funnelStage,omitempty"`
	QuestionIDs []string `json:"questionIds,omitempty" bson:"questionIds,omitempty"` // derived at load
}
