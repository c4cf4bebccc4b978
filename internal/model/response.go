package model

import (
	"strconv"
	"strings"
	"time"
)

// ResponsePayload is the type-tagged answer data. Exactly one field group is
// populated, matching the question type.
type ResponsePayload struct {
	Value   string            `json:"value,omitempty" bson:"value,omitempty"`     // SINGLE_SELECT, SCALE
	Values  []string          `json:"values,omitempty" bson:"values,omitempty"`   // MULTIPLE_SELECT
	Matrix  map[string]string `json:"matrix,omitempty" bson:"matrix,omitempty"`   // MATRIX: row -> column
	Ranking []string          `json:"ranking,omitempty" bson:"ranking,omitempty"` // RANKING
	Text    string            `json:"text,omitempty" bson:"text,omitempty"`       // FREE_TEXT
	Specify string            `json:"specify,omitempty" bson:"specify,omitempty"` // "other, please specify"
}

// Primary returns the single value used for skip-rule trigger matching and
// equals conditions: the selected value, the first multi-selection, or the text.
func (p ResponsePayload) Primary() string {
	switch {
	case p.Value != "":
		return p.Value
	case len(p.Values) > 0:
		return p.Values[0]
	case len(p.Ranking) > 0:
		return p.Ranking[0]
	case p.Text != "":
		return p.Text
	}
	return ""
}

// IsEmpty reports whether the payload carries no answer at all
func (p ResponsePayload) IsEmpty() bool {
	return p.Value == "" && len(p.Values) == 0 && len(p.Matrix) == 0 &&
		len(p.Ranking) == 0 && strings.TrimSpace(p.Text) == ""
}

// Numeric parses the payload as a rating value (SCALE questions)
func (p ResponsePayload) Numeric() (float64, bool) {
	v := p.Value
	if v == "" {
		v = strings.TrimSpace(p.Text)
	}
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// WordCount counts whitespace-separated words in the free-text answer
func (p ResponsePayload) WordCount() int {
	return len(strings.Fields(p.Text))
}

// Response is one answer record, keyed by (sessionId, questionId).
// Saves overwrite; there is never more than one record per key.
type Response struct {
	ID         string          `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID  string          `json:"sessionId" bson:"sessionId"`
	QuestionID string          `json:"questionId" bson:"questionId"`
	Payload    ResponsePayload `json:"payload" bson:"payload"`
	AnsweredAt time.Time       `json:"answeredAt" bson:"answeredAt"`
}
