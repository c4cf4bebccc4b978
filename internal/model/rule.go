package model

// ConditionKind is a predicate over a prior response
type ConditionKind string

const (
	CondEquals   ConditionKind = "equals"    // primary value == Value; missing response = false
	CondEmpty    ConditionKind = "empty"     // answer set empty; missing response = true
	CondNotEmpty ConditionKind = "not_empty" // answer set non-empty; missing response = false
)

// Condition references a prior response by question id
type Condition struct {
	QuestionID string        `json:"questionId" bson:"questionId"`
	Kind       ConditionKind `json:"kind" bson:"kind"`
	Value      string        `json:"value,omitempty" bson:"value,omitempty"` // equals only
}

// RuleAction is the branching action variant
type RuleAction string

const (
	ActionJumpTo        RuleAction = "jump_to"        // go to Target directly
	ActionContinueAfter RuleAction = "continue_after" // resolve sequentially from Target
	ActionRouteToRange  RuleAction = "route_to_range" // first eligible in [Target, RangeEnd]
)

// RuleKey is the composite lookup key for skip rules. An explicit pair type
// instead of a concatenated string, so trigger values containing separators
// cannot collide.
type RuleKey struct {
	QuestionID   string
	TriggerValue string
}

// SkipRule is a conditional branching instruction. It fires when the response
// to SourceQuestion has primary value TriggerValue and Condition (if any)
// evaluates true against prior responses.
type SkipRule struct {
	SourceQuestion string     `json:"sourceQuestion" bson:"sourceQuestion"`
	TriggerValue   string     `json:"triggerValue" bson:"triggerValue"`
	Action         RuleAction `json:"action" bson:"action"`
	Target         string     `json:"target" bson:"target"`
	RangeEnd       string     `json:"rangeEnd,omitempty" bson:"rangeEnd,omitempty"` // route_to_range only
	Condition      *Condition `json:"condition,omitempty" bson:"condition,omitempty"`
}

// Key returns the composite lookup key for this rule
func (r *SkipRule) Key() RuleKey {
	return RuleKey{QuestionID: r.SourceQuestion, TriggerValue: r.TriggerValue}
}
