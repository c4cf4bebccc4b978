package service

import (
	"github.com/KingBbwe/lta/internal/catalog"
	"github.com/KingBbwe/lta/internal/model"
)

// Responses is the accumulated answer set, keyed by question id
type Responses map[string]model.ResponsePayload

// SkipLogicEngine resolves the next question from the current position, the
// accumulated responses and the resolved stakeholder type. It holds no
// mutable state: for fixed inputs NextQuestion always returns the same
// result.
type SkipLogicEngine struct {
	catalog *catalog.Catalog
}

// NewSkipLogicEngine creates an engine over a loaded catalog
func NewSkipLogicEngine(c *catalog.Catalog) *SkipLogicEngine {
	return &SkipLogicEngine{catalog: c}
}

// NextQuestion computes the question that follows currentID. It returns nil
// when the catalog is exhausted, which signals end-of-flow to the caller.
//
// Resolution order: a skip rule keyed by (currentID, primary answer value)
// whose condition holds wins; otherwise the next question in catalog
// declaration order, filtered through ShouldSkip.
func (e *SkipLogicEngine) NextQuestion(currentID string, responses Responses, st model.StakeholderType) *model.Question {
	if payload, answered := responses[currentID]; answered {
		key := model.RuleKey{QuestionID: currentID, TriggerValue: payload.Primary()}
		if rule, ok := e.catalog.Rule(key); ok && e.ConditionMet(rule.Condition, responses) {
			switch rule.Action {
			case model.ActionJumpTo:
				// Jump targets bypass the eligibility filter: the catalog
				// author asserts the target is always shown.
				q, _ := e.catalog.Question(rule.Target)
				return q
			case model.ActionContinueAfter:
				if from, ok := e.catalog.Index(rule.Target); ok {
					return e.resolveFrom(from, responses, st)
				}
			case model.ActionRouteToRange:
				return e.routeToRange(rule, responses, st)
			}
		}
	}

	idx, ok := e.catalog.Index(currentID)
	if !ok {
		return nil
	}
	return e.resolveFrom(idx+1, responses, st)
}

// routeToRange returns the first eligible question in [Target, RangeEnd];
// when none is eligible it falls through to the question after RangeEnd.
// Both scans are plain bounded loops over the catalog, so pathological rule
// sets terminate at end-of-flow instead of looping.
func (e *SkipLogicEngine) routeToRange(rule *model.SkipRule, responses Responses, st model.StakeholderType) *model.Question {
	start, ok := e.catalog.Index(rule.Target)
	if !ok {
		return nil
	}
	end, ok := e.catalog.Index(rule.RangeEnd)
	if !ok {
		return nil
	}
	for i := start; i <= end && i < e.catalog.Len(); i++ {
		q := e.catalog.At(i)
		if !e.ShouldSkip(q, responses, st) {
			return q
		}
	}
	return e.resolveFrom(end+1, responses, st)
}

// resolveFrom walks forward from position start and returns the first
// eligible question, or nil when the catalog is exhausted.
func (e *SkipLogicEngine) resolveFrom(start int, responses Responses, st model.StakeholderType) *model.Question {
	for i := start; i < e.catalog.Len(); i++ {
		q := e.catalog.At(i)
		if !e.ShouldSkip(q, responses, st) {
			return q
		}
	}
	return nil
}

// ShouldSkip reports whether a question is ineligible for the session:
// either its stakeholder restriction excludes the current type, or a rule
// sourced at the question has a satisfied condition, which marks the
// question itself skippable.
func (e *SkipLogicEngine) ShouldSkip(q *model.Question, responses Responses, st model.StakeholderType) bool {
	if q.RestrictedTo(st) {
		return true
	}
	for _, rule := range e.catalog.RulesFrom(q.ID) {
		if rule.Condition != nil && e.ConditionMet(rule.Condition, responses) {
			return true
		}
	}
	return false
}

// ConditionMet evaluates a rule condition against the accumulated responses.
// A nil condition always holds. A missing referenced response counts as
// not-equal for equals checks and as empty for the emptiness checks.
func (e *SkipLogicEngine) ConditionMet(cond *model.Condition, responses Responses) bool {
	if cond == nil {
		return true
	}
	payload, answered := responses[cond.QuestionID]
	switch cond.Kind {
	case model.CondEquals:
		return answered && payload.Primary() == cond.Value
	case model.CondEmpty:
		return !answered || payload.IsEmpty()
	case model.CondNotEmpty:
		return answered && !payload.IsEmpty()
	}
	return false
}
