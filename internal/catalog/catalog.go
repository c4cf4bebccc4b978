// Package catalog holds the static question catalog: ordered questions,
// sections, skip rules and scoring configuration. A Catalog is immutable
// after load; everything downstream treats it as read-only.
package catalog

import (
	"fmt"

	"github.com/KingBbwe/lta/internal/model"
)

// ScoringConfig names the questions the scoring engine keys on
type ScoringConfig struct {
	StakeholderQuestion string            `json:"stakeholderQuestion"`
	NPSQuestion         string            `json:"npsQuestion"`
	Representatives     map[string]string `json:"representatives"` // report category -> question id
}

// File is the raw on-disk catalog shape
type File struct {
	Version   string           `json:"version"`
	Sections  []model.Section  `json:"sections"`
	Questions []model.Question `json:"questions"`
	Rules     []model.SkipRule `json:"rules"`
	Scoring   ScoringConfig    `json:"scoring"`
}

// Catalog is the validated, indexed catalog
type Catalog struct {
	Version   string
	Questions []model.Question // declaration order
	Scoring   ScoringConfig

	sectionOrder  []string
	sections      map[string]*model.Section
	index         map[string]int
	rules         map[model.RuleKey]*model.SkipRule
	rulesBySource map[string][]*model.SkipRule
}

// New validates and indexes a catalog file
func New(f File) (*Catalog, error) {
	if len(f.Questions) == 0 {
		return nil, fmt.Errorf("catalog has no questions")
	}

	c := &Catalog{
		Version:       f.Version,
		Questions:     f.Questions,
		Scoring:       f.Scoring,
		sections:      make(map[string]*model.Section),
		index:         make(map[string]int),
		rules:         make(map[model.RuleKey]*model.SkipRule),
		rulesBySource: make(map[string][]*model.SkipRule),
	}

	for i := range f.Sections {
		sec := f.Sections[i]
		if _, dup := c.sections[sec.ID]; dup {
			return nil, fmt.Errorf("duplicate section id %q", sec.ID)
		}
		sec.QuestionIDs = nil // derived below
		c.sections[sec.ID] = &sec
		c.sectionOrder = append(c.sectionOrder, sec.ID)
	}

	for i := range c.Questions {
		q := &c.Questions[i]
		if q.ID == "" {
			return nil, fmt.Errorf("question at position %d has no id", i)
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		sec, ok := c.sections[q.SectionID]
		if !ok {
			return nil, fmt.Errorf("question %q references unknown section %q", q.ID, q.SectionID)
		}
		sec.QuestionIDs = append(sec.QuestionIDs, q.ID)
		c.index[q.ID] = i
	}

	for i := range f.Rules {
		r := &f.Rules[i]
		if err := c.checkRule(r); err != nil {
			return nil, err
		}
		key := r.Key()
		if _, dup := c.rules[key]; dup {
			return nil, fmt.Errorf("duplicate rule for question %q trigger %q", key.QuestionID, key.TriggerValue)
		}
		c.rules[key] = r
		c.rulesBySource[r.SourceQuestion] = append(c.rulesBySource[r.SourceQuestion], r)
	}

	if err := c.checkScoring(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Catalog) checkRule(r *model.SkipRule) error {
	if _, ok := c.index[r.SourceQuestion]; !ok {
		return fmt.Errorf("rule source %q not in catalog", r.SourceQuestion)
	}
	if _, ok := c.index[r.Target]; !ok {
		return fmt.Errorf("rule target %q not in catalog", r.Target)
	}
	switch r.Action {
	case model.ActionJumpTo, model.ActionContinueAfter:
	case model.ActionRouteToRange:
		endIdx, ok := c.index[r.RangeEnd]
		if !ok {
			return fmt.Errorf("rule range end %q not in catalog", r.RangeEnd)
		}
		if endIdx < c.index[r.Target] {
			return fmt.Errorf("rule range %q..%q is reversed", r.Target, r.RangeEnd)
		}
	default:
		return fmt.Errorf("rule on %q has unknown action %q", r.SourceQuestion, r.Action)
	}
	if r.Condition != nil {
		if _, ok := c.index[r.Condition.QuestionID]; !ok {
			return fmt.Errorf("rule condition references unknown question %q", r.Condition.QuestionID)
		}
		switch r.Condition.Kind {
		case model.CondEquals, model.CondEmpty, model.CondNotEmpty:
		default:
			return fmt.Errorf("rule condition has unknown kind %q", r.Condition.Kind)
		}
	}
	return nil
}

func (c *Catalog) checkScoring() error {
	refs := map[string]string{
		"stakeholder question": c.Scoring.StakeholderQuestion,
		"NPS question":         c.Scoring.NPSQuestion,
	}
	for what, id := range refs {
		if id != "" {
			if _, ok := c.index[id]; !ok {
				return fmt.Errorf("scoring %s %q not in catalog", what, id)
			}
		}
	}
	for category, id := range c.Scoring.Representatives {
		if _, ok := c.index[id]; !ok {
			return fmt.Errorf("representative for %q references unknown question %q", category, id)
		}
	}
	return nil
}

// Len returns the number of questions in the catalog
func (c *Catalog) Len() int { return len(c.Questions) }

// At returns the question at declaration position i
func (c *Catalog) At(i int) *model.Question { return &c.Questions[i] }

// Question looks up a question by id
func (c *Catalog) Question(id string) (*model.Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.Questions[i], true
}

// Index returns the declaration position of a question id
func (c *Catalog) Index(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// First returns the first question in declaration order
func (c *Catalog) First() *model.Question { return &c.Questions[0] }

// Rule looks up a skip rule by composite (question, trigger value) key
func (c *Catalog) Rule(key model.RuleKey) (*model.SkipRule, bool) {
	r, ok := c.rules[key]
	return r, ok
}

// RulesFrom returns all rules whose source is the given question
func (c *Catalog) RulesFrom(questionID string) []*model.SkipRule {
	return c.rulesBySource[questionID]
}

// Section looks up a section by id
func (c *Catalog) Section(id string) (*model.Section, bool) {
	s, ok := c.sections[id]
	return s, ok
}

// Sections returns all sections in declaration order
func (c *Catalog) Sections() []*model.Section {
	out := make([]*model.Section, 0, len(c.sectionOrder))
	for _, id := range c.sectionOrder {
		out = append(out, c.sections[id])
	}
	return out
}

// FunnelStage maps a question to its section's funnel stage; empty when the
// section carries no stage tag.
func (c *Catalog) FunnelStage(questionID string) string {
	q, ok := c.Question(questionID)
	if !ok {
		return ""
	}
	sec, ok := c.sections[q.SectionID]
	if !ok {
		return ""
	}
	return sec.FunnelStage
}
