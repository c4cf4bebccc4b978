package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Session is the single-respondent traversal state
type Session struct {
	ID              string          `json:"id" bson:"_id,omitempty"`
	Status          SessionStatus   `json:"status" bson:"status"`
	CurrentQuestion string          `json:"currentQuestion" bson:"currentQuestion"`
	CurrentSection  string          `json:"currentSection" bson:"currentSection"`
	StakeholderType StakeholderType `json:"stakeholderType,omitempty" bson:"stakeholderType,omitempty"`
	ProgressPct     int             `json:"progressPct" bson:"progressPct"`
	CatalogVersion  string          `json:"catalogVersion" bson:"catalogVersion"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	LastModifiedAt  time.Time       `json:"lastModifiedAt" bson:"lastModifiedAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// SessionUpdate is a partial-field merge applied by UpdateSession
type SessionUpdate struct {
	Status          *SessionStatus   `bson:"status,omitempty"`
	CurrentQuestion *string          `bson:"currentQuestion,omitempty"`
	CurrentSection  *string          `bson:"currentSection,omitempty"`
	StakeholderType *StakeholderType `bson:"stakeholderType,omitempty"`
	ProgressPct     *int             `bson:"progressPct,omitempty"`
	CompletedAt     *time.Time       `bson:"completedAt,omitempty"`
}

// Apply merges the non-nil fields into the session and bumps LastModifiedAt
func (u *SessionUpdate) Apply(s *Session, now time.Time) {
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.CurrentQuestion != nil {
		s.CurrentQuestion = *u.CurrentQuestion
	}
	if u.CurrentSection != nil {
		s.CurrentSection = *u.CurrentSection
	}
	if u.StakeholderType != nil {
		s.StakeholderType = *u.StakeholderType
	}
	if u.ProgressPct != nil {
		s.ProgressPct = *u.ProgressPct
	}
	if u.CompletedAt != nil {
		s.CompletedAt = u.CompletedAt
	}
	s.LastModifiedAt = now
}
