package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the user_conversations row: one transcript per user, written wholesale.
type Conversation struct {
	ID              uuid.UUID      `json:"id"`
	Messages        []ChatMessage  `json:"messages"`
	PendingSessions []SessionDraft `json:"pending_sessions"`
	OnboardingDone  bool           `json:"onboarding_done"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Program is the user_programs row: the ordered list of committed sessions.
type Program struct {
	ID        uuid.UUID        `json:"id"`
	Sessions  []ProgramSession `json:"sessions"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Profile is the profiles row filled by onboarding.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"`
	WeightKg  *float64  `json:"weight_kg"`
	Sex       string    `json:"sex"`
	Goal      string    `json:"goal"`
	Level     string    `json:"level"`
	Location  string    `json:"location"`
	Equipment string    `json:"equipment"`
	Injuries  string    `json:"injuries"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommitRequest struct {
	DraftID string `json:"draft_id"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

// OnboardingAnswers maps question ids to one value, or several for multi-select questions.
type OnboardingAnswers map[string][]string

type OnboardingRequest struct {
	Answers OnboardingAnswers `json:"answers"`
}

type ParseRequest struct {
	Text string `json:"text"`
	Sex  string `json:"sex"`
}

// Stamp returns now in UTC truncated to the precision Postgres keeps.
func Stamp(now time.Time) time.Time {
	return now.UTC().Truncate(time.Microsecond)
}
