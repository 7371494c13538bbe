package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SectionLabel is the closed vocabulary of workout sections.
type SectionLabel string

const (
	SectionWarmUp     SectionLabel = "Warm-up"
	SectionExercises  SectionLabel = "Exercises"
	SectionRunning    SectionLabel = "Running"
	SectionCoolDown   SectionLabel = "Cool-down"
	SectionStretching SectionLabel = "Stretching"
	SectionTips       SectionLabel = "Tips"
)

// SectionLabels lists the labels in the order the coaching format writes them.
var SectionLabels = []SectionLabel{
	SectionWarmUp,
	SectionExercises,
	SectionRunning,
	SectionCoolDown,
	SectionStretching,
	SectionTips,
}

var sectionHeaders = map[SectionLabel]string{
	SectionWarmUp:     "Échauffement",
	SectionExercises:  "Exercices",
	SectionRunning:    "Course à pied",
	SectionCoolDown:   "Retour au calme",
	SectionStretching: "Étirements",
	SectionTips:       "Conseils",
}

// Valid reports whether l belongs to the vocabulary.
func (l SectionLabel) Valid() bool {
	_, ok := sectionHeaders[l]
	return ok
}

// Header returns the French heading the coach writes for l.
func (l SectionLabel) Header() string {
	return sectionHeaders[l]
}

type Section struct {
	Label SectionLabel `json:"label"`
	Items []string     `json:"items"`
}

// SessionDraft is a session extracted from an assistant reply and not yet committed.
type SessionDraft struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Sections []Section `json:"sections"`
	Products []string  `json:"products"`
}

// ProgramSession is a committed session. Feedback and CompletedAt are only set while Done.
type ProgramSession struct {
	SessionDraft
	Done        bool       `json:"done"`
	Feedback    Feedback   `json:"feedback,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Feedback is the perceived difficulty of a completed session.
type Feedback string

const (
	FeedbackEasy    Feedback = "easy"
	FeedbackOK      Feedback = "ok"
	FeedbackHard    Feedback = "hard"
	FeedbackTooHard Feedback = "too_hard"
)

var legacyFeedback = map[string]Feedback{
	"easy":     FeedbackEasy,
	"facile":   FeedbackEasy,
	"ok":       FeedbackOK,
	"hard":     FeedbackHard,
	"dur":      FeedbackHard,
	"too_hard": FeedbackTooHard,
	"trop_dur": FeedbackTooHard,
}

// ParseFeedback accepts both the current values and the French ones written by older clients.
func ParseFeedback(s string) (Feedback, bool) {
	f, ok := legacyFeedback[s]
	return f, ok
}

// Rank orders feedback from easiest (1) to hardest (4); 0 when unset.
func (f Feedback) Rank() int {
	switch f {
	case FeedbackEasy:
		return 1
	case FeedbackOK:
		return 2
	case FeedbackHard:
		return 3
	case FeedbackTooHard:
		return 4
	}
	return 0
}

func (f Feedback) Valid() bool { return f.Rank() > 0 }

// French returns the word used for f in coaching prompts.
func (f Feedback) French() string {
	switch f {
	case FeedbackEasy:
		return "facile"
	case FeedbackOK:
		return "ok"
	case FeedbackHard:
		return "dur"
	case FeedbackTooHard:
		return "trop_dur"
	}
	return ""
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = ""
		return nil
	}
	parsed, ok := ParseFeedback(s)
	if !ok {
		return fmt.Errorf("unknown feedback %q", s)
	}
	*f = parsed
	return nil
}
