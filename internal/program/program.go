// Package program holds the pure operations on a user's list of committed
// sessions. Every operation returns a new list; callers persist it wholesale.
package program

import (
	"errors"
	"time"

	"coach-backend/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidFeedback = errors.New("invalid feedback")
)

// FromDraft turns a draft into a pending program session.
func FromDraft(d models.SessionDraft) models.ProgramSession {
	s := models.ProgramSession{SessionDraft: d}
	if s.Sections == nil {
		s.Sections = []models.Section{}
	}
	if s.Products == nil {
		s.Products = []string{}
	}
	return s
}

// CommitAll appends drafts in order. A draft whose id is already in the list
// replaces that session's content in place and keeps its completion state, so
// committing twice does not duplicate a session.
func CommitAll(sessions []models.ProgramSession, drafts []models.SessionDraft) []models.ProgramSession {
	out := clone(sessions)
	for _, d := range drafts {
		if i := indexOf(out, d.ID); i >= 0 {
			out[i].SessionDraft = FromDraft(d).SessionDraft
			continue
		}
		out = append(out, FromDraft(d))
	}
	return out
}

// CommitOne commits a single draft with the same rule as CommitAll.
func CommitOne(sessions []models.ProgramSession, draft models.SessionDraft) []models.ProgramSession {
	return CommitAll(sessions, []models.SessionDraft{draft})
}

// MarkDone completes a session with its feedback and completion time.
func MarkDone(sessions []models.ProgramSession, id string, feedback models.Feedback, now time.Time) ([]models.ProgramSession, error) {
	if !feedback.Valid() {
		return nil, ErrInvalidFeedback
	}
	out := clone(sessions)
	i := indexOf(out, id)
	if i < 0 {
		return nil, ErrSessionNotFound
	}
	completed := models.Stamp(now)
	out[i].Done = true
	out[i].Feedback = feedback
	out[i].CompletedAt = &completed
	return out, nil
}

// Reset returns a session to the pending group, clearing feedback and completion time.
func Reset(sessions []models.ProgramSession, id string) ([]models.ProgramSession, error) {
	out := clone(sessions)
	i := indexOf(out, id)
	if i < 0 {
		return nil, ErrSessionNotFound
	}
	out[i].Done = false
	out[i].Feedback = ""
	out[i].CompletedAt = nil
	return out, nil
}

func Delete(sessions []models.ProgramSession, id string) ([]models.ProgramSession, error) {
	i := indexOf(sessions, id)
	if i < 0 {
		return nil, ErrSessionNotFound
	}
	out := make([]models.ProgramSession, 0, len(sessions)-1)
	out = append(out, sessions[:i]...)
	return append(out, sessions[i+1:]...), nil
}

// Group splits the list into pending and done sessions, both in list order.
func Group(sessions []models.ProgramSession) (pending, done []models.ProgramSession) {
	pending = []models.ProgramSession{}
	done = []models.ProgramSession{}
	for _, s := range sessions {
		if s.Done {
			done = append(done, s)
		} else {
			pending = append(pending, s)
		}
	}
	return pending, done
}

func Find(sessions []models.ProgramSession, id string) (models.ProgramSession, bool) {
	if i := indexOf(sessions, id); i >= 0 {
		return sessions[i], true
	}
	return models.ProgramSession{}, false
}

func indexOf(sessions []models.ProgramSession, id string) int {
	for i, s := range sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func clone(sessions []models.ProgramSession) []models.ProgramSession {
	out := make([]models.ProgramSession, len(sessions))
	copy(out, sessions)
	return out
}
