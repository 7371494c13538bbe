package program

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"coach-backend/internal/models"
)

const (
	summaryWindow = 10
	trendWindow   = 3
	noSessions    = "aucune séance effectuée"
)

// FeedbackSummary describes the last completed sessions for the coaching prompt,
// one dated entry per session followed by a trend note when three are rated.
func FeedbackSummary(sessions []models.ProgramSession, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var completed []models.ProgramSession
	for _, s := range sessions {
		if s.Done {
			completed = append(completed, s)
		}
	}
	if len(completed) == 0 {
		return noSessions
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completedTime(completed[i]).Before(completedTime(completed[j]))
	})
	if len(completed) > summaryWindow {
		completed = completed[len(completed)-summaryWindow:]
	}

	parts := make([]string, 0, len(completed)+1)
	for _, s := range completed {
		date := "date inconnue"
		if s.CompletedAt != nil {
			date = s.CompletedAt.In(loc).Format("02/01/2006")
		}
		fb := s.Feedback.French()
		if fb == "" {
			fb = "non notée"
		}
		parts = append(parts, fmt.Sprintf("%s — %s → %s", date, s.Title, fb))
	}

	if note := trendNote(completed); note != "" {
		parts = append(parts, note)
	}
	return strings.Join(parts, " | ")
}

// trendNote compares the oldest and newest of the last three rated sessions.
func trendNote(completed []models.ProgramSession) string {
	var ranks []int
	for _, s := range completed {
		if r := s.Feedback.Rank(); r > 0 {
			ranks = append(ranks, r)
		}
	}
	if len(ranks) < trendWindow {
		return ""
	}
	ranks = ranks[len(ranks)-trendWindow:]

	switch first, last := ranks[0], ranks[len(ranks)-1]; {
	case last < first:
		return "Tendance récente: amélioration (effort perçu en baisse)."
	case last > first:
		return "Tendance récente: séance perçue plus difficile."
	default:
		return "Tendance récente: stable."
	}
}

func completedTime(s models.ProgramSession) time.Time {
	if s.CompletedAt == nil {
		return time.Time{}
	}
	return *s.CompletedAt
}
