package program

import (
	"strings"
	"testing"
	"time"

	"coach-backend/internal/models"
)

func completed(title string, fb models.Feedback, at time.Time) models.ProgramSession {
	s := models.ProgramSession{SessionDraft: models.SessionDraft{ID: title, Title: title}, Done: true, Feedback: fb}
	if !at.IsZero() {
		s.CompletedAt = &at
	}
	return s
}

func day(n int) time.Time {
	return time.Date(2025, 3, n, 18, 0, 0, 0, time.UTC)
}

func TestFeedbackSummary_Empty(t *testing.T) {
	pending := []models.ProgramSession{{SessionDraft: models.SessionDraft{ID: "p", Title: "P"}}}
	if got := FeedbackSummary(pending, time.UTC); got != "aucune séance effectuée" {
		t.Errorf("got %q", got)
	}
}

func TestFeedbackSummary_EntriesAndTrend(t *testing.T) {
	tests := []struct {
		name      string
		feedbacks []models.Feedback
		wantTrend string
	}{
		{"improving", []models.Feedback{models.FeedbackTooHard, models.FeedbackHard, models.FeedbackOK}, "Tendance récente: amélioration (effort perçu en baisse)."},
		{"harder", []models.Feedback{models.FeedbackEasy, models.FeedbackOK, models.FeedbackHard}, "Tendance récente: séance perçue plus difficile."},
		{"stable", []models.Feedback{models.FeedbackOK, models.FeedbackHard, models.FeedbackOK}, "Tendance récente: stable."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var list []models.ProgramSession
			// Stored out of order; the summary sorts by completion time.
			for i := len(tc.feedbacks) - 1; i >= 0; i-- {
				list = append(list, completed("S"+string(rune('1'+i)), tc.feedbacks[i], day(i+1)))
			}

			got := FeedbackSummary(list, time.UTC)
			if !strings.HasPrefix(got, "01/03/2025 — S1 → "+tc.feedbacks[0].French()) {
				t.Errorf("summary should start with the oldest session, got %q", got)
			}
			if !strings.HasSuffix(got, " | "+tc.wantTrend) {
				t.Errorf("summary %q should end with %q", got, tc.wantTrend)
			}
		})
	}
}

func TestFeedbackSummary_UnratedAndUndated(t *testing.T) {
	list := []models.ProgramSession{
		completed("Rando", "", day(2)),
		completed("Vieux", models.FeedbackEasy, time.Time{}),
	}
	got := FeedbackSummary(list, time.UTC)
	want := "date inconnue — Vieux → facile | 02/03/2025 — Rando → non notée"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFeedbackSummary_KeepsLastTen(t *testing.T) {
	var list []models.ProgramSession
	for i := 1; i <= 12; i++ {
		list = append(list, completed("S"+time.Month(i).String(), models.FeedbackOK, day(i)))
	}
	got := FeedbackSummary(list, time.UTC)
	if strings.Contains(got, "SJanuary") || strings.Contains(got, "SFebruary") {
		t.Errorf("oldest sessions should be dropped: %q", got)
	}
	if strings.Count(got, "→") != 10 {
		t.Errorf("expected 10 entries, got %q", got)
	}
}
