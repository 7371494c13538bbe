package program

import (
	"testing"
	"time"

	"coach-backend/internal/models"
)

func TestComputeStats(t *testing.T) {
	// Wednesday 12 March 2025.
	now := time.Date(2025, 3, 12, 20, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return now.Add(-d) }

	list := []models.ProgramSession{
		completed("Footing léger (30 min)", models.FeedbackEasy, at(1*time.Hour)),
		completed("Renfo gainage 20 minutes", models.FeedbackHard, at(24*time.Hour)),
		completed("Étirements doux", models.FeedbackOK, at(48*time.Hour)),
		completed("Balade", "", at(8*24*time.Hour)),
		{SessionDraft: models.SessionDraft{ID: "next", Title: "Fractionné"}},
	}

	st := ComputeStats(list, now)

	if st.Total != 5 || st.Done != 4 || st.Pending != 1 {
		t.Errorf("counts = %d/%d/%d", st.Total, st.Done, st.Pending)
	}
	if st.CompletionPercent != 80 {
		t.Errorf("completion = %d", st.CompletionPercent)
	}
	if st.TotalMinutes != 50 {
		t.Errorf("total minutes = %d, want 50", st.TotalMinutes)
	}
	if st.Streak != 3 {
		t.Errorf("streak = %d, want 3", st.Streak)
	}
	if st.LastDone == nil || st.LastDone.Title != "Footing léger (30 min)" {
		t.Errorf("last done = %+v", st.LastDone)
	}
	if st.NextSession == nil || st.NextSession.ID != "next" {
		t.Errorf("next session = %+v", st.NextSession)
	}
	if st.FeedbackCounts[models.FeedbackEasy] != 1 || st.FeedbackCounts[models.FeedbackHard] != 1 || st.FeedbackCounts[models.FeedbackTooHard] != 0 {
		t.Errorf("feedback counts = %v", st.FeedbackCounts)
	}
	if st.TypeCounts[TypeRunning] != 1 || st.TypeCounts[TypeStrength] != 1 || st.TypeCounts[TypeMobility] != 1 || st.TypeCounts[TypeMixed] != 1 {
		t.Errorf("type counts = %v", st.TypeCounts)
	}

	// Monday 10 March starts the current week: three sessions this week, one the week before.
	if st.DoneThisWeek != 3 || st.WeeklyProgress != 100 {
		t.Errorf("this week = %d (%d%%)", st.DoneThisWeek, st.WeeklyProgress)
	}
	if len(st.Weeks) != 6 || st.Weeks[5].Count != 3 || st.Weeks[4].Count != 1 {
		t.Errorf("weeks = %+v", st.Weeks)
	}
	if want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC); !st.Weeks[5].Start.Equal(want) {
		t.Errorf("current week starts %v, want %v", st.Weeks[5].Start, want)
	}
	if st.Weeks[0].Label != "S1" || st.Weeks[5].Label != "S6" {
		t.Errorf("labels = %s..%s", st.Weeks[0].Label, st.Weeks[5].Label)
	}

	if len(st.Last14Days) != 14 || st.Last14Days[13].Date != "2025-03-12" || !st.Last14Days[13].Active {
		t.Errorf("last day = %+v", st.Last14Days[13])
	}
	if st.Last14Days[0].Date != "2025-02-27" {
		t.Errorf("first day = %s", st.Last14Days[0].Date)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	st := ComputeStats(nil, time.Now())
	if st.Total != 0 || st.CompletionPercent != 0 || st.Streak != 0 || st.NextSession != nil || st.LastDone != nil {
		t.Errorf("unexpected stats for empty program: %+v", st)
	}
	if len(st.Weeks) != 6 || len(st.Last14Days) != 14 {
		t.Error("buckets should always be present")
	}
}

func TestComputeStats_StreakNeedsToday(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	st := ComputeStats([]models.ProgramSession{completed("Footing", models.FeedbackOK, yesterday)}, now)
	if st.Streak != 0 {
		t.Errorf("streak = %d, want 0 without a session today", st.Streak)
	}
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		title, content string
		want           int
	}{
		{"Footing (30 min)", "", 30},
		{"Renfo", "Circuit de 25minutes", 25},
		{"Sortie longue", "1 h 15", 0},
		{"Séance 2", "- 10 min marche\n- 20 min course", 10},
	}

	for _, tc := range tests {
		if got := DurationMinutes(tc.title, tc.content); got != tc.want {
			t.Errorf("DurationMinutes(%q, %q) = %d, want %d", tc.title, tc.content, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		want  SessionType
	}{
		{"Fractionné court", TypeRunning},
		{"Circuit pompes et squats", TypeStrength},
		{"Mobilité des hanches", TypeMobility},
		{"Étirement complet", TypeMobility},
		{"Vélo tranquille", TypeMixed},
	}

	for _, tc := range tests {
		if got := Classify(tc.title, ""); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.title, got, tc.want)
		}
	}
}
