package program

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"coach-backend/internal/models"
	"coach-backend/internal/textnorm"
)

const (
	WeeklyGoal   = 3
	weekBuckets  = 6
	activityDays = 14
)

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:min|minutes)\b`)

type SessionType string

const (
	TypeRunning  SessionType = "course"
	TypeStrength SessionType = "renfo"
	TypeMobility SessionType = "mobilite"
	TypeMixed    SessionType = "mix"
)

var typeKeywords = []struct {
	kind  SessionType
	stems []string
}{
	{TypeRunning, []string{"course", "running", "footing", "fractionn", "endurance"}},
	{TypeStrength, []string{"renforcement", "muscu", "gainage", "squats", "fentes", "pompes"}},
	{TypeMobility, []string{"mobilit", "etirement", "souplesse"}},
}

type WeekBucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

type DayActivity struct {
	Date   string `json:"date"`
	Active bool   `json:"active"`
}

type Stats struct {
	Total             int                     `json:"total"`
	Done              int                     `json:"done"`
	Pending           int                     `json:"pending"`
	CompletionPercent int                     `json:"completion_percent"`
	TotalMinutes      int                     `json:"total_minutes"`
	LastDone          *models.ProgramSession  `json:"last_done,omitempty"`
	NextSession       *models.ProgramSession  `json:"next_session,omitempty"`
	Streak            int                     `json:"streak"`
	Weeks             []WeekBucket            `json:"weeks"`
	FeedbackCounts    map[models.Feedback]int `json:"feedback_counts"`
	WeeklyGoal        int                     `json:"weekly_goal"`
	DoneThisWeek      int                     `json:"done_this_week"`
	WeeklyProgress    int                     `json:"weekly_progress"`
	Last14Days        []DayActivity           `json:"last_14_days"`
	TypeCounts        map[SessionType]int     `json:"type_counts"`
}

// ComputeStats summarizes progress as of now. Days and weeks are computed in
// now's location; weeks start on Monday.
func ComputeStats(sessions []models.ProgramSession, now time.Time) Stats {
	loc := now.Location()
	pending, done := Group(sessions)

	st := Stats{
		Total:      len(sessions),
		Done:       len(done),
		Pending:    len(pending),
		WeeklyGoal: WeeklyGoal,
		FeedbackCounts: map[models.Feedback]int{
			models.FeedbackEasy: 0, models.FeedbackOK: 0, models.FeedbackHard: 0, models.FeedbackTooHard: 0,
		},
		TypeCounts: map[SessionType]int{
			TypeRunning: 0, TypeStrength: 0, TypeMobility: 0, TypeMixed: 0,
		},
	}
	if st.Total > 0 {
		st.CompletionPercent = int(math.Round(float64(st.Done) / float64(st.Total) * 100))
	}
	if len(pending) > 0 {
		next := pending[0]
		st.NextSession = &next
	}

	activeDays := map[string]bool{}
	for _, s := range done {
		st.TotalMinutes += DurationMinutes(s.Title, s.Content)
		st.TypeCounts[Classify(s.Title, s.Content)]++
		if s.Feedback.Valid() {
			st.FeedbackCounts[s.Feedback]++
		}
		if s.CompletedAt == nil {
			continue
		}
		activeDays[dayKey(s.CompletedAt.In(loc))] = true
		if st.LastDone == nil || s.CompletedAt.After(*st.LastDone.CompletedAt) {
			last := s
			st.LastDone = &last
		}
	}

	for cursor := now; activeDays[dayKey(cursor)]; cursor = cursor.AddDate(0, 0, -1) {
		st.Streak++
	}

	st.Weeks = make([]WeekBucket, weekBuckets)
	for i := range st.Weeks {
		start := startOfWeek(now.AddDate(0, 0, -7*(weekBuckets-1-i)))
		st.Weeks[i] = WeekBucket{Label: fmt.Sprintf("S%d", i+1), Start: start}
	}
	thisWeek := startOfWeek(now)
	for _, s := range done {
		if s.CompletedAt == nil {
			continue
		}
		at := s.CompletedAt.In(loc)
		for i := range st.Weeks {
			if inWeek(at, st.Weeks[i].Start) {
				st.Weeks[i].Count++
			}
		}
		if inWeek(at, thisWeek) {
			st.DoneThisWeek++
		}
	}
	st.WeeklyProgress = int(math.Round(float64(st.DoneThisWeek) / float64(WeeklyGoal) * 100))
	if st.WeeklyProgress > 100 {
		st.WeeklyProgress = 100
	}

	st.Last14Days = make([]DayActivity, activityDays)
	for i := range st.Last14Days {
		key := dayKey(now.AddDate(0, 0, -(activityDays - 1 - i)))
		st.Last14Days[i] = DayActivity{Date: key, Active: activeDays[key]}
	}

	return st
}

// DurationMinutes reads the first "<n> min" mention of a session, 0 when absent.
func DurationMinutes(title, content string) int {
	m := durationPattern.FindStringSubmatch(title + " " + content)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Classify guesses the kind of a session from its wording.
func Classify(title, content string) SessionType {
	text := textnorm.Normalize(title + " " + content)
	for _, k := range typeKeywords {
		for _, stem := range k.stems {
			if strings.Contains(text, stem) {
				return k.kind
			}
		}
	}
	return TypeMixed
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -offset)
}

func inWeek(t, start time.Time) bool {
	return !t.Before(start) && t.Before(start.AddDate(0, 0, 7))
}
