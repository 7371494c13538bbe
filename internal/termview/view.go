// Package termview renders coach messages, programs and stats for a terminal.
package termview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"coach-backend/internal/catalog"
	"coach-backend/internal/models"
	"coach-backend/internal/program"
	"coach-backend/internal/services"
)

const defaultWidth = 72

// Message renders a message in document order: intro, cards with the prose
// that follows each of them, outro.
func Message(view services.RenderedMessage, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	var blocks []string
	for _, line := range view.Intro {
		blocks = append(blocks, lipgloss.NewStyle().Width(width).Render(line))
	}
	for i, card := range view.Cards {
		blocks = append(blocks, Card(card, i+1, width))
		for _, line := range card.After {
			blocks = append(blocks, lipgloss.NewStyle().Width(width).Render(line))
		}
	}
	for _, line := range view.Outro {
		blocks = append(blocks, lipgloss.NewStyle().Width(width).Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// Card renders one session card. n is the number shown next to a committable draft.
func Card(card services.RenderedCard, n, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🏁 " + card.Title))
	if card.DraftID != "" {
		b.WriteString("  " + badgeStyle.Render(fmt.Sprintf("[%d] à ajouter", n)))
	}
	b.WriteString("\n")

	for _, it := range card.Items {
		if it.Header {
			b.WriteString(headerStyle.Render(it.Text) + "\n")
			continue
		}
		b.WriteString("  • " + it.Text + "\n")
	}

	if len(card.Products) > 0 {
		b.WriteString(mutedStyle.Render("Produits : "+productNames(card.Products)) + "\n")
	}
	return cardStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// Program lists pending sessions first, then done ones, each in list order.
func Program(sessions []models.ProgramSession) string {
	pending, done := program.Group(sessions)
	if len(sessions) == 0 {
		return mutedStyle.Render("Programme vide. Ajoute une séance depuis le coach.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("À faire (%d)", len(pending))) + "\n")
	for _, s := range pending {
		b.WriteString(pendingStyle.Render("○ ") + s.Title + mutedStyle.Render("  "+s.ID) + "\n")
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("Faites (%d)", len(done))) + "\n")
	for _, s := range done {
		line := doneStyle.Render("● ") + s.Title
		if fb := s.Feedback.French(); fb != "" {
			line += " " + feedbackStyle(s.Feedback).Render("("+fb+")")
		}
		b.WriteString(line + mutedStyle.Render("  "+s.ID) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func Stats(st program.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d séances (%d%%)\n", headerStyle.Render("Complétion"), st.Done, st.Total, st.CompletionPercent)
	fmt.Fprintf(&b, "%s %d min\n", headerStyle.Render("Temps cumulé"), st.TotalMinutes)
	fmt.Fprintf(&b, "%s %d jour(s)\n", headerStyle.Render("Série"), st.Streak)
	fmt.Fprintf(&b, "%s %d/%d %s\n", headerStyle.Render("Cette semaine"), st.DoneThisWeek, st.WeeklyGoal, bar(st.WeeklyProgress, 20))

	for _, wk := range st.Weeks {
		fmt.Fprintf(&b, "  %s %s %d\n", wk.Label, strings.Repeat("▇", wk.Count), wk.Count)
	}

	var days strings.Builder
	for _, d := range st.Last14Days {
		if d.Active {
			days.WriteString(doneStyle.Render("■"))
		} else {
			days.WriteString(mutedStyle.Render("□"))
		}
	}
	b.WriteString(headerStyle.Render("14 jours") + " " + days.String())

	if st.NextSession != nil {
		b.WriteString("\n" + headerStyle.Render("Prochaine") + " " + st.NextSession.Title)
	}
	return b.String()
}

func Products(products []catalog.Product) string {
	var b strings.Builder
	for _, p := range products {
		fmt.Fprintf(&b, "%s  %s  %s  %s\n", mutedStyle.Render(p.ID), titleStyle.Render(p.Name), p.Price, mutedStyle.Render(p.CategoryLabel))
	}
	return strings.TrimRight(b.String(), "\n")
}

func productNames(products []catalog.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func feedbackStyle(f models.Feedback) lipgloss.Style {
	switch f {
	case models.FeedbackHard, models.FeedbackTooHard:
		return lipgloss.NewStyle().Foreground(Crimson)
	case models.FeedbackEasy:
		return doneStyle
	}
	return mutedStyle
}

func bar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	return doneStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}
