package termview

import (
	"strings"
	"testing"
	"time"

	"coach-backend/internal/catalog"
	"coach-backend/internal/models"
	"coach-backend/internal/parser"
	"coach-backend/internal/program"
	"coach-backend/internal/services"
)

func TestMessage(t *testing.T) {
	view := services.RenderedMessage{
		Intro: []string{"Voici ta séance"},
		Cards: []services.RenderedCard{{
			Card: parser.Card{
				Title: "Footing (30 min)",
				Items: []parser.Item{{Text: "Échauffement", Header: true}, {Text: "5 min marche"}},
			},
			DraftID:  "d1",
			Products: []catalog.Product{{ID: "1", Name: "Veste pluie"}},
		}},
		Outro: []string{"Bonne séance !"},
	}

	out := Message(view, 60)
	for _, want := range []string{"Voici ta séance", "Footing (30 min)", "[1] à ajouter", "• 5 min marche", "Veste pluie", "Bonne séance !"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMessage_ProseBetweenCards(t *testing.T) {
	view := services.RenderedMessage{
		Cards: []services.RenderedCard{
			{Card: parser.Card{Title: "Footing", Items: []parser.Item{{Text: "20 min"}}, After: []string{"Repose-toi demain."}}},
			{Card: parser.Card{Title: "Renfo", Items: []parser.Item{{Text: "squats"}}}},
		},
		Outro: []string{"À jeudi !"},
	}

	out := Message(view, 60)
	footing, rest, renfo, outro := strings.Index(out, "Footing"), strings.Index(out, "Repose-toi"), strings.Index(out, "Renfo"), strings.Index(out, "À jeudi")
	if !(footing < rest && rest < renfo && renfo < outro) {
		t.Errorf("blocks out of document order:\n%s", out)
	}
}

func TestProgram(t *testing.T) {
	if out := Program(nil); !strings.Contains(out, "Programme vide") {
		t.Errorf("empty program = %q", out)
	}

	now := time.Now()
	sessions := []models.ProgramSession{
		{SessionDraft: models.SessionDraft{ID: "a", Title: "Footing"}, Done: true, Feedback: models.FeedbackTooHard, CompletedAt: &now},
		{SessionDraft: models.SessionDraft{ID: "b", Title: "Renfo"}},
	}
	out := Program(sessions)
	if strings.Index(out, "Renfo") > strings.Index(out, "Footing") {
		t.Error("pending sessions should be listed before done ones")
	}
	if !strings.Contains(out, "À faire (1)") || !strings.Contains(out, "Faites (1)") || !strings.Contains(out, "(trop_dur)") {
		t.Errorf("unexpected program view:\n%s", out)
	}
}

func TestStats(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	st := program.ComputeStats([]models.ProgramSession{
		{SessionDraft: models.SessionDraft{ID: "a", Title: "Footing 20 min"}, Done: true, CompletedAt: &now},
		{SessionDraft: models.SessionDraft{ID: "b", Title: "Renfo"}},
	}, now)

	out := Stats(st)
	for _, want := range []string{"1/2 séances (50%)", "20 min", "1 jour(s)", "S6", "Prochaine Renfo"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}
