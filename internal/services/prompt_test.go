package services

import (
	"strings"
	"testing"

	"coach-backend/internal/catalog"
	"coach-backend/internal/models"
	"coach-backend/internal/parser"
)

func TestSystemPrompt(t *testing.T) {
	got := SystemPrompt("", "  ")
	if !strings.Contains(got, "Feedback récent utilisateur :\naucun\n") {
		t.Error("empty feedback should render as \"aucun\"")
	}
	if !strings.Contains(got, "Profil utilisateur :\nprofil non défini\n") {
		t.Error("empty profile should render as \"profil non défini\"")
	}
	if strings.Contains(got, "{{") {
		t.Error("unreplaced placeholder")
	}
}

// Every section header the prompt asks for must classify, otherwise a
// well-formed reply would lose sections.
func TestSystemPrompt_HeadersClassify(t *testing.T) {
	var headers []string
	for _, line := range strings.Split(SystemPrompt("", ""), "\n") {
		if strings.HasPrefix(line, "## ") {
			headers = append(headers, line)
		}
	}
	if len(headers) != len(models.SectionLabels) {
		t.Fatalf("prompt lists %d headers, want %d", len(headers), len(models.SectionLabels))
	}
	for i, h := range headers {
		label, ok := parser.Classify(h)
		if !ok || label != models.SectionLabels[i] {
			t.Errorf("header %q classified as %q (%v), want %q", h, label, ok, models.SectionLabels[i])
		}
	}
}

func TestProfileSummary(t *testing.T) {
	if got := ProfileSummary(nil); got != "profil non défini" {
		t.Errorf("nil profile = %q", got)
	}
	w := 72.0
	got := ProfileSummary(&models.Profile{Name: "Sam", WeightKg: &w, Goal: "Performance"})
	want := "Prénom: Sam | Date de naissance: ? | Poids (kg): 72 | Sexe: ? | Objectif: Performance | Niveau: ? | Lieu: ? | Matériel: ? | Blessures: ?"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestRenderMessage_ProductsList(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	text := "Séance : Étirements du soir (15 min)\n## Étirements\n- ischios 1 min\n- quadriceps 1 min\n## Conseils\n- respire\nProduits suggérés :\n- Hydratation\n- Montres"

	view := RenderMessage(text, nil, catalog.SexUnknown, cat)
	if len(view.Cards) != 1 {
		t.Fatalf("cards = %+v", view.Cards)
	}
	card := view.Cards[0]
	if card.DraftID != "" {
		t.Error("no pending draft should bind")
	}
	if len(card.Products) != 2 {
		t.Fatalf("products = %+v", card.Products)
	}
	if card.Products[0].CategoryLabel != "Hydratation" || card.Products[1].CategoryLabel != "Montres" {
		t.Errorf("resolved categories = %s, %s", card.Products[0].CategoryLabel, card.Products[1].CategoryLabel)
	}
}

func TestRenderMessage_SuggestsWithoutList(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	view := RenderMessage(sessionReply, nil, catalog.SexFemale, cat)
	if len(view.Cards) != 1 || len(view.Cards[0].Products) == 0 {
		t.Errorf("expected suggested products, got %+v", view.Cards)
	}
	if view := RenderMessage(sessionReply, nil, catalog.SexUnknown, nil); len(view.Cards[0].Products) != 0 {
		t.Error("no catalog means no products")
	}
}
