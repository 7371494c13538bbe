package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"coach-backend/internal/models"
)

func completeAnswers() models.OnboardingAnswers {
	return models.OnboardingAnswers{
		"objectif":        {"Remise en forme"},
		"experience":      {"Débutant"},
		"injuries":        {"Oui"},
		"injuries_detail": {"genou droit"},
		"lieu":            {"Extérieur"},
		"materiel":        {"Haltères", "Tapis / élastiques"},
		"rythme":          {"3"},
	}
}

func TestOnboardingSummary(t *testing.T) {
	want := strings.Join([]string{
		"Résumé des infos :",
		"- Objectif : Remise en forme",
		"- Niveau : Débutant",
		"- Blessures : Oui",
		"- Détails blessures : genou droit",
		"- Lieu : Extérieur",
		"- Matériel : Haltères, Tapis / élastiques",
		"- Rythme : 3 séances/sem",
	}, "\n")
	if got := OnboardingSummary(completeAnswers()); got != want {
		t.Errorf("summary:\n%s\nwant:\n%s", got, want)
	}

	got := OnboardingSummary(models.OnboardingAnswers{"injuries": {"Non"}})
	if strings.Contains(got, "Détails blessures") || !strings.Contains(got, "- Objectif : ?") {
		t.Errorf("partial summary = %q", got)
	}
}

func TestProfileFromAnswers(t *testing.T) {
	p := ProfileFromAnswers(nil, completeAnswers())
	if p.Sex != "Homme" || p.WeightKg == nil || *p.WeightKg != 70 {
		t.Errorf("defaults not applied: %+v", p)
	}
	if p.Goal != "Remise en forme" || p.Level != "Débutant" || p.Location != "Extérieur" {
		t.Errorf("answers not copied: %+v", p)
	}
	if p.Equipment != "Haltères, Tapis / élastiques" || p.Injuries != "genou droit" {
		t.Errorf("equipment/injuries = %q / %q", p.Equipment, p.Injuries)
	}

	weight := 61.0
	existing := &models.Profile{Name: "Léa", Sex: "Femme", WeightKg: &weight, BirthDate: "1990-05-01"}
	answers := completeAnswers()
	answers["injuries"] = []string{"Non"}
	p = ProfileFromAnswers(existing, answers)
	if p.Name != "Léa" || p.Sex != "Femme" || *p.WeightKg != 61 || p.BirthDate != "1990-05-01" {
		t.Errorf("identity fields should be kept: %+v", p)
	}
	if p.Injuries != "Aucune" {
		t.Errorf("injuries = %q", p.Injuries)
	}
}

func TestValidateAnswers(t *testing.T) {
	if err := ValidateAnswers(completeAnswers()); err != nil {
		t.Fatalf("complete answers rejected: %v", err)
	}

	answers := completeAnswers()
	delete(answers, "injuries_detail")
	answers["rythme"] = []string{"2", "3"}
	delete(answers, "lieu")

	var vErr *ValidationError
	if err := ValidateAnswers(answers); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"injuries_detail", "rythme", "lieu"} {
		if _, ok := vErr.Fields[field]; !ok {
			t.Errorf("missing error for %s: %v", field, vErr.Fields)
		}
	}
}

func TestCompleteOnboarding(t *testing.T) {
	var sent []models.ChatMessage
	f := newCoachFixture(t, completerFunc(func(_ context.Context, _ string, msgs []models.ChatMessage) (string, error) {
		sent = msgs
		return sessionReply, nil
	}))
	userID := uuid.New()

	reply, err := f.svc.CompleteOnboarding(context.Background(), userID, completeAnswers())
	if err != nil {
		t.Fatal(err)
	}
	if len(reply.PendingSessions) != 1 {
		t.Errorf("first turn should extract the proposed session: %+v", reply)
	}
	if f.profiles.upserts != 1 || f.profiles.profile.Goal != "Remise en forme" {
		t.Errorf("profile not saved: %+v", f.profiles.profile)
	}
	if last := sent[len(sent)-1]; !strings.HasPrefix(last.Content, "Résumé des infos :") {
		t.Errorf("first user message = %q", last.Content)
	}
	conv, _ := f.convs.Get(context.Background(), userID)
	if !conv.OnboardingDone {
		t.Error("conversation should be marked onboarded")
	}
}
