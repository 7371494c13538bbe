package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"coach-backend/internal/models"
)

const (
	defaultSex      = "Homme"
	defaultWeightKg = 70.0
)

type OnboardingQuestion struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Options     []string `json:"options"`
	MultiSelect bool     `json:"multi_select,omitempty"`
	// DetailID names the free-text answer required when DetailWhen is chosen.
	DetailID   string `json:"detail_id,omitempty"`
	DetailWhen string `json:"detail_when,omitempty"`
}

var onboardingQuestions = []OnboardingQuestion{
	{
		ID:      "objectif",
		Label:   "Quel est ton objectif principal ?",
		Options: []string{"Perte de poids", "Remise en forme", "Performance", "Bien-être", "Autre"},
	},
	{
		ID:      "experience",
		Label:   "Quel est ton niveau actuel ?",
		Options: []string{"Débutant", "Intermédiaire", "Avancé", "Retour après pause"},
	},
	{
		ID:         "injuries",
		Label:      "As-tu des blessures ou antécédents médicaux à signaler ?",
		Options:    []string{"Non", "Oui"},
		DetailID:   "injuries_detail",
		DetailWhen: "Oui",
	},
	{
		ID:      "lieu",
		Label:   "Où t'entraînes-tu le plus souvent ?",
		Options: []string{"Maison", "Salle", "Extérieur", "Mixte", "Autre"},
	},
	{
		ID:          "materiel",
		Label:       "Quel matériel as-tu à disposition ?",
		Options:     []string{"Aucun", "Tapis / élastiques", "Haltères", "Vélo / tapis de course", "Mixte", "Autre"},
		MultiSelect: true,
	},
	{
		ID:      "rythme",
		Label:   "Combien de séances par semaine veux-tu faire ?",
		Options: []string{"1", "2", "3", "4+", "Variable"},
	},
}

func OnboardingQuestions() []OnboardingQuestion {
	out := make([]OnboardingQuestion, len(onboardingQuestions))
	copy(out, onboardingQuestions)
	return out
}

// ValidateAnswers checks that every question is answered. Answers outside
// the option list are free-text "Autre" answers and are accepted.
func ValidateAnswers(answers models.OnboardingAnswers) error {
	fields := map[string]string{}
	for _, q := range onboardingQuestions {
		vals := nonEmpty(answers[q.ID])
		switch {
		case len(vals) == 0:
			fields[q.ID] = "required"
		case !q.MultiSelect && len(vals) > 1:
			fields[q.ID] = "single answer expected"
		}
		if q.DetailID != "" && first(vals) == q.DetailWhen && len(nonEmpty(answers[q.DetailID])) == 0 {
			fields[q.DetailID] = "required"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// OnboardingSummary is the user message that opens the first coach turn.
func OnboardingSummary(answers models.OnboardingAnswers) string {
	lines := []string{
		"Résumé des infos :",
		"- Objectif : " + answerDisplay(answers["objectif"]),
		"- Niveau : " + answerDisplay(answers["experience"]),
		"- Blessures : " + answerDisplay(answers["injuries"]),
	}
	if first(answers["injuries"]) == "Oui" {
		detail := first(answers["injuries_detail"])
		if detail == "" {
			detail = "non précisé"
		}
		lines = append(lines, "- Détails blessures : "+detail)
	}
	lines = append(lines,
		"- Lieu : "+answerDisplay(answers["lieu"]),
		"- Matériel : "+answerDisplay(answers["materiel"]),
		"- Rythme : "+answerDisplay(answers["rythme"])+" séances/sem",
	)
	return strings.Join(lines, "\n")
}

// ProfileFromAnswers fills the coaching fields of a profile from onboarding
// answers. Identity fields come from existing when set.
func ProfileFromAnswers(existing *models.Profile, answers models.OnboardingAnswers) models.Profile {
	var p models.Profile
	if existing != nil {
		p = *existing
	}
	if strings.TrimSpace(p.Sex) == "" {
		p.Sex = defaultSex
	}
	if p.WeightKg == nil {
		w := defaultWeightKg
		p.WeightKg = &w
	}
	p.Goal = answerDisplay(answers["objectif"])
	p.Level = answerDisplay(answers["experience"])
	p.Location = answerDisplay(answers["lieu"])
	p.Equipment = answerDisplay(answers["materiel"])
	if first(answers["injuries"]) == "Oui" {
		p.Injuries = first(answers["injuries_detail"])
		if p.Injuries == "" {
			p.Injuries = "Blessure non précisée"
		}
	} else {
		p.Injuries = "Aucune"
	}
	return p
}

func answerDisplay(vals []string) string {
	vals = nonEmpty(vals)
	if len(vals) == 0 {
		return "?"
	}
	return strings.Join(vals, ", ")
}

func first(vals []string) string {
	vals = nonEmpty(vals)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// CompleteOnboarding saves the profile derived from answers, marks the
// conversation onboarded and opens the first coach turn with the summary.
func (s *CoachService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, answers models.OnboardingAnswers) (*models.CoachReply, error) {
	if err := ValidateAnswers(answers); err != nil {
		return nil, err
	}

	existing, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := ProfileFromAnswers(existing, answers)
	profile.ID = userID
	profile.UpdatedAt = models.Stamp(s.now())
	if err := s.profiles.Upsert(ctx, &profile); err != nil {
		return nil, err
	}

	conv, err := s.conversations.Get(ctx, userID)
	if isNotFound(err) {
		conv, err = s.freshConversation(userID, &profile), nil
	}
	if err != nil {
		return nil, err
	}
	conv.OnboardingDone = true
	conv.UpdatedAt = models.Stamp(s.now())
	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}

	return s.Reply(ctx, userID, OnboardingSummary(answers))
}
