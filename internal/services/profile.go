package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"coach-backend/internal/models"
)

type profileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}

type ProfileService struct {
	repo profileRepository
	now  func() time.Time
}

func NewProfileService(repo profileRepository) *ProfileService {
	return &ProfileService{repo: repo, now: time.Now}
}

// Get returns the stored profile, or nil when the user has none yet.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if isNotFound(err) {
		return nil, nil
	}
	return p, err
}

func (s *ProfileService) Save(ctx context.Context, userID uuid.UUID, p *models.Profile) error {
	fields := map[string]string{}
	if p.WeightKg != nil && (*p.WeightKg <= 0 || *p.WeightKg > 400) {
		fields["weight_kg"] = "must be between 0 and 400"
	}
	if p.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", p.BirthDate); err != nil {
			fields["birth_date"] = "must be YYYY-MM-DD"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	p.ID = userID
	p.Name = strings.TrimSpace(p.Name)
	p.UpdatedAt = models.Stamp(s.now())
	return s.repo.Upsert(ctx, p)
}

// ProfileSummary is the one-line profile description given to the coach.
func ProfileSummary(p *models.Profile) string {
	if p == nil {
		return noProfile
	}
	weight := ""
	if p.WeightKg != nil {
		weight = strconv.FormatFloat(*p.WeightKg, 'f', -1, 64)
	}
	parts := []string{
		"Prénom: " + orUnknown(p.Name),
		"Date de naissance: " + orUnknown(p.BirthDate),
		"Poids (kg): " + orUnknown(weight),
		"Sexe: " + orUnknown(p.Sex),
		"Objectif: " + orUnknown(p.Goal),
		"Niveau: " + orUnknown(p.Level),
		"Lieu: " + orUnknown(p.Location),
		"Matériel: " + orUnknown(p.Equipment),
		"Blessures: " + orUnknown(p.Injuries),
	}
	return strings.Join(parts, " | ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "?"
	}
	return s
}
