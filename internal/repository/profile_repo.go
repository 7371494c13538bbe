package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"coach-backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	var birthDate *string
	query := `SELECT id, name, to_char(birth_date, 'YYYY-MM-DD'), weight_kg, sex, goal, level,
		location, equipment, injuries, updated_at
		FROM profiles WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.Name, &birthDate, &p.WeightKg, &p.Sex, &p.Goal, &p.Level,
		&p.Location, &p.Equipment, &p.Injuries, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if birthDate != nil {
		p.BirthDate = *birthDate
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, p *models.Profile) error {
	query := `INSERT INTO profiles (id, name, birth_date, weight_kg, sex, goal, level, location, equipment, injuries, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::date, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			birth_date = EXCLUDED.birth_date,
			weight_kg = EXCLUDED.weight_kg,
			sex = EXCLUDED.sex,
			goal = EXCLUDED.goal,
			level = EXCLUDED.level,
			location = EXCLUDED.location,
			equipment = EXCLUDED.equipment,
			injuries = EXCLUDED.injuries,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.BirthDate, p.WeightKg, p.Sex, p.Goal, p.Level,
		p.Location, p.Equipment, p.Injuries, p.UpdatedAt,
	)
	return err
}
