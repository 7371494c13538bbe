package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"coach-backend/internal/models"
)

type ProgramRepo struct {
	pool *pgxpool.Pool
}

func NewProgramRepo(pool *pgxpool.Pool) *ProgramRepo {
	return &ProgramRepo{pool: pool}
}

func (r *ProgramRepo) Get(ctx context.Context, userID uuid.UUID) (*models.Program, error) {
	p := &models.Program{}
	var sessions []byte
	err := r.pool.QueryRow(ctx,
		"SELECT id, sessions, updated_at FROM user_programs WHERE id = $1", userID,
	).Scan(&p.ID, &sessions, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(sessions, &p.Sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	if p.Sessions == nil {
		p.Sessions = []models.ProgramSession{}
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *ProgramRepo) Save(ctx context.Context, p *models.Program) error {
	sessions, err := encodeSessions(p.Sessions)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO user_programs (id, sessions, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET sessions = EXCLUDED.sessions, updated_at = EXCLUDED.updated_at`,
		p.ID, sessions, p.UpdatedAt,
	)
	return err
}

// UpsertIfNewer is ConversationRepo.UpsertIfNewer for the program row.
func (r *ProgramRepo) UpsertIfNewer(ctx context.Context, p *models.Program) error {
	sessions, err := encodeSessions(p.Sessions)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `INSERT INTO user_programs (id, sessions, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET sessions = EXCLUDED.sessions, updated_at = EXCLUDED.updated_at
		WHERE user_programs.updated_at < EXCLUDED.updated_at`,
		p.ID, sessions, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStale
	}
	return nil
}

func encodeSessions(sessions []models.ProgramSession) ([]byte, error) {
	if sessions == nil {
		sessions = []models.ProgramSession{}
	}
	b, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("encode sessions: %w", err)
	}
	return b, nil
}
