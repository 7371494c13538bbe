package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"coach-backend/internal/models"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Get(ctx context.Context, userID uuid.UUID) (*models.Conversation, error) {
	c := &models.Conversation{}
	var messages, pending []byte
	query := `SELECT id, messages, pending_sessions, onboarding_done, updated_at
		FROM user_conversations WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(&c.ID, &messages, &pending, &c.OnboardingDone, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(messages, &c.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if err := json.Unmarshal(pending, &c.PendingSessions); err != nil {
		return nil, fmt.Errorf("decode pending sessions: %w", err)
	}
	if c.Messages == nil {
		c.Messages = []models.ChatMessage{}
	}
	if c.PendingSessions == nil {
		c.PendingSessions = []models.SessionDraft{}
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

// Save writes the row unconditionally.
func (r *ConversationRepo) Save(ctx context.Context, c *models.Conversation) error {
	messages, pending, err := encodeConversation(c)
	if err != nil {
		return err
	}
	query := `INSERT INTO user_conversations (id, messages, pending_sessions, onboarding_done, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			messages = EXCLUDED.messages,
			pending_sessions = EXCLUDED.pending_sessions,
			onboarding_done = EXCLUDED.onboarding_done,
			updated_at = EXCLUDED.updated_at`

	_, err = r.pool.Exec(ctx, query, c.ID, messages, pending, c.OnboardingDone, c.UpdatedAt)
	return err
}

// UpsertIfNewer writes the row only when c.UpdatedAt is strictly newer than
// the stored stamp. It returns ErrStale otherwise.
func (r *ConversationRepo) UpsertIfNewer(ctx context.Context, c *models.Conversation) error {
	messages, pending, err := encodeConversation(c)
	if err != nil {
		return err
	}
	query := `INSERT INTO user_conversations (id, messages, pending_sessions, onboarding_done, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			messages = EXCLUDED.messages,
			pending_sessions = EXCLUDED.pending_sessions,
			onboarding_done = EXCLUDED.onboarding_done,
			updated_at = EXCLUDED.updated_at
		WHERE user_conversations.updated_at < EXCLUDED.updated_at`

	tag, err := r.pool.Exec(ctx, query, c.ID, messages, pending, c.OnboardingDone, c.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStale
	}
	return nil
}

// SaveIfVersion writes the row only while the stored stamp still equals
// version. It returns ErrStale when another write got there first.
func (r *ConversationRepo) SaveIfVersion(ctx context.Context, c *models.Conversation, version time.Time) error {
	messages, pending, err := encodeConversation(c)
	if err != nil {
		return err
	}
	query := `UPDATE user_conversations
		SET messages = $2, pending_sessions = $3, onboarding_done = $4, updated_at = $5
		WHERE id = $1 AND updated_at = $6`

	tag, err := r.pool.Exec(ctx, query, c.ID, messages, pending, c.OnboardingDone, c.UpdatedAt, version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStale
	}
	return nil
}

func encodeConversation(c *models.Conversation) (messages, pending []byte, err error) {
	msgs := c.Messages
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	drafts := c.PendingSessions
	if drafts == nil {
		drafts = []models.SessionDraft{}
	}
	if messages, err = json.Marshal(msgs); err != nil {
		return nil, nil, fmt.Errorf("encode messages: %w", err)
	}
	if pending, err = json.Marshal(drafts); err != nil {
		return nil, nil, fmt.Errorf("encode pending sessions: %w", err)
	}
	return messages, pending, nil
}
