package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"coach-backend/internal/models"
	"coach-backend/internal/repository"
)

type stubConversationRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]models.Conversation
	saves int
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{rows: map[uuid.UUID]models.Conversation{}}
}

func (r *stubConversationRepo) Get(_ context.Context, userID uuid.UUID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Messages = append([]models.ChatMessage(nil), c.Messages...)
	c.PendingSessions = append([]models.SessionDraft(nil), c.PendingSessions...)
	return &c, nil
}

func (r *stubConversationRepo) Save(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.rows[c.ID] = *c
	return nil
}

func (r *stubConversationRepo) UpsertIfNewer(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.rows[c.ID]; ok && !c.UpdatedAt.After(cur.UpdatedAt) {
		return repository.ErrStale
	}
	r.rows[c.ID] = *c
	return nil
}

func (r *stubConversationRepo) SaveIfVersion(_ context.Context, c *models.Conversation, version time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[c.ID]
	if !ok || !cur.UpdatedAt.Equal(version) {
		return repository.ErrStale
	}
	r.rows[c.ID] = *c
	return nil
}

type stubProgramRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Program
}

func newStubProgramRepo() *stubProgramRepo {
	return &stubProgramRepo{rows: map[uuid.UUID]models.Program{}}
}

func (r *stubProgramRepo) Get(_ context.Context, userID uuid.UUID) (*models.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Sessions = append([]models.ProgramSession(nil), p.Sessions...)
	return &p, nil
}

func (r *stubProgramRepo) Save(_ context.Context, p *models.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.ID] = *p
	return nil
}

func (r *stubProgramRepo) UpsertIfNewer(_ context.Context, p *models.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.rows[p.ID]; ok && !p.UpdatedAt.After(cur.UpdatedAt) {
		return repository.ErrStale
	}
	r.rows[p.ID] = *p
	return nil
}

type stubProfileRepo struct {
	profile *models.Profile
	upserts int
}

func (r *stubProfileRepo) Get(context.Context, uuid.UUID) (*models.Profile, error) {
	if r.profile == nil {
		return nil, repository.ErrNotFound
	}
	p := *r.profile
	return &p, nil
}

func (r *stubProfileRepo) Upsert(_ context.Context, p *models.Profile) error {
	r.upserts++
	cp := *p
	r.profile = &cp
	return nil
}

type completerFunc func(ctx context.Context, system string, msgs []models.ChatMessage) (string, error)

func (f completerFunc) Complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error) {
	return f(ctx, system, msgs)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, _ uuid.UUID, msg models.WSMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg.Type)
}

func (p *recordingPublisher) count(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == event {
			n++
		}
	}
	return n
}

// tickingClock advances one second per call so every stamp is distinct.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{t: time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}
