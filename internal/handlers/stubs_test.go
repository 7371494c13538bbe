package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"coach-backend/internal/catalog"
	"coach-backend/internal/models"
	"coach-backend/internal/repository"
	"coach-backend/internal/services"
)

const sessionReply = `Voici ta séance du jour !

Séance : Footing sous la pluie (30 min)
## Échauffement
- 5 min de marche rapide
## Course à pied
- 20 min en endurance fondamentale
## Conseils
- Prends une veste imperméable

Bonne séance !`

type stubConversationRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Conversation
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
	if cur, ok := r.rows[c.ID]; !ok || !cur.UpdatedAt.Equal(version) {
		return repository.ErrStale
	}
	r.rows[c.ID] = *c
	return nil
}

type stubProgramRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Program
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
}

func (r *stubProfileRepo) Get(context.Context, uuid.UUID) (*models.Profile, error) {
	if r.profile == nil {
		return nil, repository.ErrNotFound
	}
	p := *r.profile
	return &p, nil
}

func (r *stubProfileRepo) Upsert(_ context.Context, p *models.Profile) error {
	cp := *p
	r.profile = &cp
	return nil
}

type stubJobRepo struct {
	jobs map[uuid.UUID]*models.Job
}

func (r *stubJobRepo) Create(_ context.Context, j *models.Job) error {
	j.ID = uuid.New()
	j.Status = "pending"
	r.jobs[j.ID] = j
	return nil
}

func (r *stubJobRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return j, nil
}

func (r *stubJobRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	if j, ok := r.jobs[id]; ok {
		j.Status = status
	}
	return nil
}

type completerFunc func(ctx context.Context, system string, msgs []models.ChatMessage) (string, error)

func (f completerFunc) Complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error) {
	return f(ctx, system, msgs)
}

func replyWith(text string) completerFunc {
	return func(context.Context, string, []models.ChatMessage) (string, error) {
		return text, nil
	}
}

type fixture struct {
	convs    *stubConversationRepo
	programs *stubProgramRepo
	profiles *stubProfileRepo
	catalog  *catalog.Catalog
	coach    *services.CoachService
	program  *services.ProgramService
}

func newFixture(llm services.Completer) *fixture {
	cat, err := catalog.Load()
	if err != nil {
		panic(err)
	}
	f := &fixture{
		convs:    &stubConversationRepo{rows: map[uuid.UUID]models.Conversation{}},
		programs: &stubProgramRepo{rows: map[uuid.UUID]models.Program{}},
		profiles: &stubProfileRepo{},
		catalog:  cat,
	}
	f.coach = services.NewCoachService(f.convs, f.programs, f.profiles, llm, cat, nil, time.UTC)
	f.program = services.NewProgramService(f.programs, f.convs, nil, time.UTC)
	return f
}
