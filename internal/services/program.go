package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"coach-backend/internal/models"
	"coach-backend/internal/program"
	"coach-backend/internal/repository"
)

// ProgramService loads, mutates and saves the user's program row. Every
// mutation stamps a new updated_at.
type ProgramService struct {
	programs      programRepository
	conversations conversationRepository
	publisher     Publisher
	loc           *time.Location
	now           func() time.Time
}

func NewProgramService(programs programRepository, conversations conversationRepository, publisher Publisher, loc *time.Location) *ProgramService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ProgramService{
		programs:      programs,
		conversations: conversations,
		publisher:     publisher,
		loc:           loc,
		now:           time.Now,
	}
}

// Get returns the stored program, or an empty one with a zero stamp.
func (s *ProgramService) Get(ctx context.Context, userID uuid.UUID) (*models.Program, error) {
	p, err := s.programs.Get(ctx, userID)
	if isNotFound(err) {
		return &models.Program{ID: userID, Sessions: []models.ProgramSession{}}, nil
	}
	return p, err
}

// Put stores a client-written program under last-write-wins.
func (s *ProgramService) Put(ctx context.Context, userID uuid.UUID, p *models.Program) (*models.Program, error) {
	if p.UpdatedAt.IsZero() {
		return nil, &ValidationError{Fields: map[string]string{"updated_at": "required"}}
	}
	p.ID = userID
	p.UpdatedAt = models.Stamp(p.UpdatedAt)
	if p.Sessions == nil {
		p.Sessions = []models.ProgramSession{}
	}

	err := s.programs.UpsertIfNewer(ctx, p)
	if errors.Is(err, repository.ErrStale) {
		current, getErr := s.programs.Get(ctx, userID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &ConflictError{Message: "A newer program is stored", Current: current}
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, userID, p.UpdatedAt)
	return p, nil
}

// Commit moves pending drafts into the program: all of them when draftID is
// empty, otherwise the one with that id. Committed drafts leave the pending list.
func (s *ProgramService) Commit(ctx context.Context, userID uuid.UUID, draftID string) (*models.Program, error) {
	conv, err := s.conversations.Get(ctx, userID)
	if isNotFound(err) {
		return nil, &NotFoundError{Message: "No pending sessions"}
	}
	if err != nil {
		return nil, err
	}

	var drafts, remaining []models.SessionDraft
	for _, d := range conv.PendingSessions {
		if draftID == "" || d.ID == draftID {
			drafts = append(drafts, d)
		} else {
			remaining = append(remaining, d)
		}
	}
	if len(drafts) == 0 {
		if draftID != "" {
			return nil, &NotFoundError{Message: "Draft not found"}
		}
		return nil, &NotFoundError{Message: "No pending sessions"}
	}

	prog, err := s.mutate(ctx, userID, func(sessions []models.ProgramSession) ([]models.ProgramSession, error) {
		return program.CommitAll(sessions, drafts), nil
	})
	if err != nil {
		return nil, err
	}

	if remaining == nil {
		remaining = []models.SessionDraft{}
	}
	conv.PendingSessions = remaining
	conv.UpdatedAt = models.Stamp(s.now())
	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, userID, models.WSMessage{
		Type:    models.EventConversationUpdated,
		Payload: models.UpdatedEvent{UpdatedAt: conv.UpdatedAt},
	})
	return prog, nil
}

func (s *ProgramService) MarkDone(ctx context.Context, userID uuid.UUID, sessionID, feedback string) (*models.Program, error) {
	fb, ok := models.ParseFeedback(feedback)
	if !ok {
		return nil, programError(program.ErrInvalidFeedback)
	}
	return s.mutate(ctx, userID, func(sessions []models.ProgramSession) ([]models.ProgramSession, error) {
		return program.MarkDone(sessions, sessionID, fb, s.now())
	})
}

func (s *ProgramService) Reset(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Program, error) {
	return s.mutate(ctx, userID, func(sessions []models.ProgramSession) ([]models.ProgramSession, error) {
		return program.Reset(sessions, sessionID)
	})
}

func (s *ProgramService) Delete(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Program, error) {
	return s.mutate(ctx, userID, func(sessions []models.ProgramSession) ([]models.ProgramSession, error) {
		return program.Delete(sessions, sessionID)
	})
}

func (s *ProgramService) Stats(ctx context.Context, userID uuid.UUID) (program.Stats, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return program.Stats{}, err
	}
	return program.ComputeStats(p.Sessions, s.now().In(s.loc)), nil
}

func (s *ProgramService) mutate(ctx context.Context, userID uuid.UUID, op func([]models.ProgramSession) ([]models.ProgramSession, error)) (*models.Program, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := op(p.Sessions)
	if err != nil {
		return nil, programError(err)
	}

	p.Sessions = sessions
	p.UpdatedAt = models.Stamp(s.now())
	if err := s.programs.Save(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, userID, p.UpdatedAt)
	return p, nil
}

func (s *ProgramService) publish(ctx context.Context, userID uuid.UUID, at time.Time) {
	s.publisher.Publish(ctx, userID, models.WSMessage{
		Type:    models.EventProgramUpdated,
		Payload: models.UpdatedEvent{UpdatedAt: at},
	})
}
