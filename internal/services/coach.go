package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"coach-backend/internal/catalog"
	"coach-backend/internal/models"
	"coach-backend/internal/parser"
	"coach-backend/internal/program"
	"coach-backend/internal/repository"
)

const maxMessageLength = 4000

type conversationRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Conversation, error)
	Save(ctx context.Context, c *models.Conversation) error
	UpsertIfNewer(ctx context.Context, c *models.Conversation) error
	SaveIfVersion(ctx context.Context, c *models.Conversation, version time.Time) error
}

type programRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Program, error)
	Save(ctx context.Context, p *models.Program) error
	UpsertIfNewer(ctx context.Context, p *models.Program) error
}

// CoachService runs coach turns against the user's stored conversation.
type CoachService struct {
	conversations conversationRepository
	programs      programRepository
	profiles      profileRepository
	llm           Completer
	catalog       *catalog.Catalog
	publisher     Publisher
	loc           *time.Location
	now           func() time.Time
}

func NewCoachService(
	conversations conversationRepository,
	programs programRepository,
	profiles profileRepository,
	llm Completer,
	cat *catalog.Catalog,
	publisher Publisher,
	loc *time.Location,
) *CoachService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CoachService{
		conversations: conversations,
		programs:      programs,
		profiles:      profiles,
		llm:           llm,
		catalog:       cat,
		publisher:     publisher,
		loc:           loc,
		now:           time.Now,
	}
}

// Greeting opens every new conversation.
func Greeting(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Nouvelle discussion 👍 On commence par quelques questions rapides."
	}
	return "Nouvelle discussion 👍 Content de te revoir, " + name + ". On commence par quelques questions rapides."
}

// Relay completes a client-held transcript without touching stored state.
// Upstream failures come back as the apology message.
func (s *CoachService) Relay(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	if err := validateTranscript(req.Messages); err != nil {
		return models.ChatResponse{}, err
	}
	content, failed := s.complete(ctx, SystemPrompt(req.FeedbackSummary, req.ProfileSummary), req.Messages)
	if failed {
		content = ApologyMessage
	}
	return models.ChatResponse{Content: content}, nil
}

// Conversation returns the stored conversation, or a fresh unsaved one.
func (s *CoachService) Conversation(ctx context.Context, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.conversations.Get(ctx, userID)
	if err == nil {
		return conv, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.freshConversation(userID, profile), nil
}

// NewConversation resets the transcript to the greeting and clears pending
// drafts and the onboarding flag.
func (s *CoachService) NewConversation(ctx context.Context, userID uuid.UUID) (*models.Conversation, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	conv := s.freshConversation(userID, profile)
	conv.UpdatedAt = models.Stamp(s.now())
	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, userID, models.EventConversationUpdated, conv.UpdatedAt)
	return conv, nil
}

// PutConversation stores a client-written conversation under last-write-wins.
// A write that is not strictly newer fails with a ConflictError carrying the
// stored row.
func (s *CoachService) PutConversation(ctx context.Context, userID uuid.UUID, conv *models.Conversation) (*models.Conversation, error) {
	if conv.UpdatedAt.IsZero() {
		return nil, &ValidationError{Fields: map[string]string{"updated_at": "required"}}
	}
	conv.ID = userID
	conv.UpdatedAt = models.Stamp(conv.UpdatedAt)
	if conv.Messages == nil {
		conv.Messages = []models.ChatMessage{}
	}
	if conv.PendingSessions == nil {
		conv.PendingSessions = []models.SessionDraft{}
	}

	err := s.conversations.UpsertIfNewer(ctx, conv)
	if errors.Is(err, repository.ErrStale) {
		current, getErr := s.conversations.Get(ctx, userID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &ConflictError{Message: "A newer conversation is stored", Current: current}
	}
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, userID, models.EventConversationUpdated, conv.UpdatedAt)
	return conv, nil
}

// Reply runs one coach turn: the user message is saved first, then the
// completion is extracted into pending drafts and saved only if no other turn
// wrote the conversation in the meantime.
func (s *CoachService) Reply(ctx context.Context, userID uuid.UUID, text string) (*models.CoachReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "required"}}
	}
	if len([]rune(text)) > maxMessageLength {
		return nil, &ValidationError{Fields: map[string]string{"message": "too long"}}
	}

	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	conv, err := s.conversations.Get(ctx, userID)
	if isNotFound(err) {
		conv, err = s.freshConversation(userID, profile), nil
	}
	if err != nil {
		return nil, err
	}

	conv.Messages = append(conv.Messages, models.ChatMessage{Role: models.RoleUser, Content: text})
	conv.UpdatedAt = models.Stamp(s.now())
	version := conv.UpdatedAt
	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, userID, models.EventConversationUpdated, version)

	feedback, err := s.feedbackSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	content, failed := s.complete(ctx, SystemPrompt(feedback, ProfileSummary(profile)), conv.Messages)

	reply := &models.CoachReply{UpstreamFailed: failed, PendingSessions: conv.PendingSessions}
	if failed {
		content = ApologyMessage
	} else {
		reply.PendingSessions = parser.ExtractSessions(content, parser.Options{Suggest: s.suggester(profile)})
	}
	reply.Message = models.ChatMessage{Role: models.RoleAssistant, Content: content}

	conv.Messages = append(conv.Messages, reply.Message)
	conv.PendingSessions = reply.PendingSessions
	conv.UpdatedAt = models.Stamp(s.now())
	if !conv.UpdatedAt.After(version) {
		conv.UpdatedAt = version.Add(time.Microsecond)
	}

	err = s.conversations.SaveIfVersion(ctx, conv, version)
	if errors.Is(err, repository.ErrStale) {
		log.Printf("coach reply for user %s dropped: conversation changed during the turn", userID)
		reply.Stale = true
		return reply, nil
	}
	if err != nil {
		return nil, err
	}

	reply.UpdatedAt = conv.UpdatedAt
	s.publishUpdated(ctx, userID, models.EventConversationUpdated, conv.UpdatedAt)
	return reply, nil
}

// Render parses an assistant message of the stored conversation for display.
// A nil index selects the latest assistant message, which is the greeting
// until the first reply.
func (s *CoachService) Render(ctx context.Context, userID uuid.UUID, index *int) (RenderedMessage, error) {
	conv, err := s.Conversation(ctx, userID)
	if err != nil {
		return RenderedMessage{}, err
	}

	i := -1
	if index != nil {
		if *index < 0 || *index >= len(conv.Messages) {
			return RenderedMessage{}, &NotFoundError{Message: "Message not found"}
		}
		i = *index
	} else {
		for j := len(conv.Messages) - 1; j >= 0; j-- {
			if conv.Messages[j].Role == models.RoleAssistant {
				i = j
				break
			}
		}
		if i < 0 {
			return RenderedMessage{}, &NotFoundError{Message: "No assistant message yet"}
		}
	}

	profile, err := s.profile(ctx, userID)
	if err != nil {
		return RenderedMessage{}, err
	}
	return RenderMessage(conv.Messages[i].Content, conv.PendingSessions, sexOf(profile), s.catalog), nil
}

func (s *CoachService) freshConversation(userID uuid.UUID, profile *models.Profile) *models.Conversation {
	name := ""
	if profile != nil {
		name = profile.Name
	}
	return &models.Conversation{
		ID:              userID,
		Messages:        []models.ChatMessage{{Role: models.RoleAssistant, Content: Greeting(name)}},
		PendingSessions: []models.SessionDraft{},
	}
}

// complete calls the provider and reports whether the call failed.
func (s *CoachService) complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, bool) {
	if s.llm == nil {
		log.Println("WARNING: no completion provider configured")
		return "", true
	}
	content, err := s.llm.Complete(ctx, system, msgs)
	if err != nil {
		log.Printf("completion failed: %v", err)
		return "", true
	}
	return content, false
}

func (s *CoachService) feedbackSummary(ctx context.Context, userID uuid.UUID) (string, error) {
	prog, err := s.programs.Get(ctx, userID)
	if isNotFound(err) {
		return program.FeedbackSummary(nil, s.loc), nil
	}
	if err != nil {
		return "", err
	}
	return program.FeedbackSummary(prog.Sessions, s.loc), nil
}

func (s *CoachService) profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if isNotFound(err) {
		return nil, nil
	}
	return p, err
}

func (s *CoachService) suggester(profile *models.Profile) func(string) []string {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Suggester(sexOf(profile))
}

func (s *CoachService) publishUpdated(ctx context.Context, userID uuid.UUID, event string, at time.Time) {
	s.publisher.Publish(ctx, userID, models.WSMessage{Type: event, Payload: models.UpdatedEvent{UpdatedAt: at}})
}

func sexOf(p *models.Profile) catalog.Sex {
	if p == nil {
		return catalog.SexUnknown
	}
	return catalog.NormalizeSex(p.Sex)
}

func validateTranscript(msgs []models.ChatMessage) error {
	if len(msgs) == 0 {
		return &ValidationError{Fields: map[string]string{"messages": "required"}}
	}
	for _, m := range msgs {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			return &ValidationError{Fields: map[string]string{"messages": "role must be user or assistant"}}
		}
	}
	return nil
}
