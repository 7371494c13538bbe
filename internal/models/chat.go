package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload of the stateless completion relay.
// Field names follow the web client's camelCase contract.
type ChatRequest struct {
	Messages        []ChatMessage `json:"messages"`
	FeedbackSummary string        `json:"feedbackSummary,omitempty"`
	ProfileSummary  string        `json:"profileSummary,omitempty"`
}

// ChatResponse is the reply from the completion relay.
type ChatResponse struct {
	Content string `json:"content"`
}

// CoachMessageRequest is the payload of a stateful coach turn.
type CoachMessageRequest struct {
	Message string `json:"message"`
}

// CoachReply is the outcome of a coach turn.
type CoachReply struct {
	Message         ChatMessage    `json:"message"`
	PendingSessions []SessionDraft `json:"pending_sessions"`
	UpstreamFailed  bool           `json:"upstream_failed"`
	Stale           bool           `json:"stale"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
