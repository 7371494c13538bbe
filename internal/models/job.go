package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobTypeCoachReply = "coach-reply"
	QueueCoachReply   = "queue:coach-reply"
)

type Job struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         string          `json:"type"` // "coach-reply"
	ConfigJSON   json.RawMessage `json:"config"`
	ResultJSON   json.RawMessage `json:"result,omitempty"`
	Status       string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	RetryCount   int             `json:"retry_count"`
	MaxRetries   int             `json:"max_retries"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

// CoachJobConfig is the payload of a queued coach turn.
type CoachJobConfig struct {
	Message string `json:"message"`
}

// WebSocket message types
const (
	EventConversationUpdated = "conversation_updated"
	EventProgramUpdated      = "program_updated"
	EventJobCompleted        = "job_completed"
	EventJobFailed           = "job_failed"
	EventStatusUpdate        = "status_update"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID    uuid.UUID `json:"job_id"`
	Step     int       `json:"step"`
	StepName string    `json:"step_name"`
}

type UpdatedEvent struct {
	UpdatedAt time.Time `json:"updated_at"`
}

type CompletedEvent struct {
	JobID uuid.UUID  `json:"job_id"`
	Reply CoachReply `json:"reply"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

// ErrorResponse is the error envelope. Current carries the stored row when a
// write loses a last-write-wins comparison.
type ErrorResponse struct {
	Error   APIError `json:"error"`
	Current any      `json:"current,omitempty"`
}
