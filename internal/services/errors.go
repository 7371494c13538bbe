package services

import (
	"errors"

	"coach-backend/internal/program"
	"coach-backend/internal/repository"
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct {
	Message string
	Current any
}

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// UpstreamError wraps a failed completion call.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string { return e.Provider + ": " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// programError maps pure program errors onto service errors.
func programError(err error) error {
	switch {
	case errors.Is(err, program.ErrSessionNotFound):
		return &NotFoundError{Message: "Session not found"}
	case errors.Is(err, program.ErrInvalidFeedback):
		return &ValidationError{Fields: map[string]string{"feedback": "must be one of easy, ok, hard, too_hard"}}
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
