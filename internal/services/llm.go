package services

import (
	"context"
	"fmt"
	"time"

	"coach-backend/internal/models"
)

const (
	DefaultOpenAIModel = "gpt-4.1-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultTemperature = 0.7
)

// Completer produces the assistant's next message for a transcript.
type Completer interface {
	Complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error)
}

// rateGate is a token bucket bounding in-flight completions.
type rateGate chan struct{}

func newRateGate(n int) rateGate {
	if n < 1 {
		n = 1
	}
	g := make(rateGate, n)
	for i := 0; i < n; i++ {
		g <- struct{}{}
	}
	return g
}

// acquire blocks until a slot is available.
func (g rateGate) acquire(ctx context.Context) error {
	select {
	case <-g:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for completion slot")
	}
}

func (g rateGate) release() {
	g <- struct{}{}
}
