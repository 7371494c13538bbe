package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coach-backend/internal/models"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Séance : Footing"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL+"/", "", 0.7, 2)
	out, err := c.Complete(context.Background(), "system prompt", []models.ChatMessage{
		{Role: models.RoleUser, Content: "Salut"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "Séance : Footing" {
		t.Errorf("Complete() = %q", out)
	}

	if got.Model != DefaultOpenAIModel {
		t.Errorf("model = %q, want %q", got.Model, DefaultOpenAIModel)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "Salut" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`},
		{"server error", http.StatusBadGateway, `{}`},
		{"not json", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewOpenAIClient("sk-test", srv.URL, "gpt-test", 0.7, 1)
			_, err := c.Complete(context.Background(), "sys", []models.ChatMessage{{Role: models.RoleUser, Content: "x"}})

			var upstream *UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("error = %v, want *UpstreamError", err)
			}
		})
	}
}

func TestRateGate_CancelledContext(t *testing.T) {
	g := newRateGate(1)
	if err := g.acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("acquire on full gate = %v, want context.Canceled", err)
	}

	g.release()
	if err := g.acquire(context.Background()); err != nil {
		t.Errorf("acquire after release: %v", err)
	}
}
