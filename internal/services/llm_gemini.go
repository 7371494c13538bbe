package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"coach-backend/internal/models"
)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	gate   rateGate
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float64, concurrent int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(float32(temperature))
	m.SetTopP(0.95)

	return &GeminiClient{
		client: client,
		model:  m,
		gate:   newRateGate(concurrent),
	}, nil
}

func (g *GeminiClient) Close() {
	g.client.Close()
}

func (g *GeminiClient) Complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error) {
	if len(msgs) == 0 {
		return "", fmt.Errorf("empty transcript")
	}
	if err := g.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer g.gate.release()

	// The model is shared; the system instruction is per call.
	m := *g.model
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	cs := m.StartChat()
	history, last := geminiHistory(msgs)
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", &UpstreamError{Provider: "gemini", Err: err}
	}
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}
	return extractText(resp), nil
}

// geminiHistory splits a transcript into prior turns and the message to send.
// Gemini names the assistant role "model".
func geminiHistory(msgs []models.ChatMessage) ([]*genai.Content, string) {
	history := make([]*genai.Content, 0, len(msgs)-1)
	for _, msg := range msgs[:len(msgs)-1] {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return history, msgs[len(msgs)-1].Content
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
