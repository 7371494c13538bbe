package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coach-backend/internal/models"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient calls any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
	gate        rateGate
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewOpenAIClient(apiKey, baseURL, model string, temperature float64, concurrent int) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		gate: newRateGate(concurrent),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system string, msgs []models.ChatMessage) (string, error) {
	if err := c.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer c.gate.release()

	reqBody := openAIRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    make([]openAIMessage, 0, len(msgs)+1),
	}
	reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: "system", Content: system})
	for _, m := range msgs {
		reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: m.Role, Content: m.Content})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Provider: "openai", Err: fmt.Errorf("read response: %w", err)}
	}

	var chatResp openAIResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &UpstreamError{Provider: "openai", Err: fmt.Errorf("status %d: %w", resp.StatusCode, err)}
	}
	if chatResp.Error != nil {
		return "", &UpstreamError{Provider: "openai", Err: fmt.Errorf("%s", chatResp.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Provider: "openai", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if len(chatResp.Choices) == 0 {
		return "", nil
	}
	return chatResp.Choices[0].Message.Content, nil
}
