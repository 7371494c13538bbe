package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coach-backend/internal/models"
)

var (
	// ErrNoRow means the server has nothing stored for the user yet.
	ErrNoRow = errors.New("no remote row")
	// ErrConflict means the server kept a newer row than the one pushed.
	ErrConflict = errors.New("remote row is newer")
)

// Remote is the server side of the sync: whole-row reads and writes.
type Remote interface {
	GetConversation(ctx context.Context) (models.Conversation, error)
	PutConversation(ctx context.Context, conv models.Conversation) error
	GetProgram(ctx context.Context) (models.Program, error)
	PutProgram(ctx context.Context, prog models.Program) error
}

// HTTPRemote talks to the coach server's /api/v1 row endpoints.
type HTTPRemote struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPRemote(baseURL, token string) *HTTPRemote {
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *HTTPRemote) GetConversation(ctx context.Context) (models.Conversation, error) {
	var conv models.Conversation
	err := c.do(ctx, http.MethodGet, "/api/v1/conversation", nil, &conv)
	return conv, err
}

func (c *HTTPRemote) PutConversation(ctx context.Context, conv models.Conversation) error {
	return c.do(ctx, http.MethodPut, "/api/v1/conversation", conv, nil)
}

func (c *HTTPRemote) GetProgram(ctx context.Context) (models.Program, error) {
	var prog models.Program
	err := c.do(ctx, http.MethodGet, "/api/v1/program", nil, &prog)
	return prog, err
}

func (c *HTTPRemote) PutProgram(ctx context.Context, prog models.Program) error {
	return c.do(ctx, http.MethodPut, "/api/v1/program", prog, nil)
}

// Do sends an authenticated JSON request to the server and decodes the
// response into out when out is non-nil.
func (c *HTTPRemote) Do(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, method, path, in, out)
}

func (c *HTTPRemote) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNoRow
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode >= 300:
		var apiErr models.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
