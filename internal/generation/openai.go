package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fafnerzhang/codetrekking/internal/config"
)

// openAIClient talks to an OpenAI-compatible chat-completions endpoint with a
// JSON-schema response format.
type openAIClient struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	http    *http.Client
}

// NewOpenAIClient builds a Client from configuration. The configured timeout
// is applied per call; an overrun surfaces as a Timeout failure.
func NewOpenAIClient(cfg config.GenerationConfig) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("generation base_url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &openAIClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: timeout,
		http:    &http.Client{},
	}, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Generate(ctx context.Context, prompt string, schema *Schema, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: &responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchema{Name: schema.Name, Strict: true, Schema: schema.Raw()},
		},
	})
	if err != nil {
		return failf(TransportError, err, "encode request")
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return failf(TransportError, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return failf(Timeout, err, "generation call exceeded %s", c.timeout)
		}
		return failf(TransportError, err, "backend call failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return failf(TransportError, err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failf(TransportError, nil, "backend returned %d: %s", resp.StatusCode, truncate(payload, 512))
	}

	var chat chatResponse
	if err := json.Unmarshal(payload, &chat); err != nil {
		return failf(NoStructuredOutput, err, "undecodable response envelope")
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return failf(NoStructuredOutput, nil, "backend returned no content")
	}

	content := []byte(chat.Choices[0].Message.Content)
	if err := schema.Check(content); err != nil {
		return failf(NoStructuredOutput, err, "rejected non-conforming output")
	}
	if err := json.Unmarshal(content, out); err != nil {
		return failf(NoStructuredOutput, err, "decode structured output")
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s... (%d bytes)", b[:n], len(b))
}
