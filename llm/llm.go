// Package llm is the text-completion collaborator: a minimal client for an
// OpenAI-compatible chat-completions endpoint. By design it collapses every
// failure mode (transport error, non-2xx status, content-safety rejection,
// empty choice list) into an empty reply, which callers treat as "translation
// failed".
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenAI chat completions endpoint.
const DefaultBaseURL = "https://api.openai.com/v1/chat/completions"

const defaultTimeout = 60 * time.Second

// Client calls a chat-completions API with a single user message per request.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// Temperature applies to every request; translation wants it low.
	Temperature float64
}

// NewClient builds a Client with the default endpoint and timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:      apiKey,
		BaseURL:     DefaultBaseURL,
		HTTPClient:  &http.Client{Timeout: defaultTimeout},
		Temperature: 0.2,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends prompt to model and returns the reply text, trimmed. It
// returns "" on any failure; callers cannot (and should not) distinguish a
// broken backend from a rejected completion.
func (c *Client) Complete(ctx context.Context, model, prompt string) string {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.Temperature,
	})
	if err != nil {
		slog.Error("llm: marshal request", slog.Any("err", err))
		return ""
	}
	url := c.BaseURL
	if url == "" {
		url = DefaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("llm: build request", slog.Any("err", err))
		return ""
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := hc.Do(req)
	if err != nil {
		slog.Warn("llm: request failed", slog.String("model", model), slog.Any("err", err))
		return ""
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("llm: close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("llm: non-success status", slog.String("model", model), slog.Int("status", resp.StatusCode))
		return ""
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Warn("llm: decode response", slog.Any("err", err))
		return ""
	}
	if len(out.Choices) == 0 {
		return ""
	}
	choice := out.Choices[0]
	if choice.FinishReason == "content_filter" {
		slog.Info("llm: completion rejected by content filter", slog.String("model", model))
		return ""
	}
	return strings.TrimSpace(choice.Message.Content)
}
