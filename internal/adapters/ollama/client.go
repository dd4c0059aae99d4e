// Package ollama talks to a local Ollama server. It is the secondary mood
// generator, used when the hosted model fails.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ewilliams-labs/moodweather/internal/adapters/retry"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

const (
	defaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"

	requestTimeout = 30 * time.Second
	busyRetryDelay = 300 * time.Millisecond
)

const systemPrompt = "You are MoodWeather, a poetic and empathetic voice that turns the weather into a short inspiring message in Spanish.\n\nRules:\nAnswer with a single sentence of at most 40 words.\nBlend emotion, weather and one gentle song suggestion.\nWrite the song as \"Title\" de Artist.\nNo lists, no explanations, no quotes around the whole sentence."

// generationOptions mirror the sampling used for the hosted model.
var generationOptions = sampling{Temperature: 0.85, TopP: 0.9, NumPredict: 80}

type Client struct {
	baseURL string
	model   string
	doer    *retry.Doer
}

var _ ports.TextGenerator = (*Client)(nil)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sampling struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  sampling  `json:"options"`
}

type chatResponse struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// NewClient targets the server at baseURL. Empty values select the local
// default server and DefaultModel.
func NewClient(baseURL string, model string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	// Ollama answers 503 while it is busy loading a model.
	doer := retry.New(&http.Client{Timeout: requestTimeout}, retry.Policy{
		Component:   "ollama",
		MaxAttempts: 2,
		Backoff:     busyRetryDelay,
		Constant:    true,
		RetryOn:     retry.OnStatus(http.StatusServiceUnavailable),
	})
	return &Client{baseURL: baseURL, model: model, doer: doer}
}

func (c *Client) Name() string { return "ollama" }

func (c *Client) Author() string { return "Ollama " + c.model }

// Generate sends prompt as the user turn of a single non-streaming chat.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Options: generationOptions,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		var exhausted *retry.ExhaustedError
		switch {
		case errors.As(err, &exhausted) && exhausted.Status == http.StatusServiceUnavailable:
			return "", fmt.Errorf("ollama: %w", ports.ErrModelLoading)
		case retry.IsTimeout(err):
			return "", fmt.Errorf("ollama: %w", ports.ErrUpstreamTimeout)
		}
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ports.UpstreamError{Service: "ollama", Status: resp.StatusCode, Message: parsed.Error}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("ollama: decode response: %w", decodeErr)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}

	content := stripThinking(parsed.Message.Content)
	if content == "" {
		return "", fmt.Errorf("ollama: %w", ports.ErrEmptyGeneration)
	}
	return content, nil
}

// stripThinking drops a leading <think>...</think> block emitted by reasoning models.
func stripThinking(content string) string {
	trimmed := strings.TrimSpace(content)
	rest, found := strings.CutPrefix(trimmed, "<think>")
	if !found {
		return trimmed
	}
	_, after, closed := strings.Cut(rest, "</think>")
	if !closed {
		return ""
	}
	return strings.TrimSpace(after)
}
