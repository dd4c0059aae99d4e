// Package huggingface generates mood text with the HuggingFace Inference API.
package huggingface

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

	"github.com/ewilliams-labs/moodweather/internal/adapters/retry"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

const (
	DefaultBaseURL    = "https://api-inference.huggingface.co/models"
	DefaultModel      = "gpt2"
	DefaultMaxRetries = 2
	DefaultRetryDelay = 1200 * time.Millisecond
	DefaultTimeout    = 20 * time.Second
)

// Config holds the client settings. Zero values use the defaults, except
// MaxRetries: zero disables retries and a negative value selects
// DefaultMaxRetries.
type Config struct {
	Token      string
	Model      string
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	UserAgent  string
}

type Client struct {
	cfg  Config
	doer *retry.Doer
}

var (
	_ ports.TextGenerator = (*Client)(nil)
	_ ports.Authored      = (*Client)(nil)
)

type generationParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generationOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
	Options    generationOptions    `json:"options"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
	Text          string `json:"text"`
	Error         string `json:"error"`
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	doer := retry.New(&http.Client{Timeout: cfg.Timeout}, retry.Policy{
		Component:   "huggingface",
		MaxAttempts: cfg.MaxRetries + 1,
		Backoff:     cfg.RetryDelay,
		Constant:    true,
		RetryOn:     retry.OnStatus(http.StatusServiceUnavailable),
	})
	return &Client{cfg: cfg, doer: doer}
}

func (c *Client) Name() string { return "huggingface" }

func (c *Client) Author() string { return "HuggingFace " + c.cfg.Model }

// Generate sends the prompt to the model. A model that keeps answering 503
// yields ports.ErrModelLoading.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Token == "" {
		return "", ports.MissingCredentialsError{Setting: "HF_TOKEN"}
	}

	payload := generationRequest{
		Inputs: prompt,
		Parameters: generationParameters{
			MaxNewTokens:   60,
			Temperature:    0.85,
			TopP:           0.9,
			ReturnFullText: false,
		},
		Options: generationOptions{WaitForModel: true},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("huggingface: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/"+c.cfg.Model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("huggingface: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) && exhausted.Status == http.StatusServiceUnavailable {
			return "", fmt.Errorf("huggingface: %w", ports.ErrModelLoading)
		}
		if retry.IsTimeout(err) {
			return "", fmt.Errorf("huggingface: %w", ports.ErrUpstreamTimeout)
		}
		return "", fmt.Errorf("huggingface: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("huggingface: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("huggingface: %w", ports.ErrInvalidCredentials)
	case resp.StatusCode != http.StatusOK:
		var g generation
		_ = json.Unmarshal(raw, &g)
		return "", &ports.UpstreamError{Service: "huggingface", Status: resp.StatusCode, Message: g.Error}
	}

	return decodeGeneration(raw)
}

// decodeGeneration accepts the shapes the Inference API is known to return:
// a list or a single object carrying generated_text or text.
func decodeGeneration(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("huggingface: %w", ports.ErrEmptyGeneration)
	}

	var g generation
	switch trimmed[0] {
	case '[':
		var list []generation
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("huggingface: decode response: %w", err)
		}
		if len(list) == 0 {
			return "", fmt.Errorf("huggingface: %w", ports.ErrEmptyGeneration)
		}
		g = list[0]
	case '{':
		if err := json.Unmarshal(trimmed, &g); err != nil {
			return "", fmt.Errorf("huggingface: decode response: %w", err)
		}
	default:
		return "", fmt.Errorf("huggingface: %w", ports.ErrEmptyGeneration)
	}

	if g.Error != "" {
		return "", fmt.Errorf("huggingface: %s", g.Error)
	}
	text := g.GeneratedText
	if strings.TrimSpace(text) == "" {
		text = g.Text
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("huggingface: %w", ports.ErrEmptyGeneration)
	}
	return strings.TrimSpace(text), nil
}
