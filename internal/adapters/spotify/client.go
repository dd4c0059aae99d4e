package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/moodweather/internal/adapters/retry"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultMarket   = "US"
	defaultTimeout  = 15 * time.Second
)

// Config holds the client settings. Zero values use the defaults.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	Market       string
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	doer    *retry.Doer
	baseURL string
	market  string
}

// compile-time interface assertion
var _ ports.TrackSearcher = (*Client)(nil)

// NewClient constructs a Spotify client authenticated with the client
// credentials flow. The access token is cached and refreshed when it expires.
// ctx governs token fetches for the lifetime of the client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ports.MissingCredentialsError{Setting: "SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET"}
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
	httpClient := cc.Client(tokenCtx)
	httpClient.Timeout = cfg.Timeout

	return NewClientWithHTTP(httpClient, cfg), nil
}

// NewClientWithHTTP constructs a client on an already authenticated http.Client.
func NewClientWithHTTP(httpClient *http.Client, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Market == "" {
		cfg.Market = DefaultMarket
	}
	return &Client{
		doer: retry.New(httpClient, retry.Policy{
			Component:   "spotify adapter",
			MaxAttempts: cfg.MaxRetries,
			Backoff:     cfg.RetryBackoff,
			RetryOn:     retryable,
		}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		market:  cfg.Market,
	}
}

func (c *Client) Name() string { return sourceSpotify }

// retryable does not retry token endpoint rejections.
func retryable(resp *http.Response, err error) (time.Duration, bool) {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return 0, false
	}
	return retry.TransientFailure(resp, err)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("spotify adapter: failed to create request: %w", err)
	}

	// #nosec G107 -- URL constructed from the configured Spotify API baseURL
	resp, err := c.doer.Do(req)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return fmt.Errorf("spotify adapter: token request rejected: %w", ports.ErrInvalidCredentials)
		}
		if retry.IsTimeout(err) {
			return fmt.Errorf("spotify adapter: %w", ports.ErrUpstreamTimeout)
		}
		return fmt.Errorf("spotify adapter: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("spotify adapter: %w", ports.ErrInvalidCredentials)
	default:
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &ports.UpstreamError{Service: "spotify", Status: resp.StatusCode, Message: e.Error.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: decode error: %w", err)
	}
	return nil
}
