// Package soundcloud is a TrackSearcher over the public SoundCloud v2 API.
package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ewilliams-labs/moodweather/internal/adapters/retry"
	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

const (
	DefaultBaseURL = "https://api-v2.soundcloud.com"
	sourceName     = "soundcloud"
	unknownArtist  = "Unknown artist"
)

type Config struct {
	ClientID  string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type Client struct {
	doer *retry.Doer
	cfg  Config
}

var _ ports.TrackSearcher = (*Client)(nil)

type scUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

type scTrack struct {
	ID           int64   `json:"id"`
	Kind         string  `json:"kind"`
	Title        string  `json:"title"`
	PermalinkURL string  `json:"permalink_url"`
	ArtworkURL   string  `json:"artwork_url"`
	Duration     int     `json:"duration"`
	Streamable   bool    `json:"streamable"`
	User         *scUser `json:"user"`
}

type trackPage struct {
	Collection []scTrack `json:"collection"`
}

type userPage struct {
	Collection []scUser `json:"collection"`
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		doer: retry.New(httpClient, retry.Policy{Component: "soundcloud"}),
		cfg:  cfg,
	}
}

func (c *Client) Name() string { return sourceName }

// SearchTracks runs a free-text track search.
func (c *Client) SearchTracks(ctx context.Context, q domain.TrackQuery, limit int) ([]domain.Track, error) {
	text := searchText(q)
	if text == "" {
		return nil, fmt.Errorf("soundcloud: empty search query")
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("linked_partitioning", "1")

	var page trackPage
	if err := c.getJSON(ctx, "/search/tracks", params, &page); err != nil {
		return nil, err
	}
	return mapTracks(page.Collection, limit), nil
}

// ArtistTracks returns the uploads of the best matching user.
func (c *Client) ArtistTracks(ctx context.Context, artist string, limit int) ([]domain.Track, error) {
	params := url.Values{}
	params.Set("q", artist)
	params.Set("limit", "1")

	var users userPage
	if err := c.getJSON(ctx, "/search/users", params, &users); err != nil {
		return nil, err
	}
	if len(users.Collection) == 0 {
		return nil, fmt.Errorf("soundcloud: %w", ports.NoConfidentMatchError{Artist: artist})
	}

	params = url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("linked_partitioning", "1")

	var page trackPage
	path := fmt.Sprintf("/users/%d/tracks", users.Collection[0].ID)
	if err := c.getJSON(ctx, path, params, &page); err != nil {
		return nil, err
	}
	return mapTracks(page.Collection, limit), nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.cfg.ClientID == "" {
		return ports.MissingCredentialsError{Setting: "SOUNDCLOUD_CLIENT_ID"}
	}
	params.Set("client_id", c.cfg.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("soundcloud: build request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		if retry.IsTimeout(err) {
			return fmt.Errorf("soundcloud: %w", ports.ErrUpstreamTimeout)
		}
		return fmt.Errorf("soundcloud: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("soundcloud: %w", ports.ErrInvalidCredentials)
	default:
		return &ports.UpstreamError{Service: "soundcloud", Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("soundcloud: decode response: %w", err)
	}
	return nil
}

func searchText(q domain.TrackQuery) string {
	if len(q.Keywords) > 0 {
		return strings.TrimSpace(strings.Join(q.Keywords, " "))
	}
	return strings.TrimSpace(strings.TrimSpace(q.Title) + " " + strings.TrimSpace(q.Artist))
}

func mapTracks(items []scTrack, limit int) []domain.Track {
	tracks := make([]domain.Track, 0, len(items))
	for _, it := range items {
		if it.Kind != "" && it.Kind != "track" {
			continue
		}
		tracks = append(tracks, mapTrack(it))
		if limit > 0 && len(tracks) == limit {
			break
		}
	}
	return tracks
}

func mapTrack(it scTrack) domain.Track {
	artist := unknownArtist
	artwork := it.ArtworkURL
	if it.User != nil {
		if it.User.Username != "" {
			artist = it.User.Username
		}
		if artwork == "" {
			artwork = it.User.AvatarURL
		}
	}

	return domain.Track{
		ID:         strconv.FormatInt(it.ID, 10),
		Title:      it.Title,
		Artist:     artist,
		URL:        it.PermalinkURL,
		ArtworkURL: upgradeArtwork(artwork),
		DurationMs: it.Duration,
		Streamable: it.Streamable,
		Source:     sourceName,
	}
}

// upgradeArtwork swaps the default 100px artwork for the 500px variant.
func upgradeArtwork(u string) string {
	return strings.Replace(u, "-large", "-t500x500", 1)
}
