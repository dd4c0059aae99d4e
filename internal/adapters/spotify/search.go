package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/matching"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

const maxSearchLimit = 50

// SearchTracks runs a track search using field filters for titles and
// artists, or a free-text query for keywords.
func (c *Client) SearchTracks(ctx context.Context, q domain.TrackQuery, limit int) ([]domain.Track, error) {
	query := buildSearchQuery(q)
	if query == "" {
		return nil, fmt.Errorf("spotify adapter: empty search query")
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("market", c.market)

	log.Debug().Str("q", query).Msg("spotify adapter: track search")

	var body searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	return mapTracksToDomain(body.Tracks.Items, limit), nil
}

// ArtistTracks finds the best artist for name and returns their top tracks.
func (c *Client) ArtistTracks(ctx context.Context, name string, limit int) ([]domain.Track, error) {
	artistID, err := c.searchArtist(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: failed to find artist %q: %w", name, err)
	}

	params := url.Values{}
	params.Set("market", c.market)

	var body topTracksResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/artists/%s/top-tracks?%s", c.baseURL, url.PathEscape(artistID), params.Encode()), &body); err != nil {
		return nil, fmt.Errorf("spotify adapter: failed to get top tracks for artist %q: %w", name, err)
	}

	return mapTracksToDomain(body.Tracks, limit), nil
}

func (c *Client) searchArtist(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("type", "artist")
	params.Set("limit", "1")
	params.Set("market", c.market)

	var body searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), &body); err != nil {
		return "", err
	}
	if len(body.Artists.Items) == 0 {
		return "", ports.NoConfidentMatchError{Artist: name}
	}
	return body.Artists.Items[0].ID, nil
}

func buildSearchQuery(q domain.TrackQuery) string {
	if len(q.Keywords) > 0 {
		return strings.TrimSpace(strings.Join(q.Keywords, " "))
	}

	title := searchTerm(q.Title)
	artist := searchTerm(q.Artist)
	switch {
	case title != "" && artist != "":
		return fmt.Sprintf("track:%s artist:%s", title, artist)
	case title != "":
		return "track:" + title
	case artist != "":
		return "artist:" + artist
	default:
		return ""
	}
}

// searchTerm prefers the normalized form but keeps the raw input when
// normalization leaves nothing.
func searchTerm(raw string) string {
	if normalized := matching.Normalize(raw); normalized != "" {
		return normalized
	}
	return strings.TrimSpace(raw)
}
