package domain

import "strings"

// MatchTier records which catalog stage produced a track.
type MatchTier string

const (
	MatchExact         MatchTier = "exact"
	MatchTitle         MatchTier = "title"
	MatchArtist        MatchTier = "artist"
	MatchArtistCatalog MatchTier = "artist_catalog"
	MatchTheme         MatchTier = "theme"
	MatchFallback      MatchTier = "fallback"
)

// SourceFallback marks values that came from the hardcoded defaults.
const SourceFallback = "fallback"

// Track represents a musical track in the domain layer.
type Track struct {
	ID         string    `json:"id,omitempty"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album,omitempty"`
	URL        string    `json:"url"`
	ArtworkURL string    `json:"artwork,omitempty"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	DurationMs int       `json:"durationMs,omitempty"`
	Streamable bool      `json:"streamable"`
	Source     string    `json:"source"`
	Match      MatchTier `json:"match,omitempty"`
}

// TrackQuery describes one catalog search. Title and Artist drive the
// recommendation tiers; Keywords drive theme searches.
type TrackQuery struct {
	Title    string
	Artist   string
	Keywords []string
}

// IsEmpty reports whether the query carries nothing to search for.
func (q TrackQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Title) == "" && strings.TrimSpace(q.Artist) == "" && len(q.Keywords) == 0
}

// Recommendation is a song and/or artist mention extracted from generated text.
type Recommendation struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
}

// IsEmpty reports whether neither a title nor an artist was found.
func (r Recommendation) IsEmpty() bool {
	return strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Artist) == ""
}
