package spotify

import (
	"strings"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

const sourceSpotify = "spotify"

// mapTrackToDomain converts a raw Spotify track to a domain track.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artistNames = append(artistNames, a.Name)
	}

	coverURL := ""
	if len(st.Album.Images) > 0 {
		coverURL = st.Album.Images[0].URL
	}

	streamable := st.PreviewURL != ""
	if st.IsPlayable != nil {
		streamable = streamable && *st.IsPlayable
	}

	return domain.Track{
		ID:         st.ID,
		Title:      st.Name,
		Artist:     strings.Join(artistNames, ", "),
		Album:      st.Album.Name,
		URL:        st.ExternalURLs.Spotify,
		ArtworkURL: coverURL,
		PreviewURL: st.PreviewURL,
		DurationMs: st.DurationMs,
		Streamable: streamable,
		Source:     sourceSpotify,
	}
}

func mapTracksToDomain(items []spotifyTrack, limit int) []domain.Track {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	tracks := make([]domain.Track, 0, len(items))
	for _, st := range items {
		tracks = append(tracks, mapTrackToDomain(st))
	}
	return tracks
}
