package services

import (
	"context"
	"strings"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/matching"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
	"github.com/ewilliams-labs/moodweather/internal/logging"
)

const (
	searchLimit = 10
	themeLimit  = 5
)

// Recommender resolves recommendations and themes against a music catalog.
type Recommender struct {
	catalog ports.TrackSearcher
}

// NewRecommender constructs a Recommender.
func NewRecommender(catalog ports.TrackSearcher) *Recommender {
	return &Recommender{catalog: catalog}
}

type tier struct {
	match  domain.MatchTier
	query  domain.TrackQuery
	scorer matching.Scorer
}

// Find walks the match tiers from most to least specific. A failed search
// moves on to the next tier; a cancelled context stops the walk.
func (r *Recommender) Find(ctx context.Context, rec domain.Recommendation) (domain.Track, error) {
	title := strings.TrimSpace(rec.Title)
	artist := strings.TrimSpace(rec.Artist)
	noMatch := ports.NoConfidentMatchError{Title: title, Artist: artist}
	if title == "" && artist == "" {
		return domain.Track{}, noMatch
	}

	var tiers []tier
	if title != "" && artist != "" {
		tiers = append(tiers, tier{
			match: domain.MatchExact,
			query: domain.TrackQuery{Title: title, Artist: artist},
			scorer: func(c domain.Track) (float64, bool) {
				return matching.TrackScore(title, artist, c)
			},
		})
	}
	if title != "" {
		tiers = append(tiers, tier{
			match: domain.MatchTitle,
			query: domain.TrackQuery{Title: title},
			scorer: func(c domain.Track) (float64, bool) {
				return matching.TitleScore(title, c)
			},
		})
	}
	if artist != "" {
		tiers = append(tiers, tier{
			match: domain.MatchArtist,
			query: domain.TrackQuery{Artist: artist},
			scorer: func(c domain.Track) (float64, bool) {
				return matching.ArtistScore(artist, c)
			},
		})
	}

	for _, t := range tiers {
		candidates, err := r.catalog.SearchTracks(ctx, t.query, searchLimit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.Track{}, ctxErr
			}
			logging.FromContext(ctx).Warn().Err(err).Str("tier", string(t.match)).Str("catalog", r.catalog.Name()).Msg("recommender: search failed")
			continue
		}
		if best, _, ok := matching.BestMatch(candidates, t.scorer); ok {
			best.Match = t.match
			return best, nil
		}
	}

	if artist != "" {
		tracks, err := r.catalog.ArtistTracks(ctx, artist, themeLimit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.Track{}, ctxErr
			}
			logging.FromContext(ctx).Warn().Err(err).Str("tier", string(domain.MatchArtistCatalog)).Str("catalog", r.catalog.Name()).Msg("recommender: artist lookup failed")
		} else if len(tracks) > 0 {
			track := tracks[0]
			track.Match = domain.MatchArtistCatalog
			return track, nil
		}
	}

	return domain.Track{}, noMatch
}

// ForTheme searches the theme keywords and prefers a streamable result.
func (r *Recommender) ForTheme(ctx context.Context, theme domain.Theme) (domain.Track, error) {
	tracks, err := r.catalog.SearchTracks(ctx, domain.TrackQuery{Keywords: theme.Keywords()}, themeLimit)
	if err != nil {
		return domain.Track{}, err
	}
	if len(tracks) == 0 {
		return domain.Track{}, ports.NoConfidentMatchError{}
	}

	track := tracks[0]
	for _, t := range tracks {
		if t.Streamable {
			track = t
			break
		}
	}
	track.Match = domain.MatchTheme
	return track, nil
}
