package matching

import (
	"strings"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

const (
	minTitleSimilarity   = 0.65
	minArtistSimilarity  = 0.55
	minOverallSimilarity = 0.70

	// TierThreshold is the single-field similarity the title and artist tiers require.
	TierThreshold = 0.8
)

// Scorer rates a catalog candidate and reports whether it is acceptable.
type Scorer func(candidate domain.Track) (float64, bool)

// TrackScore weighs title over artist. All three minimums must hold.
func TrackScore(title string, artist string, candidate domain.Track) (float64, bool) {
	normalizedTitle := Normalize(title)
	normalizedArtist := Normalize(artist)
	candidateTitle := Normalize(candidate.Title)
	candidateArtist := Normalize(candidate.Artist)

	if normalizedTitle == "" || normalizedArtist == "" || candidateTitle == "" || candidateArtist == "" {
		return 0, false
	}

	titleSim := Similarity(normalizedTitle, candidateTitle)
	artistSim := max(Similarity(normalizedArtist, candidateArtist), bestArtistPart(normalizedArtist, candidate.Artist))
	score := 0.7*titleSim + 0.3*artistSim

	if titleSim < minTitleSimilarity || artistSim < minArtistSimilarity || score < minOverallSimilarity {
		return score, false
	}

	return score, true
}

// TitleScore compares only the title.
func TitleScore(title string, candidate domain.Track) (float64, bool) {
	a, b := Normalize(title), Normalize(candidate.Title)
	if a == "" || b == "" {
		return 0, false
	}
	score := Similarity(a, b)
	return score, score >= TierThreshold
}

// ArtistScore compares only the artist. Multi-artist credits match on any
// single credited artist.
func ArtistScore(artist string, candidate domain.Track) (float64, bool) {
	a, b := Normalize(artist), Normalize(candidate.Artist)
	if a == "" || b == "" {
		return 0, false
	}
	score := max(Similarity(a, b), bestArtistPart(a, candidate.Artist))
	return score, score >= TierThreshold
}

func bestArtistPart(normalized string, credits string) float64 {
	best := 0.0
	for _, part := range strings.Split(credits, ",") {
		if p := Normalize(part); p != "" {
			best = max(best, Similarity(normalized, p))
		}
	}
	return best
}

// BestMatch returns the highest-scoring acceptable candidate. Ties keep
// catalog order.
func BestMatch(candidates []domain.Track, score Scorer) (domain.Track, float64, bool) {
	var (
		best      domain.Track
		bestScore float64
		found     bool
	)
	for _, candidate := range candidates {
		s, ok := score(candidate)
		if !ok {
			continue
		}
		if !found || s > bestScore {
			best, bestScore, found = candidate, s, true
		}
	}
	return best, bestScore, found
}

// Similarity is 1 minus the rune edit distance over the longer length.
func Similarity(a string, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

func levenshteinDistance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}
