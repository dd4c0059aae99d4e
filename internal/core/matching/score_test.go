package matching

import (
	"testing"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "kitten sitting", a: "kitten", b: "sitting", want: 3},
		{name: "empty to word", a: "", b: "sound", want: 5},
		{name: "runes", a: "canción", b: "cancion", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := levenshteinDistance(tt.a, tt.b)
			if got != tt.want {
				t.Fatalf("distance: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTrackScore(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		artist string
		track  domain.Track
		wantOK bool
	}{
		{
			name:   "matches remastered title",
			title:  "Happy",
			artist: "Pharrell Williams",
			track:  domain.Track{Title: "Happy (Remastered 2014)", Artist: "Pharrell Williams"},
			wantOK: true,
		},
		{
			name:   "matches one of several credits",
			title:  "Holocene",
			artist: "Bon Iver",
			track:  domain.Track{Title: "Holocene", Artist: "Bon Iver, Someone Else Entirely"},
			wantOK: true,
		},
		{
			name:   "rejects different track",
			title:  "Happy",
			artist: "Pharrell Williams",
			track:  domain.Track{Title: "Sad Song", Artist: "Other Artist"},
			wantOK: false,
		},
		{
			name:   "rejects right title wrong artist",
			title:  "Happy",
			artist: "Pharrell Williams",
			track:  domain.Track{Title: "Happy", Artist: "Zz Top"},
			wantOK: false,
		},
		{
			name:   "requires both fields",
			title:  "Happy",
			track:  domain.Track{Title: "Happy", Artist: "Pharrell Williams"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := TrackScore(tt.title, tt.artist, tt.track)
			if got != tt.wantOK {
				t.Fatalf("match: got %v, want %v", got, tt.wantOK)
			}
		})
	}
}

func TestTierScores(t *testing.T) {
	if _, ok := TitleScore("Clair de Lune", domain.Track{Title: "Clair de lune (Live)"}); !ok {
		t.Fatalf("expected title match")
	}
	if _, ok := TitleScore("Clair de Lune", domain.Track{Title: "Moonlight Sonata"}); ok {
		t.Fatalf("unexpected title match")
	}
	if _, ok := ArtistScore("Norah Jones", domain.Track{Artist: "Norah Jones"}); !ok {
		t.Fatalf("expected artist match")
	}
	if _, ok := ArtistScore("Norah Jones", domain.Track{Artist: "Nora Ephron Band"}); ok {
		t.Fatalf("unexpected artist match")
	}
}

func TestBestMatch(t *testing.T) {
	candidates := []domain.Track{
		{ID: "1", Title: "Holocene (Live)", Artist: "Bon Iver"},
		{ID: "2", Title: "Holocene", Artist: "Bon Iver"},
		{ID: "3", Title: "Holocene", Artist: "Bon Iver"},
		{ID: "4", Title: "Skinny Love", Artist: "Bon Iver"},
	}

	got, score, ok := BestMatch(candidates, func(c domain.Track) (float64, bool) {
		if c.ID == "4" {
			return 0.1, false
		}
		if c.ID == "1" {
			return 0.9, true
		}
		return 1, true
	})
	if !ok {
		t.Fatalf("expected a match")
	}
	if got.ID != "2" || score != 1 {
		t.Fatalf("best: got %s (%v), want 2 (1)", got.ID, score)
	}

	if _, _, ok := BestMatch(candidates, func(domain.Track) (float64, bool) { return 0, false }); ok {
		t.Fatalf("expected no match")
	}
}
