package ports

import (
	"context"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

type WeatherProvider interface {
	Current(ctx context.Context, q domain.WeatherQuery) (domain.Weather, error)
	Geocode(ctx context.Context, q string, limit int) ([]domain.Place, error)
}

// TextGenerator produces free-form text for a prompt. Name is reported as
// the author and source of the mood.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Authored is implemented by generators that credit the text to a display
// name other than Name.
type Authored interface {
	Author() string
}

// TrackSearcher is a music catalog.
type TrackSearcher interface {
	Name() string
	SearchTracks(ctx context.Context, q domain.TrackQuery, limit int) ([]domain.Track, error)
	ArtistTracks(ctx context.Context, artist string, limit int) ([]domain.Track, error)
}

type MoodRepository interface {
	Save(ctx context.Context, r domain.MoodReport) error
	GetByID(ctx context.Context, id string) (domain.MoodReport, error)
	Recent(ctx context.Context, limit int) ([]domain.MoodReport, error)
	UpdateEnergy(ctx context.Context, id string, energy float64) error
}

// AnalysisQueue accepts preview analysis work without blocking.
type AnalysisQueue interface {
	Enqueue(reportID string, previewURL string)
}
