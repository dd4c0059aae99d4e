package services

import (
	"context"
	"sync"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

// --- Mocks ---

type mockWeather struct {
	weather domain.Weather
	places  []domain.Place
	err     error

	geocodeCalls int
}

func (m *mockWeather) Current(ctx context.Context, q domain.WeatherQuery) (domain.Weather, error) {
	if m.err != nil {
		return domain.Weather{}, m.err
	}
	return m.weather, nil
}

func (m *mockWeather) Geocode(ctx context.Context, q string, limit int) ([]domain.Place, error) {
	m.geocodeCalls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.places) > limit {
		return m.places[:limit], nil
	}
	return m.places, nil
}

// mockGenerator returns text or err and records the prompts it saw.
type mockGenerator struct {
	name   string
	author string
	text   string
	err    error

	prompts []string
}

func (m *mockGenerator) Name() string { return m.name }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type authoredGenerator struct {
	mockGenerator
}

func (a *authoredGenerator) Author() string { return a.author }

// mockCatalog answers searches by query shape.
type mockCatalog struct {
	byExact   []domain.Track
	byTitle   []domain.Track
	byArtist  []domain.Track
	byKeyword []domain.Track
	catalog   []domain.Track
	searchErr error
	artistErr error

	queries []domain.TrackQuery
}

func (m *mockCatalog) Name() string { return "mock" }

func (m *mockCatalog) SearchTracks(ctx context.Context, q domain.TrackQuery, limit int) ([]domain.Track, error) {
	m.queries = append(m.queries, q)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	switch {
	case len(q.Keywords) > 0:
		return m.byKeyword, nil
	case q.Title != "" && q.Artist != "":
		return m.byExact, nil
	case q.Title != "":
		return m.byTitle, nil
	default:
		return m.byArtist, nil
	}
}

func (m *mockCatalog) ArtistTracks(ctx context.Context, artist string, limit int) ([]domain.Track, error) {
	if m.artistErr != nil {
		return nil, m.artistErr
	}
	return m.catalog, nil
}

type mockRepo struct {
	mu      sync.Mutex
	saved   []domain.MoodReport
	saveErr error
	getErr  error

	recentLimit int
}

func (m *mockRepo) Save(ctx context.Context, r domain.MoodReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (domain.MoodReport, error) {
	if m.getErr != nil {
		return domain.MoodReport{}, m.getErr
	}
	for _, r := range m.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.MoodReport{}, domain.ErrNotFound
}

func (m *mockRepo) Recent(ctx context.Context, limit int) ([]domain.MoodReport, error) {
	m.recentLimit = limit
	return m.saved, nil
}

func (m *mockRepo) UpdateEnergy(ctx context.Context, id string, energy float64) error {
	return nil
}

type mockQueue struct {
	jobs map[string]string
}

func (m *mockQueue) Enqueue(reportID string, previewURL string) {
	if m.jobs == nil {
		m.jobs = map[string]string{}
	}
	m.jobs[reportID] = previewURL
}
