package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ewilliams-labs/moodweather/internal/adapters/sqlite"
	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
	"github.com/ewilliams-labs/moodweather/internal/core/services"
)

// --- Mocks ---

// The handler depends on the concrete Orchestrator, so tests build a real
// one around mock adapters.

type mockWeather struct {
	weather domain.Weather
	places  []domain.Place
	err     error
}

func (m *mockWeather) Current(ctx context.Context, q domain.WeatherQuery) (domain.Weather, error) {
	if m.err != nil {
		return domain.Weather{}, m.err
	}
	return m.weather, nil
}

func (m *mockWeather) Geocode(ctx context.Context, q string, limit int) ([]domain.Place, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.places, nil
}

type mockGenerator struct {
	text string
	err  error
}

func (m *mockGenerator) Name() string { return "mockgen" }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return m.text, m.err
}

type mockCatalog struct {
	tracks []domain.Track
	err    error
}

func (m *mockCatalog) Name() string { return "mock" }

func (m *mockCatalog) SearchTracks(ctx context.Context, q domain.TrackQuery, limit int) ([]domain.Track, error) {
	return m.tracks, m.err
}

func (m *mockCatalog) ArtistTracks(ctx context.Context, artist string, limit int) ([]domain.Track, error) {
	return m.tracks, m.err
}

var madrid = domain.Weather{
	City:         "Madrid",
	Country:      "ES",
	Main:         "Rain",
	Description:  "lluvia ligera",
	TemperatureC: 14.2,
	FeelsLikeC:   13.1,
}

func newTestHandler(weather ports.WeatherProvider, gen ports.TextGenerator, catalog ports.TrackSearcher, repo ports.MoodRepository) *Handler {
	var writer *services.MoodWriter
	if gen != nil {
		writer = services.NewMoodWriter(gen)
	}
	return NewHandler(services.NewOrchestrator(weather, writer, catalog, repo, nil))
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHandler_HealthCheck(t *testing.T) {
	rec := do(t, newTestHandler(nil, nil, nil, nil), http.MethodGet, "/api/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_Weather(t *testing.T) {
	tests := []struct {
		name           string
		weather        ports.WeatherProvider
		target         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success: city lookup",
			weather:        &mockWeather{weather: madrid},
			target:         "/api/weather?city=Madrid",
			expectedStatus: http.StatusOK,
			expectedBody:   `"city":"Madrid"`,
		},
		{
			name:           "Bad Request: no city or coordinates",
			weather:        &mockWeather{weather: madrid},
			target:         "/api/weather?lat=40",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code":"INVALID_INPUT"`,
		},
		{
			name:           "Bad Request: latitude out of range",
			weather:        &mockWeather{weather: madrid},
			target:         "/api/weather?lat=140&lon=3",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Latitude must be a number between -90 and 90.",
		},
		{
			name:           "Not Found: unknown city",
			weather:        &mockWeather{err: ports.ErrLocationNotFound},
			target:         "/api/weather?city=Atlantis",
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"code":"NOT_FOUND"`,
		},
		{
			name:           "Server Error: missing key",
			weather:        nil,
			target:         "/api/weather?city=Madrid",
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "OPENWEATHER_API_KEY environment variable is required",
		},
		{
			name:           "Server Error: invalid key",
			weather:        &mockWeather{err: ports.ErrInvalidCredentials},
			target:         "/api/weather?city=Madrid",
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"code":"INVALID_CREDENTIALS"`,
		},
		{
			name:           "Gateway Timeout",
			weather:        &mockWeather{err: ports.ErrUpstreamTimeout},
			target:         "/api/weather?city=Madrid",
			expectedStatus: http.StatusGatewayTimeout,
			expectedBody:   "Weather request timed out",
		},
		{
			name:           "Upstream status is passed through",
			weather:        &mockWeather{err: &ports.UpstreamError{Service: "openweather", Status: http.StatusTooManyRequests, Message: "quota exceeded"}},
			target:         "/api/weather?city=Madrid",
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   "quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestHandler(tt.weather, nil, nil, nil), http.MethodGet, tt.target, nil)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d, body: %s", tt.expectedStatus, rec.Code, strings.TrimSpace(rec.Body.String()))
			}
			if !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_Geocode(t *testing.T) {
	state := "Lima"
	h := newTestHandler(&mockWeather{places: []domain.Place{{Name: "Lima", State: &state, Country: "PE", Lat: -12.05, Lon: -77.04}}}, nil, nil, nil)

	rec := do(t, h, http.MethodGet, "/api/geocode?q=%20%20", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("blank query: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/geocode?q=Lima", nil)
	var places []domain.Place
	if err := json.Unmarshal(rec.Body.Bytes(), &places); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(places) != 1 || places[0].Country != "PE" {
		t.Fatalf("unexpected places: %+v", places)
	}
}

func TestHandler_ComposeMood(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		contentType    string
		gen            *mockGenerator
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success: generated text",
			body:           `{"weather":"Rain","description":"lluvia","temperature":12.5,"location":"Bogotá"}`,
			gen:            &mockGenerator{text: `Escucha "Holocene" de Bon Iver.`},
			expectedStatus: http.StatusOK,
			expectedBody:   `"source":"mockgen"`,
		},
		{
			name:           "Fallback when generation fails",
			body:           `{"weather":"Snow"}`,
			gen:            &mockGenerator{err: ports.ErrEmptyGeneration},
			expectedStatus: http.StatusOK,
			expectedBody:   `"source":"fallback"`,
		},
		{
			name:           "Bad Request: missing weather",
			body:           `{"description":"nublado"}`,
			gen:            &mockGenerator{text: "ok"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Especifica al menos el estado del clima.",
		},
		{
			name:           "Bad Request: malformed body",
			body:           `{"weather":`,
			gen:            &mockGenerator{text: "ok"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
		{
			name:           "Bad Request: non-JSON body is read as empty",
			body:           `{"weather":"Rain"}`,
			contentType:    "text/plain",
			gen:            &mockGenerator{text: "ok"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Especifica al menos el estado del clima.",
		},
		{
			name:           "Bad Request: empty JSON body",
			body:           "",
			gen:            &mockGenerator{text: "ok"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Especifica al menos el estado del clima.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil, tt.gen, nil, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/mood", strings.NewReader(tt.body))
			ct := tt.contentType
			if ct == "" {
				ct = "application/json; charset=utf-8"
			}
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d, body: %s", tt.expectedStatus, rec.Code, strings.TrimSpace(rec.Body.String()))
			}
			if !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_Quote(t *testing.T) {
	tests := []struct {
		name           string
		gen            ports.TextGenerator
		target         string
		expectedStatus int
		expectedMood   string
		expectedSource string
	}{
		{
			name:           "generated",
			gen:            &mockGenerator{text: "La lluvia también canta."},
			target:         "/api/ai-quote?mood=Rain",
			expectedStatus: http.StatusOK,
			expectedMood:   "Rain",
			expectedSource: "mockgen",
		},
		{
			name:           "model loading",
			gen:            &mockGenerator{err: ports.ErrModelLoading},
			target:         "/api/ai-quote?mood=Mist",
			expectedStatus: http.StatusAccepted,
			expectedMood:   "Mist",
			expectedSource: "fallback",
		},
		{
			name:           "no generator configured",
			target:         "/api/ai-quote?mood=Volcano",
			expectedStatus: http.StatusOK,
			expectedMood:   "Clear",
			expectedSource: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestHandler(nil, tt.gen, nil, nil), http.MethodGet, tt.target, nil)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			var body struct {
				Mood   string `json:"mood"`
				Text   string `json:"text"`
				Author string `json:"author"`
				Source string `json:"source"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Mood != tt.expectedMood || body.Source != tt.expectedSource || body.Text == "" || body.Author == "" {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}

func TestHandler_Music(t *testing.T) {
	holocene := domain.Track{ID: "1", Title: "Holocene", Artist: "Bon Iver", URL: "https://open.spotify.com/track/1", Streamable: true, Source: "spotify"}

	tests := []struct {
		name          string
		catalog       ports.TrackSearcher
		target        string
		expectedTitle string
		expectedMatch domain.MatchTier
	}{
		{
			name:          "recommendation matched",
			catalog:       &mockCatalog{tracks: []domain.Track{holocene}},
			target:        "/api/music?mood=Rain&title=Holocene&artist=Bon%20Iver",
			expectedTitle: "Holocene",
			expectedMatch: domain.MatchExact,
		},
		{
			name:          "theme search without recommendation",
			catalog:       &mockCatalog{tracks: []domain.Track{holocene}},
			target:        "/api/music?mood=Rain",
			expectedTitle: "Holocene",
			expectedMatch: domain.MatchTheme,
		},
		{
			name:          "catalog failure falls back",
			catalog:       &mockCatalog{err: ports.ErrInvalidCredentials},
			target:        "/api/music?mood=Rain",
			expectedTitle: "Night Drive",
			expectedMatch: domain.MatchFallback,
		},
		{
			name:          "no catalog configured",
			target:        "/api/music?mood=Snow",
			expectedTitle: "Winter Lights",
			expectedMatch: domain.MatchFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestHandler(nil, nil, tt.catalog, nil), http.MethodGet, tt.target, nil)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var body musicResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Track.Title != tt.expectedTitle || body.Track.Match != tt.expectedMatch {
				t.Fatalf("unexpected track: %+v", body.Track)
			}
		})
	}
}

func TestHandler_MoodWeatherAndHistory(t *testing.T) {
	repo, err := sqlite.NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer repo.Close()

	h := newTestHandler(
		&mockWeather{weather: madrid},
		&mockGenerator{text: `Deja que la lluvia te abrace con "Holocene" de Bon Iver.`},
		&mockCatalog{tracks: []domain.Track{{ID: "1", Title: "Holocene", Artist: "Bon Iver", Source: "spotify"}}},
		repo,
	)

	rec := do(t, h, http.MethodGet, "/api/mood-weather?city=Madrid", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mood-weather: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report domain.MoodReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Theme != domain.ThemeRain || report.Recommendation == nil || report.Track.Title != "Holocene" {
		t.Fatalf("unexpected report: %+v", report)
	}

	rec = do(t, h, http.MethodGet, "/api/history?limit=5", nil)
	var history []domain.MoodReport
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].ID != report.ID {
		t.Fatalf("unexpected history: %+v", history)
	}

	rec = do(t, h, http.MethodGet, "/api/history/"+report.ID, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), report.ID) {
		t.Fatalf("report lookup: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/history/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown report: expected 404, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/history?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", rec.Code)
	}
}

func TestHandler_HistoryWithoutStorage(t *testing.T) {
	rec := do(t, newTestHandler(nil, nil, nil, nil), http.MethodGet, "/api/history", nil)

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"STORAGE_DISABLED"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
