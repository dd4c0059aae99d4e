package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
	"github.com/ewilliams-labs/moodweather/internal/logging"
)

const (
	geocodeLimit        = 5
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Orchestrator chains weather, mood generation and music matching.
// The catalog, repository and queue are optional.
type Orchestrator struct {
	weather     ports.WeatherProvider
	writer      *MoodWriter
	recommender *Recommender
	repo        ports.MoodRepository
	queue       ports.AnalysisQueue
}

// NewOrchestrator constructs an Orchestrator. Pass untyped nils for the
// parts that are not configured.
func NewOrchestrator(weather ports.WeatherProvider, writer *MoodWriter, catalog ports.TrackSearcher, repo ports.MoodRepository, queue ports.AnalysisQueue) *Orchestrator {
	o := &Orchestrator{
		weather: weather,
		writer:  writer,
		repo:    repo,
		queue:   queue,
	}
	if writer == nil {
		o.writer = NewMoodWriter()
	}
	if catalog != nil {
		o.recommender = NewRecommender(catalog)
	}
	return o
}

// CurrentWeather validates the query and fetches current conditions.
func (o *Orchestrator) CurrentWeather(ctx context.Context, q domain.WeatherQuery) (domain.Weather, error) {
	if err := q.Validate(); err != nil {
		return domain.Weather{}, err
	}
	if o.weather == nil {
		return domain.Weather{}, ports.MissingCredentialsError{Setting: "OPENWEATHER_API_KEY"}
	}
	w, err := o.weather.Current(ctx, q)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("service: failed to fetch weather: %w", err)
	}
	return w, nil
}

// Geocode returns location suggestions. A blank query yields an empty list
// without calling upstream.
func (o *Orchestrator) Geocode(ctx context.Context, q string) ([]domain.Place, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.Place{}, nil
	}
	if o.weather == nil {
		return nil, ports.MissingCredentialsError{Setting: "OPENWEATHER_API_KEY"}
	}
	places, err := o.weather.Geocode(ctx, q, geocodeLimit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to geocode %q: %w", q, err)
	}
	if places == nil {
		places = []domain.Place{}
	}
	return places, nil
}

// ComposeMood writes a mood phrase for a client-supplied weather summary.
func (o *Orchestrator) ComposeMood(ctx context.Context, in domain.MoodInput) (domain.Mood, error) {
	if strings.TrimSpace(in.Weather) == "" {
		return domain.Mood{}, &domain.ValidationError{Message: "Especifica al menos el estado del clima."}
	}
	theme := domain.ResolveTheme(in.Weather)
	return o.writer.Write(ctx, domain.BuildMoodPrompt(in), theme), nil
}

// Quote writes a short phrase for a theme name. Unknown names resolve to Clear.
func (o *Orchestrator) Quote(ctx context.Context, mood string) domain.Mood {
	theme := domain.ResolveTheme(mood)
	return o.writer.Write(ctx, domain.BuildQuotePrompt(theme), theme)
}

// SuggestTrack always returns a track: the matched recommendation, a theme
// search result, or the theme's fallback.
func (o *Orchestrator) SuggestTrack(ctx context.Context, mood string, rec *domain.Recommendation) domain.Track {
	return o.suggestTrack(ctx, domain.ResolveTheme(mood), rec)
}

func (o *Orchestrator) suggestTrack(ctx context.Context, theme domain.Theme, rec *domain.Recommendation) domain.Track {
	if o.recommender == nil {
		return domain.FallbackTrack(theme)
	}

	if rec != nil && !rec.IsEmpty() {
		track, err := o.recommender.Find(ctx, *rec)
		if err == nil {
			return track
		}
		if isCancellation(err) {
			return domain.FallbackTrack(theme)
		}
		logging.FromContext(ctx).Info().Err(err).Str("title", rec.Title).Str("artist", rec.Artist).Msg("service: recommendation not found, searching theme")
	}

	track, err := o.recommender.ForTheme(ctx, theme)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("theme", string(theme)).Msg("service: theme search failed, using fallback track")
		return domain.FallbackTrack(theme)
	}
	return track
}

// MoodForWeather runs the whole pipeline for a location. Only a weather
// failure is returned; persistence and analysis problems are logged.
func (o *Orchestrator) MoodForWeather(ctx context.Context, q domain.WeatherQuery) (domain.MoodReport, error) {
	w, err := o.CurrentWeather(ctx, q)
	if err != nil {
		return domain.MoodReport{}, err
	}

	theme := domain.ResolveTheme(w.Main)
	mood := o.writer.Write(ctx, domain.BuildMoodPrompt(domain.MoodInputFromWeather(w)), theme)

	var rec *domain.Recommendation
	if r, ok := domain.ExtractRecommendation(mood.Text); ok {
		rec = &r
	}
	track := o.suggestTrack(ctx, theme, rec)

	report := domain.NewMoodReport(w, theme, mood, rec, track)
	o.persist(ctx, report)
	return report, nil
}

func (o *Orchestrator) persist(ctx context.Context, report domain.MoodReport) {
	if o.repo == nil {
		return
	}
	if err := o.repo.Save(ctx, report); err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("report_id", report.ID).Msg("service: failed to save mood report")
		return
	}
	if o.queue != nil && report.Track.PreviewURL != "" {
		o.queue.Enqueue(report.ID, report.Track.PreviewURL)
	}
}

// History lists recent reports, newest first. Limit defaults to 20 and is
// capped at 100.
func (o *Orchestrator) History(ctx context.Context, limit int) ([]domain.MoodReport, error) {
	if o.repo == nil {
		return nil, ports.ErrStorageDisabled
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	reports, err := o.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list reports: %w", err)
	}
	return reports, nil
}

// Report loads one stored report.
func (o *Orchestrator) Report(ctx context.Context, id string) (domain.MoodReport, error) {
	if o.repo == nil {
		return domain.MoodReport{}, ports.ErrStorageDisabled
	}
	report, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return domain.MoodReport{}, fmt.Errorf("service: failed to load report: %w", err)
	}
	return report, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
