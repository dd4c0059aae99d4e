// Package app wires configuration into adapters, the core service and the
// HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ewilliams-labs/moodweather/internal/adapters/huggingface"
	"github.com/ewilliams-labs/moodweather/internal/adapters/ollama"
	"github.com/ewilliams-labs/moodweather/internal/adapters/openweather"
	"github.com/ewilliams-labs/moodweather/internal/adapters/postgres"
	"github.com/ewilliams-labs/moodweather/internal/adapters/rest"
	"github.com/ewilliams-labs/moodweather/internal/adapters/soundcloud"
	"github.com/ewilliams-labs/moodweather/internal/adapters/spotify"
	"github.com/ewilliams-labs/moodweather/internal/adapters/sqlite"
	"github.com/ewilliams-labs/moodweather/internal/config"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
	"github.com/ewilliams-labs/moodweather/internal/core/services"
	"github.com/ewilliams-labs/moodweather/internal/middleware"
	"github.com/ewilliams-labs/moodweather/internal/worker"
)

// App owns every long-lived component built from a Config.
type App struct {
	cfg     *config.Config
	svc     *services.Orchestrator
	pool    *worker.Pool
	closers []func() error
}

// New builds the adapters selected by cfg. Missing optional credentials
// leave the matching component unset; the service then serves fallbacks.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}

	var weather ports.WeatherProvider
	if cfg.OpenWeather.APIKey != "" {
		weather = openweather.NewClient(httpClient, openweather.Config{
			APIKey:    cfg.OpenWeather.APIKey,
			BaseURL:   cfg.OpenWeather.BaseURL,
			GeoURL:    cfg.OpenWeather.GeoURL,
			Units:     cfg.OpenWeather.Units,
			Lang:      cfg.OpenWeather.Lang,
			UserAgent: cfg.HTTP.UserAgent,
		})
	} else {
		log.Warn().Msg("app: OPENWEATHER_API_KEY not set, weather endpoints will fail")
	}

	writer := services.NewMoodWriter(a.generators()...)

	catalog, err := a.catalog(ctx, httpClient)
	if err != nil {
		return nil, err
	}

	repo, err := a.repository(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	var queue ports.AnalysisQueue
	if repo != nil {
		a.pool = worker.NewPool(repo, cfg.Worker.Count, cfg.Worker.QueueSize)
		a.pool.Start()
		queue = a.pool
	}

	a.svc = services.NewOrchestrator(weather, writer, catalog, repo, queue)
	return a, nil
}

func (a *App) generators() []ports.TextGenerator {
	var gens []ports.TextGenerator
	if a.cfg.HuggingFace.Token != "" {
		gens = append(gens, huggingface.NewClient(huggingface.Config{
			Token:      a.cfg.HuggingFace.Token,
			Model:      a.cfg.HuggingFace.Model,
			BaseURL:    a.cfg.HuggingFace.BaseURL,
			MaxRetries: a.cfg.HuggingFace.MaxRetries,
			RetryDelay: a.cfg.HuggingFace.RetryDelay,
			Timeout:    a.cfg.HuggingFace.Timeout,
			UserAgent:  a.cfg.HTTP.UserAgent,
		}))
	}
	if a.cfg.Ollama.Host != "" {
		gens = append(gens, ollama.NewClient(a.cfg.Ollama.Host, a.cfg.Ollama.Model))
	}
	if len(gens) == 0 {
		log.Warn().Msg("app: no text generator configured, moods will use fallback quotes")
	}
	return gens
}

func (a *App) catalog(ctx context.Context, httpClient *http.Client) (ports.TrackSearcher, error) {
	switch provider := a.cfg.MusicProvider(); provider {
	case config.MusicSpotify:
		client, err := spotify.NewClient(ctx, spotify.Config{
			ClientID:     a.cfg.Spotify.ClientID,
			ClientSecret: a.cfg.Spotify.ClientSecret,
			BaseURL:      a.cfg.Spotify.BaseURL,
			TokenURL:     a.cfg.Spotify.TokenURL,
			Market:       a.cfg.Spotify.Market,
			MaxRetries:   a.cfg.Spotify.MaxRetries,
			RetryBackoff: a.cfg.Spotify.RetryBackoff,
			Timeout:      a.cfg.HTTP.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("app: spotify: %w", err)
		}
		return client, nil
	case config.MusicSoundCloud:
		return soundcloud.NewClient(httpClient, soundcloud.Config{
			ClientID:  a.cfg.SoundCloud.ClientID,
			BaseURL:   a.cfg.SoundCloud.BaseURL,
			UserAgent: a.cfg.HTTP.UserAgent,
			Timeout:   a.cfg.HTTP.Timeout,
		}), nil
	default:
		log.Warn().Str("provider", provider).Msg("app: no music catalog configured, tracks will use fallbacks")
		return nil, nil
	}
}

func (a *App) repository(ctx context.Context) (ports.MoodRepository, error) {
	switch a.cfg.Storage.Driver {
	case config.StorageSQLite:
		adapter, err := sqlite.NewAdapter(a.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("app: sqlite: %w", err)
		}
		a.closers = append(a.closers, adapter.Close)
		return adapter, nil
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, a.cfg.Storage.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("app: postgres: %w", err)
		}
		store := postgres.New(db)
		a.closers = append(a.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("app: postgres: %w", err)
		}
		return store, nil
	default:
		return nil, nil
	}
}

// Service returns the core orchestrator.
func (a *App) Service() *services.Orchestrator {
	return a.svc
}

// Handler returns the API wrapped in recovery, request logging and CORS.
func (a *App) Handler() http.Handler {
	return middleware.Chain(
		rest.NewHandler(a.svc),
		middleware.Recovery(),
		middleware.RequestLogging(),
		middleware.CORS(a.cfg.CORS.AllowedOrigin),
	)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("MoodWeather API listening")
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-serverErr
	}
}

// Close drains the analysis queue and releases storage.
func (a *App) Close(ctx context.Context) {
	if a.pool != nil {
		stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		a.pool.Stop(stopCtx)
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("app: close failed")
		}
	}
	a.closers = nil
}
