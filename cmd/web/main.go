// Package main serves the built MoodWeather web client and forwards /api
// requests to the backend, so the browser talks to a single origin.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ewilliams-labs/moodweather/internal/logging"
	"github.com/ewilliams-labs/moodweather/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	logging.SetGlobalLogger(logging.New(logging.Config{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}))

	backendURL := getEnv("BACKEND_URL", "http://localhost:5000")
	staticDir := getEnv("STATIC_DIR", "build")
	port := getEnv("WEB_PORT", "3000")

	backend, err := url.Parse(backendURL)
	if err != nil {
		log.Fatal().Err(err).Str("backend_url", backendURL).Msg("web: invalid BACKEND_URL")
	}

	if err := waitForBackend(backendURL, 30*time.Second); err != nil {
		log.Warn().Err(err).Msg("web: backend not reachable, continuing anyway")
	} else {
		log.Info().Str("backend_url", backendURL).Msg("web: backend health check passed")
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      middleware.Chain(newMux(backend, staticDir), middleware.Recovery(), middleware.RequestLogging()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("static_dir", staticDir).Msg("web: MoodWeather client listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("web: server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("web: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("web: shutdown error")
	}
}

func newMux(backend *url.URL, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/", httputil.NewSingleHostReverseProxy(backend))
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/", spaHandler(staticDir))
	return mux
}

// spaHandler serves files from dir and answers unknown paths with
// index.html so client-side routes survive a reload.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err != nil || (info.IsDir() && r.URL.Path != "/") {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok","service":"web"}`)
}

// waitForBackend polls the backend health endpoint until it responds or times out
func waitForBackend(backendURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(backendURL + "/api/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("backend not available after %v", timeout)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
