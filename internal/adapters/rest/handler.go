// Package rest exposes the MoodWeather HTTP API.
package rest

import (
	"net/http"

	"github.com/ewilliams-labs/moodweather/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Orchestrator
	router *http.ServeMux
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator) *Handler {
	h := &Handler{
		svc:    svc,
		router: http.NewServeMux(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /api/health", h.HealthCheck)

	h.router.HandleFunc("GET /api/weather", h.Weather)
	h.router.HandleFunc("GET /api/geocode", h.Geocode)

	h.router.HandleFunc("POST /api/mood", h.ComposeMood)
	h.router.HandleFunc("GET /api/ai-quote", h.Quote)
	h.router.HandleFunc("GET /api/music", h.Music)
	h.router.HandleFunc("GET /api/mood-weather", h.MoodWeather)

	h.router.HandleFunc("GET /api/history", h.History)
	h.router.HandleFunc("GET /api/history/{id}", h.Report)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
