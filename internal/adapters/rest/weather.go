package rest

import (
	"net/http"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

func weatherQuery(r *http.Request) domain.WeatherQuery {
	q := r.URL.Query()
	return domain.WeatherQuery{
		City: q.Get("city"),
		Lat:  q.Get("lat"),
		Lon:  q.Get("lon"),
	}
}

// Weather handles GET /api/weather?city= or ?lat=&lon=
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	weather, err := h.svc.CurrentWeather(r.Context(), weatherQuery(r))
	if err != nil {
		writeServiceError(w, r, err, weatherMessages)
		return
	}
	writeJSON(w, http.StatusOK, weather)
}

// Geocode handles GET /api/geocode?q=
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	places, err := h.svc.Geocode(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err, geocodeMessages)
		return
	}
	writeJSON(w, http.StatusOK, places)
}

// MoodWeather handles GET /api/mood-weather and returns the full report.
func (h *Handler) MoodWeather(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.MoodForWeather(r.Context(), weatherQuery(r))
	if err != nil {
		writeServiceError(w, r, err, weatherMessages)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
