package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

var moodMessages = upstreamMessages{failed: "Unable to generate a mood right now"}

type composeMoodResponse struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

// ComposeMood handles POST /api/mood. A body that is not JSON, or no body
// at all, is read as an empty input.
func (h *Handler) ComposeMood(w http.ResponseWriter, r *http.Request) {
	var req domain.MoodInput
	if isJSONContentType(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body", codeInvalidInput)
			return
		}
	}

	mood, err := h.svc.ComposeMood(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, moodMessages)
		return
	}
	writeJSON(w, http.StatusOK, composeMoodResponse{Message: mood.Text, Source: mood.Source})
}

// Quote handles GET /api/ai-quote?mood=. A fallback served because the model
// was still loading is answered with 202 so the client can retry later.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	mood := h.svc.Quote(r.Context(), r.URL.Query().Get("mood"))

	status := http.StatusOK
	if mood.ModelLoading {
		status = http.StatusAccepted
	}
	writeJSON(w, status, mood)
}

type musicResponse struct {
	Mood  domain.Theme `json:"mood"`
	Track domain.Track `json:"track"`
}

// Music handles GET /api/music?mood=&title=&artist=. It always answers 200
// with at least the theme's fallback track.
func (h *Handler) Music(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	theme := domain.ResolveTheme(q.Get("mood"))

	var rec *domain.Recommendation
	candidate := domain.Recommendation{
		Title:  strings.TrimSpace(q.Get("title")),
		Artist: strings.TrimSpace(q.Get("artist")),
	}
	if !candidate.IsEmpty() {
		rec = &candidate
	}

	track := h.svc.SuggestTrack(r.Context(), string(theme), rec)
	writeJSON(w, http.StatusOK, musicResponse{Mood: theme, Track: track})
}
