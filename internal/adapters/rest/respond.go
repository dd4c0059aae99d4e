package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

const (
	codeInvalidInput       = "INVALID_INPUT"
	codeNotFound           = "NOT_FOUND"
	codeMissingCredentials = "MISSING_CREDENTIALS"
	codeInvalidCredentials = "INVALID_CREDENTIALS"
	codeUpstreamTimeout    = "UPSTREAM_TIMEOUT"
	codeUpstreamError      = "UPSTREAM_ERROR"
	codeStorageDisabled    = "STORAGE_DISABLED"
	codeInternal           = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("rest: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// upstreamMessages are the client-facing texts for one upstream call.
type upstreamMessages struct {
	notFound string
	timeout  string
	failed   string
}

var (
	weatherMessages = upstreamMessages{
		notFound: "City not found. Try another name or check the spelling.",
		timeout:  "Weather request timed out",
		failed:   "Unable to fetch weather data",
	}
	geocodeMessages = upstreamMessages{
		notFound: "Location not found",
		timeout:  "Geocoding request timed out",
		failed:   "Unable to fetch suggestions",
	}
)

// writeServiceError maps core errors to HTTP statuses. Credential values
// never reach the response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msgs upstreamMessages) {
	var (
		validation *domain.ValidationError
		missing    ports.MissingCredentialsError
		upstream   *ports.UpstreamError
	)

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message, codeInvalidInput)
	case errors.As(err, &missing):
		writeError(w, http.StatusInternalServerError, missing.Error(), codeMissingCredentials)
	case errors.Is(err, ports.ErrInvalidCredentials):
		writeError(w, http.StatusInternalServerError, "The configured API key was rejected. Check your configuration.", codeInvalidCredentials)
	case errors.Is(err, ports.ErrLocationNotFound), errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, msgs.notFound, codeNotFound)
	case errors.Is(err, ports.ErrUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, msgs.timeout, codeUpstreamTimeout)
	case errors.As(err, &upstream):
		status := upstream.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		msg := upstream.Message
		if msg == "" {
			msg = msgs.failed
		}
		writeError(w, status, msg, codeUpstreamError)
	case errors.Is(err, ports.ErrStorageDisabled):
		writeError(w, http.StatusNotImplemented, "mood history storage is not configured", codeStorageDisabled)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("rest: unhandled service error")
		writeError(w, http.StatusInternalServerError, msgs.failed, codeInternal)
	}
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}
