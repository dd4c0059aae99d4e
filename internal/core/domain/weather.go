package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput matches every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError is a client mistake whose message is safe to show as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ErrInvalidQuery is returned when a weather lookup has neither a city nor a full coordinate pair.
var ErrInvalidQuery error = &ValidationError{Message: "You must provide either a city name or both latitude and longitude."}

// Weather is the normalized current-conditions reading for a location.
type Weather struct {
	City         string    `json:"city"`
	Country      string    `json:"country,omitempty"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Main         string    `json:"main"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon,omitempty"`
	TemperatureC float64   `json:"temperature"`
	FeelsLikeC   float64   `json:"feelsLike"`
	Humidity     int       `json:"humidity"`
	WindSpeed    float64   `json:"windSpeed"`
	ObservedAt   time.Time `json:"observedAt"`
}

// WeatherQuery identifies the location to look up, as received from a client.
type WeatherQuery struct {
	City string
	Lat  string
	Lon  string
}

// HasCoordinates reports whether both coordinates were supplied.
func (q WeatherQuery) HasCoordinates() bool {
	return strings.TrimSpace(q.Lat) != "" && strings.TrimSpace(q.Lon) != ""
}

// Validate checks that the query can be sent upstream.
// Coordinates take precedence over the city when both are present.
func (q WeatherQuery) Validate() error {
	if q.HasCoordinates() {
		lat, err := strconv.ParseFloat(strings.TrimSpace(q.Lat), 64)
		if err != nil || lat < -90 || lat > 90 {
			return &ValidationError{Message: "Latitude must be a number between -90 and 90."}
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(q.Lon), 64)
		if err != nil || lon < -180 || lon > 180 {
			return &ValidationError{Message: "Longitude must be a number between -180 and 180."}
		}
		return nil
	}
	if strings.TrimSpace(q.City) == "" {
		return ErrInvalidQuery
	}
	return nil
}

// Place is a geocoding suggestion.
type Place struct {
	Name    string  `json:"name"`
	State   *string `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
