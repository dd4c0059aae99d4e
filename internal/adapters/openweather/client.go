// Package openweather provides current conditions and geocoding from the
// OpenWeather API.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ewilliams-labs/moodweather/internal/adapters/retry"
	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultGeoURL  = "https://api.openweathermap.org/geo/1.0"
)

// Config holds the client settings. Empty fields use the defaults.
type Config struct {
	APIKey    string
	BaseURL   string
	GeoURL    string
	Units     string
	Lang      string
	UserAgent string
}

// Client is an HTTP client for the OpenWeather adapter.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// compile-time interface assertion
var _ ports.WeatherProvider = (*Client)(nil)

// NewClient constructs a new OpenWeather client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = DefaultGeoURL
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if cfg.Lang == "" {
		cfg.Lang = "es"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.GeoURL = strings.TrimRight(cfg.GeoURL, "/")
	return &Client{httpClient: httpClient, cfg: cfg}
}

type currentResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Dt int64 `json:"dt"`
}

type geoResult struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Current fetches current conditions. Coordinates win over the city.
func (c *Client) Current(ctx context.Context, q domain.WeatherQuery) (domain.Weather, error) {
	if c.cfg.APIKey == "" {
		return domain.Weather{}, ports.MissingCredentialsError{Setting: "OPENWEATHER_API_KEY"}
	}

	params := url.Values{}
	params.Set("appid", c.cfg.APIKey)
	params.Set("units", c.cfg.Units)
	params.Set("lang", c.cfg.Lang)
	if q.HasCoordinates() {
		params.Set("lat", strings.TrimSpace(q.Lat))
		params.Set("lon", strings.TrimSpace(q.Lon))
	} else {
		params.Set("q", strings.TrimSpace(q.City))
	}

	var body currentResponse
	if err := c.get(ctx, c.cfg.BaseURL+"/weather", params, &body); err != nil {
		return domain.Weather{}, err
	}

	w := domain.Weather{
		City:         body.Name,
		Country:      body.Sys.Country,
		Lat:          body.Coord.Lat,
		Lon:          body.Coord.Lon,
		TemperatureC: body.Main.Temp,
		FeelsLikeC:   body.Main.FeelsLike,
		Humidity:     body.Main.Humidity,
		WindSpeed:    body.Wind.Speed,
	}
	if len(body.Weather) > 0 {
		w.Main = body.Weather[0].Main
		w.Description = body.Weather[0].Description
		w.Icon = body.Weather[0].Icon
	}
	if body.Dt > 0 {
		w.ObservedAt = time.Unix(body.Dt, 0).UTC()
	}
	return w, nil
}

// Geocode returns up to limit places matching q.
func (c *Client) Geocode(ctx context.Context, q string, limit int) ([]domain.Place, error) {
	if c.cfg.APIKey == "" {
		return nil, ports.MissingCredentialsError{Setting: "OPENWEATHER_API_KEY"}
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("appid", c.cfg.APIKey)

	var results []geoResult
	if err := c.get(ctx, c.cfg.GeoURL+"/direct", params, &results); err != nil {
		return nil, err
	}

	places := make([]domain.Place, 0, len(results))
	for _, r := range results {
		p := domain.Place{Name: r.Name, Country: r.Country, Lat: r.Lat, Lon: r.Lon}
		if r.State != "" {
			state := r.State
			p.State = &state
		}
		places = append(places, p)
	}
	return places, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("openweather: build request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if retry.IsTimeout(err) {
			return fmt.Errorf("openweather: %w", ports.ErrUpstreamTimeout)
		}
		return fmt.Errorf("openweather: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("openweather: %w", ports.ErrLocationNotFound)
	case http.StatusUnauthorized:
		return fmt.Errorf("openweather: %w", ports.ErrInvalidCredentials)
	default:
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &ports.UpstreamError{Service: "openweather", Status: resp.StatusCode, Message: e.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("openweather: %w", ports.ErrUpstreamTimeout)
		}
		return fmt.Errorf("openweather: decode response: %w", err)
	}
	return nil
}
