// Package reportrow maps mood reports to and from the flat row shape shared
// by the SQL repositories.
package reportrow

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

// Columns lists the mood_reports columns in scan order.
const Columns = "id, created_at, city, theme, weather_json, mood_text, mood_author, mood_source, rec_title, rec_artist, track_json, energy"

// Row is one mood_reports row.
type Row struct {
	ID          string
	CreatedAt   time.Time
	City        string
	Theme       string
	WeatherJSON string
	MoodText    string
	MoodAuthor  string
	MoodSource  string
	RecTitle    sql.NullString
	RecArtist   sql.NullString
	TrackJSON   string
	Energy      sql.NullFloat64
}

// Args returns the row values in column order.
func (r Row) Args() []any {
	return []any{
		r.ID, r.CreatedAt, r.City, r.Theme, r.WeatherJSON,
		r.MoodText, r.MoodAuthor, r.MoodSource,
		r.RecTitle, r.RecArtist, r.TrackJSON, r.Energy,
	}
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Scan reads one row in column order.
func Scan(s Scanner) (Row, error) {
	var r Row
	err := s.Scan(
		&r.ID, &r.CreatedAt, &r.City, &r.Theme, &r.WeatherJSON,
		&r.MoodText, &r.MoodAuthor, &r.MoodSource,
		&r.RecTitle, &r.RecArtist, &r.TrackJSON, &r.Energy,
	)
	return r, err
}

// FromReport flattens a report.
func FromReport(m domain.MoodReport) (Row, error) {
	weather, err := json.Marshal(m.Weather)
	if err != nil {
		return Row{}, fmt.Errorf("encode weather: %w", err)
	}
	track, err := json.Marshal(m.Track)
	if err != nil {
		return Row{}, fmt.Errorf("encode track: %w", err)
	}

	r := Row{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt.UTC(),
		City:        m.Weather.City,
		Theme:       string(m.Theme),
		WeatherJSON: string(weather),
		MoodText:    m.Mood.Text,
		MoodAuthor:  m.Mood.Author,
		MoodSource:  m.Mood.Source,
		TrackJSON:   string(track),
	}
	if m.Recommendation != nil {
		r.RecTitle = sql.NullString{String: m.Recommendation.Title, Valid: true}
		r.RecArtist = sql.NullString{String: m.Recommendation.Artist, Valid: true}
	}
	if m.Energy != nil {
		r.Energy = sql.NullFloat64{Float64: *m.Energy, Valid: true}
	}
	return r, nil
}

// Report rebuilds the domain value.
func (r Row) Report() (domain.MoodReport, error) {
	m := domain.MoodReport{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC(),
		Theme:     domain.Theme(r.Theme),
		Mood: domain.Mood{
			Text:   r.MoodText,
			Author: r.MoodAuthor,
			Source: r.MoodSource,
			Theme:  domain.Theme(r.Theme),
		},
	}
	if err := json.Unmarshal([]byte(r.WeatherJSON), &m.Weather); err != nil {
		return domain.MoodReport{}, fmt.Errorf("decode weather: %w", err)
	}
	if err := json.Unmarshal([]byte(r.TrackJSON), &m.Track); err != nil {
		return domain.MoodReport{}, fmt.Errorf("decode track: %w", err)
	}
	if r.RecTitle.Valid || r.RecArtist.Valid {
		m.Recommendation = &domain.Recommendation{Title: r.RecTitle.String, Artist: r.RecArtist.String}
	}
	if r.Energy.Valid {
		e := r.Energy.Float64
		m.Energy = &e
	}
	return m, nil
}
