package reportrow

import (
	"testing"
	"time"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

func TestRoundTrip(t *testing.T) {
	energy := 0.42
	in := domain.MoodReport{
		ID:             "r-1",
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Weather:        domain.Weather{City: "Lima", Main: "Mist", Description: "neblina", TemperatureC: 17.5},
		Theme:          domain.ThemeMist,
		Mood:           domain.Mood{Text: "Bruma.", Author: "HuggingFace gpt2", Source: "huggingface", Theme: domain.ThemeMist},
		Recommendation: &domain.Recommendation{Title: "Holocene"},
		Track:          domain.Track{ID: "t", Title: "Holocene", Artist: "Bon Iver", Source: "spotify", Match: domain.MatchTitle},
		Energy:         &energy,
	}

	row, err := FromReport(in)
	if err != nil {
		t.Fatalf("FromReport: %v", err)
	}
	if row.City != "Lima" || !row.RecArtist.Valid || row.RecArtist.String != "" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if len(row.Args()) != 12 {
		t.Fatalf("args: got %d", len(row.Args()))
	}

	out, err := row.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if out.ID != in.ID || !out.CreatedAt.Equal(in.CreatedAt) || out.Theme != in.Theme || out.Mood != in.Mood {
		t.Fatalf("header mismatch: %+v", out)
	}
	if out.Weather != in.Weather || out.Track != in.Track {
		t.Fatalf("payload mismatch: %+v", out)
	}
	if out.Recommendation == nil || *out.Recommendation != *in.Recommendation {
		t.Fatalf("recommendation: %+v", out.Recommendation)
	}
	if out.Energy == nil || *out.Energy != energy {
		t.Fatalf("energy: %v", out.Energy)
	}
}

func TestReport_NoOptionalFields(t *testing.T) {
	row, err := FromReport(domain.MoodReport{ID: "r-2", Theme: domain.ThemeClear})
	if err != nil {
		t.Fatalf("FromReport: %v", err)
	}
	out, err := row.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if out.Recommendation != nil || out.Energy != nil {
		t.Fatalf("expected nil optionals, got %+v", out)
	}
}
