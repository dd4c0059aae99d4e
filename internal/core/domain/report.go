package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("domain: not found")

// MoodReport is the aggregated answer for one weather lookup.
type MoodReport struct {
	ID             string          `json:"id"`
	CreatedAt      time.Time       `json:"createdAt"`
	Weather        Weather         `json:"weather"`
	Theme          Theme           `json:"theme"`
	Mood           Mood            `json:"mood"`
	Recommendation *Recommendation `json:"recommendation"`
	Track          Track           `json:"track"`
	// Energy is the RMS loudness of the track preview, filled in asynchronously.
	Energy *float64 `json:"energy,omitempty"`
}

// NewMoodReport stamps a report with a fresh ID and creation time.
func NewMoodReport(w Weather, theme Theme, mood Mood, rec *Recommendation, track Track) MoodReport {
	return MoodReport{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Weather:        w,
		Theme:          theme,
		Mood:           mood,
		Recommendation: rec,
		Track:          track,
	}
}
