package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/moodweather/internal/app"
	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

func newMoodCmd(opts *rootOptions) *cobra.Command {
	var q domain.WeatherQuery

	cmd := &cobra.Command{
		Use:   "mood [city]",
		Short: "Compose a mood and track for the current weather",
		Example: `  moodweather mood Madrid
  moodweather mood --lat 40.41 --lon -3.70`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.City = args[0]
			}
			if err := q.Validate(); err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			stop := startSpinner("Reading the sky")
			report, err := a.Service().MoodForWeather(cmd.Context(), q)
			stop()
			if err != nil {
				return err
			}

			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&q.City, "city", "", "city name")
	cmd.Flags().StringVar(&q.Lat, "lat", "", "latitude")
	cmd.Flags().StringVar(&q.Lon, "lon", "", "longitude")
	return cmd
}

// startSpinner shows progress on stderr and returns the function that clears it.
func startSpinner(message string) func() {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}

func renderReport(w io.Writer, r domain.MoodReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("MoodWeather · %s", placeLabel(r.Weather))

	t.AppendRow(table.Row{"Weather", fmt.Sprintf("%s (%s), %.1f°C", r.Weather.Description, r.Theme, r.Weather.TemperatureC)})
	t.AppendRow(table.Row{"Mood", r.Mood.Text})
	t.AppendRow(table.Row{"Author", fmt.Sprintf("%s [%s]", r.Mood.Author, r.Mood.Source)})
	if r.Recommendation != nil {
		t.AppendRow(table.Row{"Suggested", recommendationLabel(*r.Recommendation)})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Track", fmt.Sprintf("%s · %s", r.Track.Title, r.Track.Artist)})
	t.AppendRow(table.Row{"Match", fmt.Sprintf("%s via %s", r.Track.Match, r.Track.Source)})
	t.AppendRow(table.Row{"Listen", r.Track.URL})
	t.Render()
}

func placeLabel(w domain.Weather) string {
	if w.Country == "" {
		return w.City
	}
	return w.City + ", " + w.Country
}

func recommendationLabel(r domain.Recommendation) string {
	switch {
	case r.Title != "" && r.Artist != "":
		return fmt.Sprintf("%q by %s", r.Title, r.Artist)
	case r.Title != "":
		return fmt.Sprintf("%q", r.Title)
	default:
		return r.Artist
	}
}
