package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/moodweather/internal/app"
	"github.com/ewilliams-labs/moodweather/internal/core/domain"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent mood reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			reports, err := a.Service().History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), reports)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of reports to show (max 100)")
	return cmd
}

func renderHistory(w io.Writer, reports []domain.MoodReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"When", "City", "Theme", "Track", "Match", "Energy"})

	for _, r := range reports {
		energy := "-"
		if r.Energy != nil {
			energy = fmt.Sprintf("%.2f", *r.Energy)
		}
		t.AppendRow(table.Row{
			r.CreatedAt.Local().Format(time.DateTime),
			placeLabel(r.Weather),
			r.Theme,
			fmt.Sprintf("%s · %s", r.Track.Title, r.Track.Artist),
			r.Track.Match,
			energy,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(reports)})
	t.Render()
}
