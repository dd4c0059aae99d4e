package services

import (
	"context"
	"errors"

	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
	"github.com/ewilliams-labs/moodweather/internal/logging"
)

// MoodWriter asks each generator in turn for a mood phrase.
type MoodWriter struct {
	generators []ports.TextGenerator
}

// NewMoodWriter constructs a MoodWriter. Nil generators are skipped.
func NewMoodWriter(generators ...ports.TextGenerator) *MoodWriter {
	kept := make([]ports.TextGenerator, 0, len(generators))
	for _, g := range generators {
		if g != nil {
			kept = append(kept, g)
		}
	}
	return &MoodWriter{generators: kept}
}

// Write returns the first usable generated phrase, or the theme's fallback
// quote when every generator fails. ModelLoading is set on the fallback
// when a generator reported that its model was still loading.
func (w *MoodWriter) Write(ctx context.Context, prompt string, theme domain.Theme) domain.Mood {
	loading := false
	for _, g := range w.generators {
		if ctx.Err() != nil {
			break
		}
		raw, err := g.Generate(ctx, prompt)
		if err != nil {
			if errors.Is(err, ports.ErrModelLoading) {
				loading = true
			}
			logging.FromContext(ctx).Warn().Err(err).Str("generator", g.Name()).Msg("mood writer: generation failed")
			continue
		}
		text := domain.CleanGeneratedText(raw, prompt)
		if text == "" {
			logging.FromContext(ctx).Warn().Str("generator", g.Name()).Msg("mood writer: generation was empty after cleanup")
			continue
		}
		author := g.Name()
		if a, ok := g.(ports.Authored); ok {
			author = a.Author()
		}
		return domain.Mood{Text: text, Author: author, Source: g.Name(), Theme: theme}
	}

	mood := domain.FallbackQuote(theme)
	mood.ModelLoading = loading
	return mood
}
