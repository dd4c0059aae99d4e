package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxMoodWords caps the length of a cleaned mood phrase.
const MaxMoodWords = 40

const moodPersona = "Eres MoodWeather, una IA poética y empática que traduce el clima en mensajes inspiradores en español."

// Mood is the phrase shown next to the weather.
type Mood struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Source string `json:"source"`
	Theme  Theme  `json:"mood"`
	// ModelLoading is set when the primary model was still loading and the text is a fallback.
	ModelLoading bool `json:"-"`
}

// MoodInput is the weather summary a mood prompt is built from.
// Nil temperatures are left out of the prompt.
type MoodInput struct {
	Weather     string   `json:"weather"`
	Description string   `json:"description"`
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feelsLike"`
	Location    string   `json:"location"`
}

// MoodInputFromWeather builds the prompt input for a full weather reading.
func MoodInputFromWeather(w Weather) MoodInput {
	temp := w.TemperatureC
	feels := w.FeelsLikeC
	return MoodInput{
		Weather:     w.Main,
		Description: w.Description,
		Temperature: &temp,
		FeelsLike:   &feels,
		Location:    w.City,
	}
}

// BuildMoodPrompt renders the generation prompt for a weather summary.
func BuildMoodPrompt(in MoodInput) string {
	pieces := make([]string, 0, 4)
	if loc := strings.TrimSpace(in.Location); loc != "" {
		pieces = append(pieces, "Hoy en "+loc)
	} else {
		pieces = append(pieces, "Hoy")
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		pieces = append(pieces, fmt.Sprintf("el clima se siente %s.", desc))
	} else {
		pieces = append(pieces, "hay cambios en el clima.")
	}
	if in.Temperature != nil {
		pieces = append(pieces, fmt.Sprintf("La temperatura ronda los %s°C", formatDegrees(*in.Temperature)))
	}
	if in.FeelsLike != nil {
		pieces = append(pieces, fmt.Sprintf("con una sensación de %s°C.", formatDegrees(*in.FeelsLike)))
	}
	summary := strings.Join(strings.Fields(strings.Join(pieces, " ")), " ")

	return moodPersona + "\n" + summary + "\n" +
		"Escribe una frase breve (máximo 40 palabras) que mezcle emociones, clima y una sugerencia musical suave, " +
		`citando la canción como "Título" de Artista.`
}

// BuildQuotePrompt renders the short quote prompt used for a bare theme.
func BuildQuotePrompt(theme Theme) string {
	return fmt.Sprintf("Genera una frase breve y poética para alguien que siente el clima %s.", theme)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'",
)

// CleanGeneratedText turns raw model output into a single display line.
// An echoed prompt is removed, typographic quotes become ASCII quotes, only
// the first non-empty line is kept and the result is capped at MaxMoodWords.
// It returns "" when nothing usable remains.
func CleanGeneratedText(raw string, prompt string) string {
	text := raw
	if p := strings.TrimSpace(prompt); p != "" {
		text = strings.Replace(text, p, "", 1)
	}
	text = quoteReplacer.Replace(text)

	var line string
	for _, candidate := range strings.Split(text, "\n") {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			if len(fields) > MaxMoodWords {
				fields = fields[:MaxMoodWords]
			}
			line = strings.Join(fields, " ")
			break
		}
	}

	return line
}
