package domain

import "strings"

// Theme is the weather group that music keywords and fallbacks are keyed on.
type Theme string

const (
	ThemeClear        Theme = "Clear"
	ThemeClouds       Theme = "Clouds"
	ThemeRain         Theme = "Rain"
	ThemeSnow         Theme = "Snow"
	ThemeThunderstorm Theme = "Thunderstorm"
	ThemeDrizzle      Theme = "Drizzle"
	ThemeMist         Theme = "Mist"
)

var themeKeywords = map[Theme][]string{
	ThemeClear:        {"sun", "feel good", "upbeat"},
	ThemeClouds:       {"ambient", "dream", "cloudy"},
	ThemeRain:         {"rain", "lofi", "calm"},
	ThemeSnow:         {"snow", "piano", "winter"},
	ThemeThunderstorm: {"storm", "electronic", "intense"},
	ThemeDrizzle:      {"drizzle", "chill", "soft"},
	ThemeMist:         {"mist", "ambient", "haze"},
}

// OpenWeather groups that share a theme with a known one.
var themeAliases = map[string]Theme{
	"haze":    ThemeMist,
	"fog":     ThemeMist,
	"smoke":   ThemeMist,
	"dust":    ThemeMist,
	"sand":    ThemeMist,
	"ash":     ThemeMist,
	"squall":  ThemeThunderstorm,
	"tornado": ThemeThunderstorm,
}

// Themes lists every known theme in display order.
func Themes() []Theme {
	return []Theme{ThemeClear, ThemeClouds, ThemeRain, ThemeSnow, ThemeThunderstorm, ThemeDrizzle, ThemeMist}
}

// ResolveTheme maps an OpenWeather "main" group to a theme. It never fails:
// empty and unknown groups resolve to Clear.
func ResolveTheme(main string) Theme {
	key := strings.ToLower(strings.TrimSpace(main))
	if key == "" {
		return ThemeClear
	}
	for _, t := range Themes() {
		if strings.ToLower(string(t)) == key {
			return t
		}
	}
	if alias, ok := themeAliases[key]; ok {
		return alias
	}
	return ThemeClear
}

// Keywords returns the music search keywords for the theme.
func (t Theme) Keywords() []string {
	if kw, ok := themeKeywords[t]; ok {
		return append([]string(nil), kw...)
	}
	return []string{"chill", string(t)}
}
