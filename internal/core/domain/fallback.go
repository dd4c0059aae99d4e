package domain

var fallbackTracks = map[Theme]Track{
	ThemeClear: {
		Title:      "Golden Hour",
		Artist:     "Lumina",
		URL:        "https://soundcloud.com/illuminatedsounds/golden-hour",
		ArtworkURL: "https://images.unsplash.com/photo-1500530855697-b586d89ba3ee?auto=format&fit=crop&w=600&q=80",
	},
	ThemeClouds: {
		Title:      "Silver Lining",
		Artist:     "Nimbus Collective",
		URL:        "https://soundcloud.com/lofi-girl/silver-lining",
		ArtworkURL: "https://images.unsplash.com/photo-1521292270410-a8c8e0e1ff53?auto=format&fit=crop&w=600&q=80",
	},
	ThemeRain: {
		Title:      "Night Drive",
		Artist:     "Rain City",
		URL:        "https://soundcloud.com/chillhopdotcom/rainy-night-drive",
		ArtworkURL: "https://images.unsplash.com/photo-1477959858617-67f85cf4f1df?auto=format&fit=crop&w=600&q=80",
	},
	ThemeSnow: {
		Title:      "Winter Lights",
		Artist:     "Polar Echoes",
		URL:        "https://soundcloud.com/chillhopdotcom/winter-lights",
		ArtworkURL: "https://images.unsplash.com/photo-1517832207067-4db24a2ae47c?auto=format&fit=crop&w=600&q=80",
	},
	ThemeThunderstorm: {
		Title:      "Electric Veins",
		Artist:     "Tempest",
		URL:        "https://soundcloud.com/monstercat/bossfight-epic",
		ArtworkURL: "https://images.unsplash.com/photo-1500674425229-f692875b0ab7?auto=format&fit=crop&w=600&q=80",
	},
	ThemeDrizzle: {
		Title:      "Soft Rain",
		Artist:     "Mist Field",
		URL:        "https://soundcloud.com/chillhopdotcom/soft-rain",
		ArtworkURL: "https://images.unsplash.com/photo-1469474968028-56623f02e42e?auto=format&fit=crop&w=600&q=80",
	},
	ThemeMist: {
		Title:      "Silent Morning",
		Artist:     "Horizon",
		URL:        "https://soundcloud.com/ambientmusique/silent-morning",
		ArtworkURL: "https://images.unsplash.com/photo-1500534623283-312aade485b7?auto=format&fit=crop&w=600&q=80",
	},
}

type quote struct {
	text   string
	author string
}

var fallbackQuotes = map[Theme]quote{
	ThemeClear:        {"La luz es como el agua: cuando se abre la puerta, inunda todo el corazón.", "Gabriel García Márquez"},
	ThemeClouds:       {"Entre nubes aprendemos a distinguir los matices de la esperanza.", "Alejandra Pizarnik"},
	ThemeRain:         {"Llueve, y yo siento que la lluvia es otra forma de volver a empezar.", "Julio Cortázar"},
	ThemeSnow:         {"La nieve cubre el ruido del mundo con un silencio lleno de posibilidades.", "Idea Vilariño"},
	ThemeThunderstorm: {"Hasta la tormenta más intensa oculta el pulso de una nueva calma.", "Octavio Paz"},
	ThemeDrizzle:      {"Hay lloviznas que parecen susurros: apenas tocan, pero transforman todo.", "Alfonsina Storni"},
	ThemeMist:         {"En la neblina uno no se pierde, solo aprende a avanzar de a poco.", "Mario Benedetti"},
}

// FallbackTrack returns the hardcoded suggestion for a theme. Unknown themes get Clear's.
func FallbackTrack(theme Theme) Track {
	t, ok := fallbackTracks[theme]
	if !ok {
		t = fallbackTracks[ThemeClear]
	}
	t.Source = SourceFallback
	t.Match = MatchFallback
	return t
}

// FallbackQuote returns the hardcoded mood for a theme. Unknown themes get Clear's.
func FallbackQuote(theme Theme) Mood {
	resolved := theme
	q, ok := fallbackQuotes[theme]
	if !ok {
		resolved = ThemeClear
		q = fallbackQuotes[ThemeClear]
	}
	return Mood{
		Text:   q.text,
		Author: q.author,
		Source: SourceFallback,
		Theme:  resolved,
	}
}
