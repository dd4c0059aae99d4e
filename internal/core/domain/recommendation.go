package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// namePattern matches a run of capitalized words, optionally joined by
// lower-case connectors ("Simon & Garfunkel", "Belle and Sebastian").
// A dot only continues a word when a letter follows ("R.E.M").
const (
	capWord     = `[\p{Lu}\d](?:[\p{L}\d'\-]|\.[\p{L}])*`
	namePattern = capWord + `(?:\s+(?:(?:&|and|y|de|la|el|the|of)\s+)?` + capWord + `)*`
)

type extractor struct {
	re     *regexp.Regexp
	title  int
	artist int
	// reject discards a match whose title is not a song name.
	reject func(title string) bool
}

// Ordered by precision: the first pattern that yields a non-empty
// recommendation wins.
var extractors = []extractor{
	// "Title" by Artist / "Título" de Artista
	{re: regexp.MustCompile(`"([^"]{1,80})"\s*,?\s*(?:by|de|del|of)\s+(` + namePattern + `)`), title: 1, artist: 2},
	// Artist - "Title"
	{re: regexp.MustCompile(`(` + namePattern + `)\s*[-\x{2013}\x{2014}:]\s*"([^"]{1,80})"`), title: 2, artist: 1},
	// escucha Title de Artist
	{re: regexp.MustCompile(`\b(?i:listen to|escucha|escuchar|play|pon|prueba|try)\s+(?:(?i:la canción|the song|canción|song)\s+)?([^"\n.,;!?]{2,60}?)\s+(?:by|de)\s+(` + namePattern + `)`), title: 1, artist: 2, reject: isArtistLeadIn},
	// "Title"
	{re: regexp.MustCompile(`"([^"]{2,80})"`), title: 1},
	// canciones de Artist
	{re: regexp.MustCompile(`(?i:songs by|music by|tracks by|música de|musica de|canciones de|temas de|algo de|un poco de|something by)\s+(` + namePattern + `)`), artist: 1},
}

// Words that introduce an artist rather than a song ("música de Norah Jones").
var artistLeadIns = map[string]struct{}{
	"música":         {},
	"musica":         {},
	"la música":      {},
	"canciones":      {},
	"unas canciones": {},
	"temas":          {},
	"algo":           {},
	"un poco":        {},
	"songs":          {},
	"some songs":     {},
	"music":          {},
	"some music":     {},
	"the music":      {},
	"tracks":         {},
	"something":      {},
}

func isArtistLeadIn(title string) bool {
	_, ok := artistLeadIns[strings.ToLower(strings.Join(strings.Fields(title), " "))]
	return ok
}

// Capitalized sentence-initial verbs that the name pattern can swallow.
var leadingNoise = map[string]struct{}{
	"escucha":  {},
	"escuchar": {},
	"listen":   {},
	"play":     {},
	"pon":      {},
	"prueba":   {},
	"try":      {},
	"disfruta": {},
	"enjoy":    {},
	"con":      {},
	"with":     {},
}

// ExtractRecommendation scans generated text for a song and/or artist mention.
func ExtractRecommendation(text string) (Recommendation, bool) {
	normalized := quoteReplacer.Replace(text)
	for _, ex := range extractors {
		for _, m := range ex.re.FindAllStringSubmatch(normalized, -1) {
			if ex.reject != nil && ex.reject(m[ex.title]) {
				continue
			}
			var rec Recommendation
			if ex.title > 0 {
				rec.Title = cleanTitle(m[ex.title])
			}
			if ex.artist > 0 {
				rec.Artist = cleanArtist(m[ex.artist])
			}
			if !rec.IsEmpty() {
				return rec, true
			}
		}
	}
	return Recommendation{}, false
}

func cleanTitle(s string) string {
	title := strings.Trim(strings.Join(strings.Fields(s), " "), " ,.;:!?¡¿'")
	if !strings.ContainsFunc(title, unicode.IsLetter) {
		return ""
	}
	return title
}

func cleanArtist(s string) string {
	tokens := strings.Fields(s)
	for len(tokens) > 0 {
		if _, noise := leadingNoise[strings.ToLower(tokens[0])]; !noise {
			break
		}
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}
