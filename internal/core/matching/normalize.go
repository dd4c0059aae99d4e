package matching

import (
	"strings"
	"unicode"
)

var noiseTokens = map[string]struct{}{
	"clean":      {},
	"deluxe":     {},
	"edition":    {},
	"edit":       {},
	"explicit":   {},
	"feat":       {},
	"featuring":  {},
	"ft":         {},
	"live":       {},
	"mix":        {},
	"mono":       {},
	"radio":      {},
	"remaster":   {},
	"remastered": {},
	"stereo":     {},
	"version":    {},
}

// Normalize cleans a title or artist name for comparison.
func Normalize(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	lowered := strings.ToLower(strings.TrimSpace(input))
	trimmed := stripBracketedSegments(stripDashSuffixes(lowered))
	tokens := strings.Fields(cleanSeparators(trimmed))

	cleaned := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, drop := noiseTokens[token]; drop {
			continue
		}
		cleaned = append(cleaned, token)
	}

	return strings.Join(cleaned, " ")
}

func stripDashSuffixes(input string) string {
	trimmed := strings.TrimSpace(input)
	for {
		idx := strings.LastIndex(trimmed, " - ")
		if idx == -1 || !hasNoiseToken(trimmed[idx+3:]) {
			return trimmed
		}
		trimmed = strings.TrimSpace(trimmed[:idx])
	}
}

func hasNoiseToken(input string) bool {
	for _, token := range strings.Fields(cleanSeparators(strings.ToLower(input))) {
		if _, ok := noiseTokens[token]; ok {
			return true
		}
	}
	return false
}

func stripBracketedSegments(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}

	return out.String()
}

func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}

	return out.String()
}
