package source

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader trims a column name, lowercases it, replaces spaces with
// underscores and folds accented letters to their ASCII base ("Año" -> "ano").
func NormalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	s = strings.ReplaceAll(s, " ", "_")
	return FoldAccents(s)
}

// FoldAccents strips combining marks after canonical decomposition.
func FoldAccents(s string) string {
	// Chained transformers carry state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

func normalizeAll(header []string, enabled bool) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if enabled {
			out[i] = NormalizeHeader(h)
		} else {
			out[i] = strings.TrimPrefix(h, "\ufeff")
		}
	}
	return out
}
