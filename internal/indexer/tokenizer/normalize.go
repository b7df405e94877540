package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldReplacer = strings.NewReplacer("ñ", "n", "Ñ", "N", "ü", "u", "Ü", "U")

// Normalize folds text for comparison: canonical decomposition, combining
// marks removed, ñ and ü folded to n and u, lower-cased. It never fails; on
// a transform error the input is folded without decomposition.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return strings.ToLower(foldReplacer.Replace(stripped))
}
