package tokenizer

import "strings"

// derivationalSuffixes is scanned in order; the first suffix that fits is
// the only one removed.
var derivationalSuffixes = []string{
	"ciones", "cion", "mente", "idades", "idad",
	"icamente", "ista", "istas", "izar", "izado", "izacion",
	"ante", "antes", "able", "ibles",
	"ador", "adores", "adora", "adoras",
	"ando", "iendo", "ado", "ido", "aba", "ia", "ar", "er", "ir",
}

// Stem strips at most one Spanish derivational suffix and then a plural
// ending. A suffix is removed only when more than two characters remain.
// Stem is deterministic but not idempotent.
func Stem(word string) string {
	for _, suffix := range derivationalSuffixes {
		if strings.HasSuffix(word, suffix) && len(word) > len(suffix)+2 {
			word = word[:len(word)-len(suffix)]
			break
		}
	}
	switch {
	case strings.HasSuffix(word, "es") && len(word) > 4:
		word = word[:len(word)-2]
	case strings.HasSuffix(word, "s") && len(word) > 3:
		word = word[:len(word)-1]
	}
	return word
}
