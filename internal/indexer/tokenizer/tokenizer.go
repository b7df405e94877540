// Package tokenizer turns course text into search terms. Input is
// normalized (accents and case folded), stripped of punctuation, split on
// whitespace, filtered to terms of at least two characters and stemmed with
// a Spanish suffix stemmer.
package tokenizer

import (
	"strings"
	"unicode"
)

const minTokenLength = 2

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into stemmed, normalized Tokens in input order.
// Duplicates are kept.
func Tokenize(text string) []Token {
	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, Normalize(text))
	words := strings.Fields(cleaned)
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if len(word) < minTokenLength {
			continue
		}
		tokens = append(tokens, Token{
			Term:     Stem(word),
			Position: pos,
		})
		pos++
	}
	return tokens
}

// Terms returns only the stemmed terms of Tokenize(text).
func Terms(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	return terms
}

// isWordRune matches the ASCII word class [A-Za-z0-9_].
func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
