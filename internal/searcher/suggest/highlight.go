package suggest

import (
	"regexp"
)

const (
	highlightOpen  = "<b>"
	highlightClose = "</b>"
)

// Highlight wraps the first case-insensitive occurrence of query inside text
// in bold markers. The query is matched literally, without normalization or
// stemming, so accent or inflection differences leave text unchanged.
func Highlight(text, query string) string {
	if query == "" {
		return text
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return text
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + highlightOpen + text[loc[0]:loc[1]] + highlightClose + text[loc[1]:]
}
