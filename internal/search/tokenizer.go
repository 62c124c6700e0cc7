package search

import (
	"regexp"
	"strings"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "it": {}, "this": {}, "that": {},
}

var punctuation = regexp.MustCompile(`[^\w\s]`)

// Tokenize normalizes text into index tokens: lowercased, punctuation
// stripped, stop-words and tokens of length <= 2 dropped.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	cleaned := punctuation.ReplaceAllString(strings.ToLower(text), "")

	var tokens []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}
