package search

import "regexp"

var unsafeMatch = regexp.MustCompile(`[^0-9A-Za-z_*\s"]+`)

// Sanitize replaces each run of characters outside letters, digits,
// underscore, whitespace, '*' and '"' with a single space so the text can be
// handed to FTS5 MATCH without introducing operators or syntax errors.
func Sanitize(s string) string {
	return unsafeMatch.ReplaceAllString(s, " ")
}
