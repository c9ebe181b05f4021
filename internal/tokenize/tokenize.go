// Package tokenize turns raw text into comparable word tokens.
package tokenize

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text, drops every rune that is not an ASCII letter,
// digit or whitespace, and splits the rest on whitespace runs. Lowercasing
// runs first, so capitals such as the Kelvin sign survive as their ASCII
// lowercase. Other non-ASCII runes are discarded.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)
	return strings.Fields(cleaned)
}
