// Package textstat provides best-effort text analytics over message bodies:
// stemmed word tokens, emoji graphemes, mentions, hashtags and links.
//
// Nothing in this package returns an error. Degenerate input yields an empty
// result instead.
package textstat

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Tokenize lowercases text, strips punctuation and symbols, splits on whitespace, drops
// English stop words and stems what is left. Tokens with no letter or digit
// are discarded.
func Tokenize(text string) (tokens []string) {
	defer func() {
		if recover() != nil {
			tokens = []string{}
		}
	}()

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, strings.ToLower(text))

	tokens = []string{}
	for _, word := range strings.Fields(cleaned) {
		if IsStopWord(word) || !hasAlnum(word) {
			continue
		}
		tokens = append(tokens, english.Stem(word, false))
	}
	return tokens
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
