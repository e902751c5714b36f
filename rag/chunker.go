package rag

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences breaks text after '.', '!' or '?' when the mark is followed
// by whitespace. The whitespace itself is dropped; everything else is kept
// as written.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		end := i
		for i < len(text) {
			next, n := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(next) {
				break
			}
			i += n
		}
		if i == end {
			continue
		}
		sentences = append(sentences, text[start:end])
		start = i
	}

	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
