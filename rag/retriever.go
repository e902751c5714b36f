package rag

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// minKeywordLen filters short words like "is" or "the" out of a query.
const minKeywordLen = 4

// Keywords returns the lowercase alphabetic words of query that are at least
// four letters long, in query order. Repeated words are kept.
func Keywords(query string) []string {
	var keywords []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(query), -1) {
		if len(w) >= minKeywordLen {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

// Search yields up to maxSnippets excerpts from notes relevant to query.
//
// Documents are scored by the raw occurrence count of every keyword in their
// lowercased text and visited from the highest score down, ties keeping
// insertion order. Each visited document contributes its first sentence that
// mentions a keyword. The sequence is computed afresh every time it is ranged
// over and notes are never modified.
func Search(notes *NoteCollection, query string, maxSnippets int) iter.Seq[Snippet] {
	return func(yield func(Snippet) bool) {
		if notes.Len() == 0 || maxSnippets <= 0 {
			return
		}
		keywords := Keywords(query)
		if len(keywords) == 0 {
			return
		}

		for _, doc := range rank(notes.snapshot(), keywords, maxSnippets) {
			excerpt, ok := firstMatchingSentence(doc.Text, keywords)
			if !ok {
				continue
			}
			if !yield(Snippet{Source: doc.Name, Excerpt: excerpt}) {
				return
			}
		}
	}
}

// SearchAll collects Search into a slice.
func SearchAll(notes *NoteCollection, query string, maxSnippets int) []Snippet {
	return slices.Collect(Search(notes, query, maxSnippets))
}

// Format renders snippets as "<source>: <excerpt>" lines.
func Format(snippets []Snippet) []string {
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, s.String())
	}
	return lines
}

func rank(docs []scoredDoc, keywords []string, topK int) []scoredDoc {
	ranked := make([]scoredDoc, 0, len(docs))
	for _, doc := range docs {
		lower := strings.ToLower(doc.Text)
		for _, kw := range keywords {
			doc.Score += strings.Count(lower, kw)
		}
		if doc.Score > 0 {
			ranked = append(ranked, doc)
		}
	}

	slices.SortStableFunc(ranked, func(a, b scoredDoc) int {
		return b.Score - a.Score
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	return ranked[:topK]
}

func firstMatchingSentence(text string, keywords []string) (string, bool) {
	for _, sentence := range SplitSentences(text) {
		if containsAny(strings.ToLower(sentence), keywords) {
			return truncate(strings.TrimSpace(sentence), maxExcerptRunes), true
		}
	}
	return "", false
}
