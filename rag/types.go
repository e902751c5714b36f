package rag

// DefaultMaxSnippets is how many excerpts a chat turn asks for.
const DefaultMaxSnippets = 2

// maxExcerptRunes bounds the length of a single excerpt.
const maxExcerptRunes = 180

// Snippet is an attributed excerpt of an uploaded document
type Snippet struct {
	Source  string `json:"source"` // document name
	Excerpt string `json:"excerpt"`
}

func (s Snippet) String() string {
	return s.Source + ": " + s.Excerpt
}

// ranked document during a search
type scoredDoc struct {
	Name  string
	Text  string
	Score int
}
