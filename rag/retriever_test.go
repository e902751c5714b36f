package rag

import (
	"fmt"
	"strings"
	"testing"
)

func notesOf(pairs ...string) *NoteCollection {
	notes := NewNoteCollection()
	for i := 0; i+1 < len(pairs); i += 2 {
		notes.Add(pairs[i], pairs[i+1])
	}
	return notes
}

func TestKeywords_DropsShortWordsAndPunctuation(t *testing.T) {
	got := Keywords("What is enterprise and risk?")
	want := []string{"what", "enterprise", "risk"}

	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	notes := notesOf("unit1.txt", "Enterprise means starting a business.")

	for _, q := range []string{"", "   ", "?!.,", "is it the"} {
		if got := SearchAll(notes, q, 2); len(got) != 0 {
			t.Fatalf("expected no snippets for %q, got %v", q, got)
		}
	}
}

func TestSearch_EmptyNotes(t *testing.T) {
	if got := SearchAll(NewNoteCollection(), "enterprise", 2); len(got) != 0 {
		t.Fatalf("expected no snippets for empty notes, got %v", got)
	}
	if got := SearchAll(nil, "enterprise", 2); len(got) != 0 {
		t.Fatalf("expected no snippets for nil notes, got %v", got)
	}
}

func TestSearch_BoundedOutput(t *testing.T) {
	notes := NewNoteCollection()
	for i := 0; i < 5; i++ {
		notes.Add(fmt.Sprintf("doc%d.txt", i), "Marketing mix covers price and place.")
	}

	for k := 0; k <= 6; k++ {
		got := SearchAll(notes, "marketing", k)
		if len(got) > k {
			t.Fatalf("expected at most %d snippets, got %d", k, len(got))
		}
	}
}

func TestSearch_RanksByOccurrenceCount(t *testing.T) {
	notes := notesOf(
		"light.txt", "Profit matters.",
		"heavy.txt", "Profit profit profit. Profit is key. More profit.",
	)

	got := SearchAll(notes, "profit", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(got))
	}
	if got[0].Source != "heavy.txt" {
		t.Fatalf("expected heavy.txt ranked first, got %s", got[0].Source)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	notes := notesOf(
		"first.txt", "Cash flow is vital.",
		"second.txt", "Cash flow forecasts help.",
		"third.txt", "Cash flow problems hurt.",
	)

	got := SearchAll(notes, "flow", 2)
	if len(got) != 2 || got[0].Source != "first.txt" || got[1].Source != "second.txt" {
		t.Fatalf("expected first.txt then second.txt, got %v", got)
	}
}

func TestSearch_EndToEnd(t *testing.T) {
	notes := notesOf("unit1.txt", "Enterprise means starting a business. Entrepreneurs take risks for rewards.")

	got := Format(SearchAll(notes, "What is enterprise and risk?", DefaultMaxSnippets))

	if len(got) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(got))
	}
	if got[0] != "unit1.txt: Enterprise means starting a business." {
		t.Fatalf("unexpected snippet %q", got[0])
	}
}

func TestSearch_TruncatesLongSentences(t *testing.T) {
	long := "Stakeholders " + strings.Repeat("x", 400) + "."
	notes := notesOf("long.txt", long)

	got := SearchAll(notes, "stakeholders", 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(got))
	}
	if n := len([]rune(got[0].Excerpt)); n != 180 {
		t.Fatalf("expected excerpt of 180 runes, got %d", n)
	}
}

func TestSearch_IsRestartableAndIdempotent(t *testing.T) {
	notes := notesOf(
		"a.txt", "Recruitment is costly. Training helps.",
		"b.txt", "Training improves motivation.",
	)
	seq := Search(notes, "training motivation", 2)

	var first, second []string
	for s := range seq {
		first = append(first, s.String())
	}
	for s := range seq {
		second = append(second, s.String())
	}

	if strings.Join(first, "|") != strings.Join(second, "|") {
		t.Fatalf("expected identical results, got %v and %v", first, second)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 snippets, got %v", first)
	}
}

func TestSearch_StopsWhenConsumerStops(t *testing.T) {
	notes := notesOf(
		"a.txt", "Finance basics.",
		"b.txt", "Finance again.",
	)

	count := 0
	for range Search(notes, "finance", 2) {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected iteration to stop after 1, got %d", count)
	}
}

func TestSearch_DoesNotMutateNotes(t *testing.T) {
	notes := notesOf("a.txt", "Enterprise ENTERPRISE enterprise.")

	_ = SearchAll(notes, "enterprise", 2)

	text, _ := notes.Get("a.txt")
	if text != "Enterprise ENTERPRISE enterprise." || notes.Len() != 1 {
		t.Fatalf("notes were modified: %q", text)
	}
}
