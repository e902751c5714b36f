package quiz

import (
	"regexp"
	"strings"
)

const (
	FeedbackStrong  = "Strong response - you covered the core points."
	FeedbackPartial = "Partially correct. Add more detail or examples."
	FeedbackMissing = "Key ideas are missing. Revisit the definition and try again."
)

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// wordSet returns the distinct lowercase alphabetic words of s.
func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		set[w] = struct{}{}
	}
	return set
}

// ScoreAnswer marks learner against reference by counting the distinct words
// they share. Sharing max(3, |reference words|/3) words scores 2, sharing at
// least two scores 1, anything less scores 0.
func ScoreAnswer(reference, learner string) Result {
	refWords := wordSet(reference)
	learnerWords := wordSet(learner)

	overlap := 0
	for w := range learnerWords {
		if _, ok := refWords[w]; ok {
			overlap++
		}
	}

	threshold := max(3, len(refWords)/3)
	switch {
	case overlap >= threshold:
		return Result{Score: 2, Feedback: FeedbackStrong}
	case overlap >= 2:
		return Result{Score: 1, Feedback: FeedbackPartial}
	default:
		return Result{Score: 0, Feedback: FeedbackMissing}
	}
}
