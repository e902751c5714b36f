package quiz

import (
	"math"
	"strconv"
	"strings"
)

// Summary returns how many attempts there are and their mean score rounded
// to two decimal places.
func Summary(attempts []Attempt) (int, float64) {
	if len(attempts) == 0 {
		return 0, 0
	}
	total := 0
	for _, a := range attempts {
		total += a.Score
	}
	return len(attempts), Round2(float64(total) / float64(len(attempts)))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAverage renders a rounded average with at least one decimal place,
// so 2 reads "2.0" and 1.67 reads "1.67".
func FormatAverage(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
