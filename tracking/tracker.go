// Package tracking aggregates per-student activity for the teacher dashboard.
package tracking

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"revision-buddy/quiz"
)

type record struct {
	name         string
	class        string
	firstSeen    time.Time
	messages     int
	topics       map[string]struct{}
	quizAttempts int
	averageScore float64
}

// Row is one student line of the dashboard.
type Row struct {
	Student       string   `json:"student"`
	Class         string   `json:"class"`
	FirstSeen     string   `json:"first_seen"`
	Messages      int      `json:"messages"`
	TopicsRevised []string `json:"topics_revised"`
	QuizAttempts  int      `json:"quiz_attempts"`
	AverageScore  float64  `json:"average_score"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		records: map[string]*record{},
		now:     time.Now,
	}
}

func key(name, class string) string {
	return name + " | " + class
}

// get returns the record for the student, creating it on first sight.
// The caller holds mu.
func (t *Tracker) get(name, class string) *record {
	k := key(name, class)
	r, ok := t.records[k]
	if !ok {
		r = &record{
			name:      name,
			class:     class,
			firstSeen: t.now().UTC(),
			topics:    map[string]struct{}{},
		}
		t.records[k] = r
	}
	return r
}

// RecordMessage counts one chat message from the student on topic.
// Anonymous students are not tracked.
func (t *Tracker) RecordMessage(name, class, topic string) {
	if name == "" || class == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.get(name, class)
	r.messages++
	if topic != "" {
		r.topics[topic] = struct{}{}
	}
}

// RecordScore folds one quiz mark into the student's running average.
func (t *Tracker) RecordScore(name, class, topic string, score int) {
	if name == "" || class == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.get(name, class)
	if topic != "" {
		r.topics[topic] = struct{}{}
	}
	total := r.averageScore*float64(r.quizAttempts) + float64(score)
	r.quizAttempts++
	r.averageScore = quiz.Round2(total / float64(r.quizAttempts))
}

// Rows returns the dashboard sorted by student then class.
func (t *Tracker) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]Row, 0, len(t.records))
	for _, r := range t.records {
		topics := make([]string, 0, len(r.topics))
		for topic := range r.topics {
			topics = append(topics, topic)
		}
		slices.Sort(topics)

		rows = append(rows, Row{
			Student:       r.name,
			Class:         r.class,
			FirstSeen:     r.firstSeen.Format(time.DateOnly),
			Messages:      r.messages,
			TopicsRevised: topics,
			QuizAttempts:  r.quizAttempts,
			AverageScore:  r.averageScore,
		})
	}

	slices.SortFunc(rows, func(a, b Row) int {
		if c := strings.Compare(a.Student, b.Student); c != 0 {
			return c
		}
		return strings.Compare(a.Class, b.Class)
	})
	return rows
}

// Len is the number of tracked students.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = map[string]*record{}
}

var csvHeader = []string{
	"Student", "Class", "First seen", "Messages", "Topics revised", "Quiz attempts", "Average score",
}

// WriteCSV writes the dashboard as CSV with a header line.
func (t *Tracker) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows() {
		err := cw.Write([]string{
			row.Student,
			row.Class,
			row.FirstSeen,
			strconv.Itoa(row.Messages),
			strings.Join(row.TopicsRevised, ", "),
			strconv.Itoa(row.QuizAttempts),
			quiz.FormatAverage(row.AverageScore),
		})
		if err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
