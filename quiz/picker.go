package quiz

import (
	"math/rand"
	"sync"
	"time"
)

// RandSource picks an index in [0, n).
type RandSource interface {
	Intn(n int) int
}

// Picker selects questions from a bank at random.
type Picker struct {
	bank Bank

	mu  sync.Mutex // *rand.Rand is not safe for concurrent use
	src RandSource
}

// NewPicker returns a Picker over bank. A nil src uses a time seeded
// generator.
func NewPicker(bank Bank, src RandSource) *Picker {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{bank: bank, src: src}
}

// Pick returns a question for topic. Unknown topics draw from general
// revision.
func (p *Picker) Pick(topic string) Question {
	questions := p.bank.For(topic)
	if len(questions) == 0 {
		return Question{}
	}

	p.mu.Lock()
	idx := p.src.Intn(len(questions))
	p.mu.Unlock()

	return questions[idx]
}
