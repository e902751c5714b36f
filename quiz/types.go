// Package quiz holds the fixed revision question bank and the keyword
// overlap scorer used to mark free-text answers.
package quiz

import "time"

// Question is a bank entry with the answer used for marking.
type Question struct {
	Text            string `json:"question"`
	ReferenceAnswer string `json:"model_answer"`
}

// Result of marking one answer. Score is 0, 1 or 2.
type Result struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Attempt is one answered quiz question.
type Attempt struct {
	Topic     string    `json:"topic"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Feedback  string    `json:"feedback"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// MaxScore is the best mark a single answer can get.
const MaxScore = 2
