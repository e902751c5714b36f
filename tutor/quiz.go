package tutor

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"revision-buddy/quiz"
	"revision-buddy/session"
)

// StartQuiz asks the first question on the session's topic.
func (t *Tutor) StartQuiz(sess *session.Session) session.Message {
	sess.Lock()
	defer sess.Unlock()
	return t.startQuiz(sess)
}

func (t *Tutor) startQuiz(sess *session.Session) session.Message {
	sess.QuizActive = true
	sess.PendingAction = ""

	q := t.picker.Pick(sess.SelectedTopic)
	sess.CurrentQuestion = &q
	return sess.AddMessage(session.RoleAssistant, fmt.Sprintf(
		"Quiz time. One question at a time.\n\n**%s**\n\nType your answer or press End quiz to stop.",
		q.Text,
	))
}

// answer marks prompt against the current question and moves on to the next.
func (t *Tutor) answer(sess *session.Session, prompt string) {
	q := sess.CurrentQuestion
	if q == nil {
		sess.AddMessage(session.RoleAssistant, "Quiz question missing. Starting a new one.")
		t.startQuiz(sess)
		return
	}

	res := quiz.ScoreAnswer(q.ReferenceAnswer, prompt)
	sess.QuizHistory = append(sess.QuizHistory, quiz.Attempt{
		Topic:     sess.SelectedTopic,
		Question:  q.Text,
		Answer:    prompt,
		Feedback:  res.Feedback,
		Score:     res.Score,
		Timestamp: time.Now().UTC(),
	})
	t.tracker.RecordScore(sess.StudentName, sess.StudentClass, sess.SelectedTopic, res.Score)
	t.logger.Debug("quiz answer scored",
		zap.String("session", sess.ID),
		zap.String("topic", sess.SelectedTopic),
		zap.Int("score", res.Score),
	)

	sess.AddMessage(session.RoleAssistant, fmt.Sprintf("Feedback: %s (Score %d/%d).", res.Feedback, res.Score, quiz.MaxScore))
	t.startQuiz(sess)
}

// EndQuiz stops the quiz loop and summarises every answer of the session.
// note, when set, is appended to the summary.
func (t *Tutor) EndQuiz(sess *session.Session, note string) session.Message {
	sess.Lock()
	defer sess.Unlock()

	sess.QuizActive = false
	sess.CurrentQuestion = nil
	sess.PendingAction = ""

	count, average := quiz.Summary(sess.QuizHistory)
	if count == 0 {
		return sess.AddMessage(session.RoleAssistant, "Quiz ended. No answers recorded yet.")
	}

	lines := []string{
		"Quiz summary:",
		fmt.Sprintf("- Questions answered: %d", count),
		fmt.Sprintf("- Average score: %s / %d", quiz.FormatAverage(average), quiz.MaxScore),
	}
	if note != "" {
		lines = append(lines, note)
	}
	return sess.AddMessage(session.RoleAssistant, strings.Join(lines, "\n"))
}
