// Package tutor drives a revision conversation: onboarding, topic help,
// the quiz loop and note-grounded replies from the language model.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"revision-buddy/llm"
	"revision-buddy/quiz"
	"revision-buddy/rag"
	"revision-buddy/session"
	"revision-buddy/tracking"
)

const (
	ActionRevise = "revise"
	ActionQuiz   = "quiz"
	ActionTerm   = "term"
	ActionExam   = "exam"
	ActionUpload = "upload"
	ActionHelp   = "help"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrEmptyPrompt   = errors.New("empty prompt")
)

// actionLabels is the text a student "says" when pressing an action button.
var actionLabels = map[string]string{
	ActionRevise: "Revise a topic",
	ActionQuiz:   "Quick quiz",
	ActionTerm:   "Explain a key term",
	ActionExam:   "Exam style question",
	ActionUpload: "Upload my notes",
	ActionHelp:   "Help",
}

const (
	welcomeText = "Welcome. Tell me your first name or initials and your class in one message, for example `A.J., 10B1`."
	uploadText  = "Upload your notes using the uploader below and I will use them when you ask questions."
	helpText    = "I can recap topics, set quick quizzes, craft exam style prompts, explain key terms and weave in your uploaded notes."
)

// Config tunes the replies.
type Config struct {
	MaxSnippets       int
	MaxTokens         int
	Temperature       float64
	DocumentCharLimit int
	ModelTimeout      time.Duration
}

// Tutor is shared by all sessions. Every method locks the session it is
// given for the whole turn.
type Tutor struct {
	picker  *quiz.Picker
	tracker *tracking.Tracker
	library *rag.NoteCollection
	model   llm.Client
	logger  *zap.Logger
	cfg     Config
}

// New builds a Tutor. A nil model makes every reply scripted; library holds
// the teacher's reference documents shared by all sessions.
func New(picker *quiz.Picker, tracker *tracking.Tracker, library *rag.NoteCollection, model llm.Client, logger *zap.Logger, cfg Config) *Tutor {
	if library == nil {
		library = rag.NewNoteCollection()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tutor{
		picker:  picker,
		tracker: tracker,
		library: library,
		model:   model,
		logger:  logger,
		cfg:     cfg,
	}
}

// ValidAction reports whether action names one of the action buttons.
func ValidAction(action string) bool {
	_, ok := actionLabels[action]
	return ok
}

// Welcome greets a fresh session and asks who the student is.
func (t *Tutor) Welcome(sess *session.Session) session.Message {
	sess.Lock()
	defer sess.Unlock()
	return sess.AddMessage(session.RoleAssistant, welcomeText)
}

// Handle processes one student message, optionally sent through an action
// button, and returns the assistant replies it produced.
func (t *Tutor) Handle(ctx context.Context, sess *session.Session, prompt, action string) ([]session.Message, error) {
	if action != "" && !ValidAction(action) {
		return nil, fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		if action == "" {
			return nil, ErrEmptyPrompt
		}
		prompt = actionLabels[action]
	}

	sess.Lock()
	defer sess.Unlock()

	if action != "" {
		sess.PendingAction = action
	}
	start := len(sess.History)
	sess.AddMessage(session.RoleUser, prompt)

	if sess.OnboardingComplete {
		t.tracker.RecordMessage(sess.StudentName, sess.StudentClass, sess.SelectedTopic)
	}

	switch {
	case !sess.OnboardingComplete:
		t.onboard(sess, prompt)
	case sess.QuizActive:
		t.answer(sess, prompt)
	case sess.PendingAction == ActionQuiz:
		t.startQuiz(sess)
	case sess.PendingAction == ActionUpload:
		sess.PendingAction = ""
		sess.AddMessage(session.RoleAssistant, uploadText)
	case sess.PendingAction == ActionHelp:
		sess.PendingAction = ""
		sess.AddMessage(session.RoleAssistant, helpText)
	default:
		sess.AddMessage(session.RoleAssistant, t.respond(ctx, sess, prompt))
	}

	var replies []session.Message
	for _, m := range sess.History[start:] {
		if m.Role == session.RoleAssistant {
			replies = append(replies, m)
		}
	}
	return replies, nil
}

func (t *Tutor) onboard(sess *session.Session, prompt string) {
	sess.PendingAction = ""

	name, class, ok := session.ParseIdentity(prompt)
	if !ok {
		sess.AddMessage(session.RoleAssistant, welcomeText)
		return
	}
	sess.StudentName = name
	sess.StudentClass = class
	sess.OnboardingComplete = true
	sess.AddMessage(session.RoleAssistant, fmt.Sprintf(
		"Thanks **%s** from **%s**. What do you fancy doing today? Choose an option below or type your own request.",
		name, class,
	))
	t.logger.Info("student onboarded",
		zap.String("session", sess.ID),
		zap.String("class", class),
	)
}

// SelectTopic changes the topic used for help and quiz questions.
func (t *Tutor) SelectTopic(sess *session.Session, topic string) error {
	if !quiz.ValidTopic(topic) {
		return fmt.Errorf("%q: %w", topic, quiz.ErrUnknownTopic)
	}
	sess.Lock()
	defer sess.Unlock()
	sess.SelectedTopic = topic
	return nil
}

// guidance is the scripted reply for a free-form prompt.
func (t *Tutor) guidance(sess *session.Session, prompt string) string {
	lower := strings.ToLower(prompt)
	topic := sess.SelectedTopic
	lines := []string{fmt.Sprintf("Topic focus: %s.", topic)}

	switch {
	case strings.Contains(lower, "define") || strings.Contains(lower, "what is") || sess.PendingAction == ActionTerm:
		lines = append(lines,
			"Here is a clear definition followed by an exam ready sentence.",
			"- Definition: a concise explanation of the term.",
			"- Application: link it to a business example to show understanding.",
		)
	case sess.PendingAction == ActionExam:
		lines = append(lines,
			"Exam style practice: plan your answer with a point, evidence and a short conclusion.",
			"Try this question: "+quiz.ExamQuestion(topic),
		)
	case sess.PendingAction == ActionRevise:
		lines = append(lines, "Quick recap: recall key points, connect to stakeholders and consider exam command words.")
	default:
		lines = append(lines, "Structured help: ask for examples, calculations or revision tips.")
	}

	if hint := notesHint(sess.Notes, prompt, t.cfg.MaxSnippets); hint != "" {
		lines = append(lines, hint)
	}
	return strings.Join(lines, "\n")
}

// respond answers a free-form prompt. Without a model, or when the model
// call fails, the scripted guidance is the reply.
func (t *Tutor) respond(ctx context.Context, sess *session.Session, prompt string) string {
	scripted := t.guidance(sess, prompt)
	sess.PendingAction = ""

	if t.model == nil {
		return scripted
	}

	if t.cfg.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.ModelTimeout)
		defer cancel()
	}

	history := sess.History
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := t.model.Chat(ctx, llm.Request{
		System:      t.buildSystem(sess, scripted),
		Messages:    messages,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		t.logger.Warn("model call failed, using scripted reply",
			zap.String("session", sess.ID),
			zap.String("provider", t.model.Name()),
			zap.Error(err),
		)
		return scripted
	}
	return reply
}
