// Package session keeps the per-conversation state of a student: identity,
// chat history, quiz progress and uploaded notes.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"revision-buddy/quiz"
	"revision-buddy/rag"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// maxIdentityLen bounds both the name and the class of a student.
const maxIdentityLen = 40

// Message is one line of the chat transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"ts"`
}

// Session is the state of one conversation. Callers hold Lock for the
// duration of a turn.
type Session struct {
	mu sync.Mutex

	ID                 string
	CreatedAt          time.Time
	StudentName        string
	StudentClass       string
	OnboardingComplete bool
	SelectedTopic      string
	QuizActive         bool
	CurrentQuestion    *quiz.Question
	QuizHistory        []quiz.Attempt
	PendingAction      string
	History            []Message
	Notes              *rag.NoteCollection
}

// New returns an empty session on the default topic.
func New() *Session {
	return &Session{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		SelectedTopic: quiz.DefaultTopic,
		Notes:         rag.NewNoteCollection(),
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// AddMessage appends to the transcript.
func (s *Session) AddMessage(role, content string) Message {
	msg := Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
	s.History = append(s.History, msg)
	return msg
}

// Reset clears everything but the ID and the uploaded notes.
func (s *Session) Reset() {
	s.StudentName = ""
	s.StudentClass = ""
	s.OnboardingComplete = false
	s.SelectedTopic = quiz.DefaultTopic
	s.QuizActive = false
	s.CurrentQuestion = nil
	s.QuizHistory = nil
	s.PendingAction = ""
	s.History = nil
}

// View is a JSON friendly copy of a session.
type View struct {
	ID                 string         `json:"id"`
	StudentName        string         `json:"student_name"`
	StudentClass       string         `json:"student_class"`
	OnboardingComplete bool           `json:"onboarding_complete"`
	SelectedTopic      string         `json:"selected_topic"`
	QuizActive         bool           `json:"quiz_active"`
	CurrentQuestion    string         `json:"current_question,omitempty"`
	QuizHistory        []quiz.Attempt `json:"quiz_history"`
	History            []Message      `json:"history"`
	Notes              []string       `json:"notes"`
}

// View copies the session for rendering. The caller holds Lock.
func (s *Session) View() View {
	v := View{
		ID:                 s.ID,
		StudentName:        s.StudentName,
		StudentClass:       s.StudentClass,
		OnboardingComplete: s.OnboardingComplete,
		SelectedTopic:      s.SelectedTopic,
		QuizActive:         s.QuizActive,
		QuizHistory:        append([]quiz.Attempt{}, s.QuizHistory...),
		History:            append([]Message{}, s.History...),
		Notes:              s.Notes.Names(),
	}
	if s.CurrentQuestion != nil {
		v.CurrentQuestion = s.CurrentQuestion.Text
	}
	return v
}

// ParseIdentity reads "<name>, <class>" as typed by a student. Both parts
// must be non-empty and at most 40 characters.
func ParseIdentity(text string) (name, class string, ok bool) {
	name, class, found := strings.Cut(text, ",")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	class = strings.TrimSpace(class)
	if name == "" || class == "" {
		return "", "", false
	}
	if len([]rune(name)) > maxIdentityLen || len([]rune(class)) > maxIdentityLen {
		return "", "", false
	}
	return name, class, true
}
