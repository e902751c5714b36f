package tutor

import (
	"fmt"
	"strings"

	"revision-buddy/rag"
	"revision-buddy/session"
)

const systemPrompt = `You are the OCR Business Revision Buddy, a friendly AI tutor for OCR GCSE Business (J204).

BEHAVIOUR RULES:
- Only answer OCR GCSE Business (J204) questions
- Use British English always
- Be friendly, supportive, encouraging, clear and structured
- Use OCR command words: Identify, State, Explain, Analyse, Evaluate, Justify

CONTENT:
- Component 1 (Units 1.1-1.6): Business Activity, Marketing, People
- Component 2 (Units 2.1-2.4): Operations, Finance, Influences on Business
- Use real business examples (cafés, gyms, shops, services)
- Keep explanations concise and exam-focused

QUIZ/TEST BEHAVIOUR:
When the student asks for tests, quizzes, MCQs or practice questions:
1. Generate 3-5 exam-style questions
2. Mix AO1 (1-2 marks), AO2 (2-3 marks), AO3 (3-6+ marks)
3. Do not give answers in the same response
4. Say: "Here are your questions. Try them first, then send me your answers and I'll mark them."
5. Only reveal answers when the student submits their answers

MARKING BEHAVIOUR:
When the student submits answers:
- Mark each question separately
- State the AO level (AO1/AO2/AO3)
- Show what was good and what was missing
- Provide a model answer
- Give a "Next time" tip

SAFETY:
For non-Business topics reply: "I'm designed for OCR GCSE Business (J204). What Business topic would you like to revise?"

Use uploaded documents if available for accuracy.`

// maxHistoryMessages bounds how much of the transcript is replayed to the model.
const maxHistoryMessages = 20

// notesHint renders the snippets of the student's notes relevant to prompt,
// or "" when nothing matches.
func notesHint(notes *rag.NoteCollection, prompt string, maxSnippets int) string {
	snippets := rag.SearchAll(notes, prompt, maxSnippets)
	if len(snippets) == 0 {
		return ""
	}
	lines := []string{"Using your uploaded notes:"}
	for _, line := range rag.Format(snippets) {
		lines = append(lines, "- "+line)
	}
	return strings.Join(lines, "\n")
}

// buildSystem assembles the system message for one turn: the fixed tutor
// rules, who the student is, the scripted guidance for this turn and the
// teacher's reference documents.
func (t *Tutor) buildSystem(sess *session.Session, guidance string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)

	if sess.StudentName != "" {
		fmt.Fprintf(&sb, "\n\nStudent: %s (class %s). Selected topic: %s.", sess.StudentName, sess.StudentClass, sess.SelectedTopic)
	}
	if guidance != "" {
		sb.WriteString("\n\nGuidance for this reply:\n")
		sb.WriteString(guidance)
	}

	for _, name := range t.library.Names() {
		text, ok := t.library.Get(name)
		if !ok {
			continue
		}
		if limit := t.cfg.DocumentCharLimit; limit > 0 {
			if runes := []rune(text); len(runes) > limit {
				text = string(runes[:limit])
			}
		}
		fmt.Fprintf(&sb, "\n\n[OCR Document: %s]\n%s", name, text)
	}
	return sb.String()
}
