package tutor_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"revision-buddy/llm"
	"revision-buddy/quiz"
	"revision-buddy/rag"
	"revision-buddy/session"
	"revision-buddy/tracking"
	"revision-buddy/tutor"
)

type firstQuestion struct{}

func (firstQuestion) Intn(int) int { return 0 }

type fakeModel struct {
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeModel) Chat(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeModel) Name() string { return "fake" }

// stalledModel never answers on its own and only returns once ctx is done.
type stalledModel struct{}

func (stalledModel) Chat(ctx context.Context, _ llm.Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (stalledModel) Name() string { return "stalled" }

func contents(msgs []session.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}

var _ = Describe("Tutor", func() {
	var (
		ctx     context.Context
		tracker *tracking.Tracker
		library *rag.NoteCollection
		model   *fakeModel
		t       *tutor.Tutor
		sess    *session.Session
	)

	newTutor := func(client llm.Client) *tutor.Tutor {
		return tutor.New(
			quiz.NewPicker(quiz.DefaultBank(), firstQuestion{}),
			tracker,
			library,
			client,
			nil,
			tutor.Config{MaxSnippets: rag.DefaultMaxSnippets, MaxTokens: 500, Temperature: 0.7, DocumentCharLimit: 20},
		)
	}

	onboard := func() {
		_, err := t.Handle(ctx, sess, "A.J., 10B1", "")
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		tracker = tracking.NewTracker()
		library = rag.NewNoteCollection()
		model = &fakeModel{reply: "model says hi"}
		t = newTutor(nil)
		sess = session.New()
	})

	Describe("Welcome", func() {
		It("asks for name and class", func() {
			msg := t.Welcome(sess)
			Expect(msg.Role).To(Equal(session.RoleAssistant))
			Expect(msg.Content).To(ContainSubstring("A.J., 10B1"))
			Expect(sess.History).To(HaveLen(1))
		})
	})

	Describe("onboarding", func() {
		It("asks again when the identity cannot be parsed", func() {
			replies, err := t.Handle(ctx, sess, "hello there", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(replies).To(HaveLen(1))
			Expect(replies[0].Content).To(HavePrefix("Welcome."))
			Expect(sess.OnboardingComplete).To(BeFalse())
		})

		It("greets the student and stores the identity", func() {
			replies, err := t.Handle(ctx, sess, "A.J., 10B1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(replies[0].Content).To(ContainSubstring("Thanks **A.J.** from **10B1**"))
			Expect(sess.StudentName).To(Equal("A.J."))
			Expect(sess.StudentClass).To(Equal("10B1"))
			Expect(tracker.Len()).To(BeZero())
		})

		It("ignores actions until the student is known", func() {
			_, err := t.Handle(ctx, sess, "", tutor.ActionQuiz)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.QuizActive).To(BeFalse())
			Expect(sess.PendingAction).To(BeEmpty())
		})
	})

	Describe("input validation", func() {
		It("rejects unknown actions", func() {
			_, err := t.Handle(ctx, sess, "hi", "dance")
			Expect(errors.Is(err, tutor.ErrUnknownAction)).To(BeTrue())
		})

		It("rejects an empty prompt without an action", func() {
			_, err := t.Handle(ctx, sess, "   ", "")
			Expect(err).To(MatchError(tutor.ErrEmptyPrompt))
		})

		It("rejects unknown topics", func() {
			err := t.SelectTopic(sess, "Unit 42")
			Expect(errors.Is(err, quiz.ErrUnknownTopic)).To(BeTrue())
		})
	})

	Describe("once onboarded", func() {
		BeforeEach(onboard)

		It("tracks every message", func() {
			_, err := t.Handle(ctx, sess, "explain stakeholders", "")
			Expect(err).NotTo(HaveOccurred())

			rows := tracker.Rows()
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Messages).To(Equal(1))
			Expect(rows[0].TopicsRevised).To(ConsistOf(quiz.DefaultTopic))
		})

		It("answers help and upload actions with canned text", func() {
			replies, err := t.Handle(ctx, sess, "", tutor.ActionHelp)
			Expect(err).NotTo(HaveOccurred())
			Expect(replies[0].Content).To(HavePrefix("I can recap topics"))
			Expect(sess.History[len(sess.History)-2].Content).To(Equal("Help"))

			replies, err = t.Handle(ctx, sess, "", tutor.ActionUpload)
			Expect(err).NotTo(HaveOccurred())
			Expect(replies[0].Content).To(ContainSubstring("Upload your notes"))
			Expect(sess.PendingAction).To(BeEmpty())
		})

		It("sets an exam question for the selected topic", func() {
			Expect(t.SelectTopic(sess, quiz.TopicFinance)).To(Succeed())

			replies, err := t.Handle(ctx, sess, "", tutor.ActionExam)
			Expect(err).NotTo(HaveOccurred())
			Expect(replies[0].Content).To(ContainSubstring("Topic focus: Unit 5 - Finance."))
			Expect(replies[0].Content).To(ContainSubstring(quiz.ExamQuestion(quiz.TopicFinance)))
			Expect(sess.PendingAction).To(BeEmpty())
		})

		It("gives definition guidance for what-is questions", func() {
			replies, err := t.Handle(ctx, sess, "What is a franchise?", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(replies[0].Content).To(ContainSubstring("- Definition:"))
		})

		It("weaves in matching uploaded notes", func() {
			sess.Notes.Add("unit1.txt", "Enterprise means starting a business. Entrepreneurs take risks for rewards.")

			replies, err := t.Handle(ctx, sess, "What is enterprise and risk?", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(replies[0].Content).To(ContainSubstring(
				"Using your uploaded notes:\n- unit1.txt: Enterprise means starting a business.",
			))
		})
	})

	Describe("quiz loop", func() {
		BeforeEach(onboard)

		It("asks, scores, records and asks again", func() {
			replies, err := t.Handle(ctx, sess, "", tutor.ActionQuiz)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.QuizActive).To(BeTrue())
			Expect(replies[0].Content).To(ContainSubstring("**Define enterprise"))

			replies, err = t.Handle(ctx, sess, "Enterprise is taking initiative to manage a business", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(replies)).To(HaveLen(2))
			Expect(replies[0].Content).To(Equal("Feedback: Strong response - you covered the core points. (Score 2/2)."))
			Expect(replies[1].Content).To(HavePrefix("Quiz time."))

			Expect(sess.QuizHistory).To(HaveLen(1))
			Expect(sess.QuizHistory[0].Score).To(Equal(2))

			rows := tracker.Rows()
			Expect(rows[0].QuizAttempts).To(Equal(1))
			Expect(rows[0].AverageScore).To(Equal(2.0))
		})

		It("summarises on end", func() {
			t.StartQuiz(sess)
			_, err := t.Handle(ctx, sess, "no idea", "")
			Expect(err).NotTo(HaveOccurred())
			_, err = t.Handle(ctx, sess, "Enterprise is taking initiative to manage a business", "")
			Expect(err).NotTo(HaveOccurred())

			msg := t.EndQuiz(sess, "Well done.")
			Expect(msg.Content).To(Equal("Quiz summary:\n- Questions answered: 2\n- Average score: 1.0 / 2\nWell done."))
			Expect(sess.QuizActive).To(BeFalse())
			Expect(sess.CurrentQuestion).To(BeNil())
		})

		It("reports when nothing was answered", func() {
			t.StartQuiz(sess)
			msg := t.EndQuiz(sess, "")
			Expect(msg.Content).To(Equal("Quiz ended. No answers recorded yet."))
		})

		It("recovers from a missing question", func() {
			sess.QuizActive = true
			replies, err := t.Handle(ctx, sess, "an answer", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(replies[0].Content).To(Equal("Quiz question missing. Starting a new one."))
			Expect(sess.CurrentQuestion).NotTo(BeNil())
			Expect(sess.QuizHistory).To(BeEmpty())
		})
	})

	Describe("with a language model", func() {
		BeforeEach(func() {
			t = newTutor(model)
			onboard()
		})

		It("returns the model reply and grounds the request", func() {
			library.Add("spec.pdf", "OCR J204 specification with a long body of text")
			sess.Notes.Add("mine.txt", "Profit equals revenue minus costs.")

			replies, err := t.Handle(ctx, sess, "How do I work out profit?", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(replies[0].Content).To(Equal("model says hi"))

			Expect(model.requests).To(HaveLen(1))
			req := model.requests[0]
			Expect(req.MaxTokens).To(Equal(500))
			Expect(req.System).To(ContainSubstring("OCR Business Revision Buddy"))
			Expect(req.System).To(ContainSubstring("Student: A.J. (class 10B1)"))
			Expect(req.System).To(ContainSubstring("- mine.txt: Profit equals revenue minus costs."))
			Expect(req.System).To(ContainSubstring("[OCR Document: spec.pdf]\nOCR J204 specificati"))
			Expect(req.System).NotTo(ContainSubstring("long body"))

			last := req.Messages[len(req.Messages)-1]
			Expect(last.Role).To(Equal(llm.RoleUser))
			Expect(last.Content).To(Equal("How do I work out profit?"))
		})

		It("falls back to the scripted reply when the model fails", func() {
			model.err = errors.New("rate limited")

			replies, err := t.Handle(ctx, sess, "explain motivation", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.HasPrefix(replies[0].Content, "Topic focus:")).To(BeTrue())
		})

		It("gives up on a stalled model after the timeout", func() {
			t = tutor.New(
				quiz.NewPicker(quiz.DefaultBank(), firstQuestion{}),
				tracker,
				library,
				stalledModel{},
				nil,
				tutor.Config{MaxSnippets: rag.DefaultMaxSnippets, ModelTimeout: 20 * time.Millisecond},
			)

			done := make(chan []session.Message, 1)
			go func() {
				defer GinkgoRecover()
				replies, err := t.Handle(ctx, sess, "explain motivation", "")
				Expect(err).NotTo(HaveOccurred())
				done <- replies
			}()

			var replies []session.Message
			Eventually(done, "2s").Should(Receive(&replies))
			Expect(replies).To(HaveLen(1))
			Expect(strings.HasPrefix(replies[0].Content, "Topic focus:")).To(BeTrue())

			sess.Lock()
			Expect(sess.PendingAction).To(BeEmpty())
			sess.Unlock()
		})

		It("does not call the model for quiz answers", func() {
			t.StartQuiz(sess)
			_, err := t.Handle(ctx, sess, "some answer", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(model.requests).To(BeEmpty())
		})
	})
})
