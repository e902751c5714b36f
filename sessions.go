package main

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"revision-buddy/quiz"
	"revision-buddy/session"
	"revision-buddy/tutor"
)

type messageRequest struct {
	Content string `json:"content"`
	Action  string `json:"action"`
}

type topicRequest struct {
	Topic string `json:"topic"`
}

type endQuizRequest struct {
	Note string `json:"note"`
}

// POST /sessions
func (s *Server) createSessionHandler(c *fiber.Ctx) error {
	sess := s.sessions.Create()
	welcome := s.tutor.Welcome(sess)

	s.logger.Debug("session created", zap.String("session", sess.ID))

	sess.Lock()
	view := sess.View()
	sess.Unlock()

	return c.Status(fiber.StatusCreated).JSON(map[string]any{
		"session":  view,
		"messages": []session.Message{welcome},
	})
}

// GET /sessions/:id
func (s *Server) getSessionHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	return c.JSON(sess.View())
}

// DELETE /sessions/:id
func (s *Server) deleteSessionHandler(c *fiber.Ctx) error {
	if _, err := s.lookupSession(c); err != nil {
		return err
	}
	s.sessions.Delete(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /sessions/:id/reset clears the conversation but keeps uploaded notes.
func (s *Server) resetSessionHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	sess.Lock()
	sess.Reset()
	sess.Unlock()

	welcome := s.tutor.Welcome(sess)
	return c.JSON(map[string]any{
		"messages": []session.Message{welcome},
	})
}

// DELETE /sessions/:id/notes
func (s *Server) clearNotesHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	sess.Notes.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /sessions/:id/messages  { "content": "...", "action": "quiz" }
func (s *Server) messageHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid json")
	}

	replies, err := s.tutor.Handle(c.UserContext(), sess, req.Content, req.Action)
	switch {
	case errors.Is(err, tutor.ErrUnknownAction):
		return badRequest("unknown action: " + req.Action)
	case errors.Is(err, tutor.ErrEmptyPrompt):
		return badRequest("content is required")
	case err != nil:
		return err
	}

	return c.JSON(map[string]any{
		"replies": replies,
	})
}

// PUT /sessions/:id/topic  { "topic": "Unit 2 - Marketing" }
func (s *Server) topicHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	var req topicRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid json")
	}
	if err := s.tutor.SelectTopic(sess, req.Topic); err != nil {
		if errors.Is(err, quiz.ErrUnknownTopic) {
			return badRequest("unknown topic: " + req.Topic)
		}
		return err
	}
	return c.JSON(map[string]any{
		"topic": req.Topic,
	})
}

// POST /sessions/:id/quiz/start
func (s *Server) startQuizHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	msg := s.tutor.StartQuiz(sess)
	return c.JSON(map[string]any{
		"replies": []session.Message{msg},
	})
}

// POST /sessions/:id/quiz/end  { "note": "optional closing line" }
func (s *Server) endQuizHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	var req endQuizRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest("invalid json")
		}
	}

	msg := s.tutor.EndQuiz(sess, req.Note)
	return c.JSON(map[string]any{
		"replies": []session.Message{msg},
	})
}
