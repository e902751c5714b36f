package main

import (
	"bytes"
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// requirePasscode guards the teacher dashboard. With no passcode configured
// the dashboard is switched off.
func (s *Server) requirePasscode(c *fiber.Ctx) error {
	want := s.cfg.TeacherPasscode
	if want == "" {
		return fiber.NewError(fiber.StatusForbidden, "teacher dashboard is disabled")
	}
	got := c.Get(passcodeHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return fiber.NewError(fiber.StatusUnauthorized, "Passcode not recognised.")
	}
	return c.Next()
}

// GET /admin/tracking
func (s *Server) trackingHandler(c *fiber.Ctx) error {
	return c.JSON(map[string]any{
		"students": s.tracker.Rows(),
		"sessions": s.sessions.Count(),
	})
}

// GET /admin/tracking.csv
func (s *Server) trackingCSVHandler(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.tracker.WriteCSV(&buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment("tracking.csv")
	return c.Send(buf.Bytes())
}

// DELETE /admin/tracking
func (s *Server) resetTrackingHandler(c *fiber.Ctx) error {
	s.tracker.Reset()
	s.logger.Info("tracking cleared")
	return c.SendStatus(fiber.StatusNoContent)
}

type documentInfo struct {
	Name       string `json:"name"`
	Characters int    `json:"characters"`
}

// GET /admin/documents
func (s *Server) listDocumentsHandler(c *fiber.Ctx) error {
	names := s.library.Names()
	docs := make([]documentInfo, 0, len(names))
	for _, name := range names {
		text, _ := s.library.Get(name)
		docs = append(docs, documentInfo{Name: name, Characters: len([]rune(text))})
	}
	return c.JSON(map[string]any{
		"documents": docs,
	})
}

// POST /admin/documents  (multipart, one or more "file" fields)
func (s *Server) uploadDocumentsHandler(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest("failed to parse form")
	}
	files := form.File["file"]
	if len(files) == 0 {
		return badRequest("missing file field")
	}

	added := make([]string, 0, len(files))
	for _, header := range files {
		name, text, err := s.extractUpload(header)
		if err != nil {
			return s.uploadError(header.Filename, err)
		}
		s.library.Add(name, text)
		added = append(added, name)
	}

	s.logger.Info("teacher documents added", zap.Strings("documents", added))
	return c.JSON(map[string]any{
		"added":     added,
		"documents": s.library.Len(),
	})
}

// DELETE /admin/documents
func (s *Server) clearDocumentsHandler(c *fiber.Ctx) error {
	s.library.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}
