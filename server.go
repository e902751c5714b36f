package main

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"revision-buddy/config"
	"revision-buddy/llm"
	"revision-buddy/quiz"
	"revision-buddy/rag"
	"revision-buddy/session"
	"revision-buddy/tracking"
	"revision-buddy/tutor"
)

const (
	sessionHeader  = "X-Session-ID"
	passcodeHeader = "X-Teacher-Passcode"

	// Max 10MB per upload
	maxUploadBytes = 10 << 20
)

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	cfg      *config.Config
	sessions *session.Store
	tracker  *tracking.Tracker
	library  *rag.NoteCollection
	tutor    *tutor.Tutor
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer wires the revision buddy. A nil model keeps every reply scripted.
func NewServer(cfg *config.Config, model llm.Client, logger *zap.Logger) *Server {
	tracker := tracking.NewTracker()
	library := rag.NewNoteCollection()

	s := &Server{
		cfg:      cfg,
		sessions: session.NewStore(cfg.SessionTTL),
		tracker:  tracker,
		library:  library,
		tutor: tutor.New(
			quiz.NewPicker(quiz.DefaultBank(), nil),
			tracker,
			library,
			model,
			logger,
			tutor.Config{
				MaxSnippets:       cfg.MaxSnippets,
				MaxTokens:         cfg.LLM.MaxTokens,
				Temperature:       cfg.LLM.Temperature,
				DocumentCharLimit: cfg.LLM.DocumentCharLimit,
				ModelTimeout:      cfg.LLM.Timeout,
			},
		),
		logger: logger,
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// notes are stored under names taken from the request
		Immutable:    true,
		BodyLimit:    maxUploadBytes,
		ErrorHandler: s.errorHandler,
	})
	s.app.Use(recover.New())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.healthHandler)
	s.app.Get("/topics", s.topicsHandler)
	s.app.Post("/upload", s.uploadHandler)
	s.app.Post("/upload-file", s.uploadFileHandler)
	s.app.Post("/query", s.queryHandler)
	s.app.Post("/score", s.scoreHandler)

	s.app.Post("/sessions", s.createSessionHandler)
	s.app.Get("/sessions/:id", s.getSessionHandler)
	s.app.Delete("/sessions/:id", s.deleteSessionHandler)
	s.app.Delete("/sessions/:id/notes", s.clearNotesHandler)
	s.app.Post("/sessions/:id/reset", s.resetSessionHandler)
	s.app.Post("/sessions/:id/messages", s.messageHandler)
	s.app.Put("/sessions/:id/topic", s.topicHandler)
	s.app.Post("/sessions/:id/quiz/start", s.startQuizHandler)
	s.app.Post("/sessions/:id/quiz/end", s.endQuizHandler)

	admin := s.app.Group("/admin", s.requirePasscode)
	admin.Get("/tracking", s.trackingHandler)
	admin.Get("/tracking.csv", s.trackingCSVHandler)
	admin.Delete("/tracking", s.resetTrackingHandler)
	admin.Get("/documents", s.listDocumentsHandler)
	admin.Post("/documents", s.uploadDocumentsHandler)
	admin.Delete("/documents", s.clearDocumentsHandler)
}

// Run starts the HTTP server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting revision buddy",
		zap.String("listen", s.cfg.Listen),
	)
	return s.app.Listen(s.cfg.Listen)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler renders every handler error as {"error": "..."}.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		s.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(code).JSON(errorResponse{Error: msg})
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}

// lookupSession resolves the session named by the :id route parameter or,
// for the upload routes, the X-Session-ID header.
func (s *Server) lookupSession(c *fiber.Ctx) (*session.Session, error) {
	id := c.Params("id")
	if id == "" {
		id = c.Get(sessionHeader)
	}
	return s.findSession(id)
}

func (s *Server) findSession(id string) (*session.Session, error) {
	if id == "" {
		return nil, badRequest("session id required")
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return sess, nil
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	return c.SendString("ok")
}

func (s *Server) topicsHandler(c *fiber.Ctx) error {
	return c.JSON(map[string]any{
		"topics":  quiz.Topics,
		"default": quiz.DefaultTopic,
	})
}

// POST /upload  (body: raw text, ?name=<document name>)
func (s *Server) uploadHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	text := string(c.Body())
	if strings.TrimSpace(text) == "" {
		return badRequest("empty body")
	}
	name := c.Query("name", "notes.txt")
	sess.Notes.Add(name, text)

	return c.JSON(map[string]any{
		"filename":   name,
		"characters": len([]rune(text)),
		"documents":  sess.Notes.Len(),
	})
}

// POST /upload-file  (multipart field "file": pdf, txt or docx)
func (s *Server) uploadFileHandler(c *fiber.Ctx) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return badRequest("missing file field")
	}
	name, text, err := s.extractUpload(header)
	if err != nil {
		return s.uploadError(header.Filename, err)
	}
	sess.Notes.Add(name, text)

	return c.JSON(map[string]any{
		"filename":   name,
		"characters": len([]rune(text)),
		"documents":  sess.Notes.Len(),
	})
}

var errNoText = errors.New("no text extracted from file")

func (s *Server) extractUpload(header *multipart.FileHeader) (string, string, error) {
	f, err := header.Open()
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", err
	}

	text, err := rag.Extract(header.Filename, data)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", "", errNoText
	}
	return header.Filename, text, nil
}

func (s *Server) uploadError(filename string, err error) error {
	switch {
	case errors.Is(err, rag.ErrUnsupportedFormat):
		return fiber.NewError(fiber.StatusUnsupportedMediaType, "only pdf, txt and docx files are supported")
	case errors.Is(err, errNoText):
		return badRequest(err.Error())
	default:
		s.logger.Warn("failed to extract upload",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return fiber.NewError(fiber.StatusUnprocessableEntity, "failed to read file")
	}
}

type queryRequest struct {
	SessionID   string `json:"session_id"`
	Query       string `json:"query"`
	MaxSnippets *int   `json:"max_snippets,omitempty"`
}

// POST /query  { "session_id": "...", "query": "your question" }
func (s *Server) queryHandler(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid json")
	}
	if req.Query == "" {
		return badRequest("query is required")
	}
	sess, err := s.findSession(req.SessionID)
	if err != nil {
		return err
	}

	limit := s.cfg.MaxSnippets
	if req.MaxSnippets != nil {
		limit = *req.MaxSnippets
	}

	results := rag.SearchAll(sess.Notes, req.Query, limit)
	if results == nil {
		results = []rag.Snippet{}
	}
	return c.JSON(results)
}

type scoreRequest struct {
	Reference string `json:"reference"`
	Answer    string `json:"answer"`
}

// POST /score  { "reference": "...", "answer": "..." }
func (s *Server) scoreHandler(c *fiber.Ctx) error {
	var req scoreRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid json")
	}
	return c.JSON(quiz.ScoreAnswer(req.Reference, req.Answer))
}
