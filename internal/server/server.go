// Package server exposes diagram rendering over HTTP.
//
// Routes:
//
//	POST /render   body is a JSON or YAML diagram; responds image/svg+xml
//	GET  /health   reports liveness and the configured solver backend
package server

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"

	"github.com/gogpu/geodraw"
	"github.com/gogpu/geodraw/diagram"
	"github.com/gogpu/geodraw/internal/config"
	"github.com/gogpu/geodraw/internal/rendercache"
	"github.com/gogpu/geodraw/solver"
)

// Response headers set on /render.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderWarnings  = "X-Geodraw-Warnings"
	HeaderCache     = "X-Geodraw-Cache"
)

const localRequestID = "requestID"

// Server is the HTTP front end of diagram.Generate.
type Server struct {
	app     *fiber.App
	cfg     config.Config
	backend string
	opts    []diagram.Option
	cache   *rendercache.Cache
}

// New builds a Server from cfg. The solver backend is created once and
// shared by all requests.
func New(cfg config.Config) (*Server, error) {
	opts, err := cfg.DiagramOptions()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		backend: cfg.Solver.Backend,
		opts:    opts,
		cache:   rendercache.New(cfg.Server.CacheSize),
	}
	s.app = fiber.New(fiber.Config{
		AppName:      "geodraw",
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout(),
		ErrorHandler: errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(requestID)
	s.app.Get("/health", s.health)
	s.app.Post("/render", s.render)
	return s, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	geodraw.Logger().Info("server: listening", "addr", s.cfg.Server.Addr, "backend", s.backend)
	return s.app.Listen(s.cfg.Server.Addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func requestID(c fiber.Ctx) error {
	id := c.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(localRequestID, id)
	c.Set(HeaderRequestID, id)

	start := time.Now()
	err := c.Next()
	if err != nil {
		err = errorHandler(c, err)
	}
	geodraw.Logger().Info("server: request",
		"id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"elapsed", time.Since(start))
	return err
}

func reqID(c fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

func (s *Server) health(c fiber.Ctx) error {
	st := s.cache.Stats()
	return c.JSON(fiber.Map{
		"status":  "ok",
		"backend": s.backend,
		"cache": fiber.Map{
			"entries": st.Len,
			"hits":    st.Hits,
			"misses":  st.Misses,
		},
	})
}

// requestFormat picks the body format from ?format= or the Content-Type
// header, defaulting to JSON.
func requestFormat(c fiber.Ctx) (diagram.Format, error) {
	if f := c.Query("format"); f != "" {
		return diagram.ParseFormat(f)
	}
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if strings.Contains(ct, "yaml") {
		return diagram.FormatYAML, nil
	}
	return diagram.FormatJSON, nil
}

func (s *Server) render(c fiber.Ctx) error {
	format, err := requestFormat(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	key := rendercache.KeyOf(format, c.Body())
	if e, ok := s.cache.Get(key); ok {
		geodraw.Logger().Debug("server: cache hit", "id", reqID(c), "key", key)
		return sendSVG(c, e, "hit")
	}
	in, err := diagram.Decode(bytes.NewReader(c.Body()), format)
	if err != nil {
		return err
	}

	ctx := c.Context()
	if d := s.cfg.SolverTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	res, err := diagram.GenerateResult(ctx, in, s.opts...)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		geodraw.Logger().Debug("server: render warning", "id", reqID(c), "code", w.Code, "owner", w.Owner)
	}
	e := rendercache.Entry{SVG: res.SVG, Warnings: len(res.Warnings)}
	s.cache.Put(key, e)
	return sendSVG(c, e, "miss")
}

func sendSVG(c fiber.Ctx, e rendercache.Entry, cache string) error {
	c.Set(HeaderWarnings, strconv.Itoa(e.Warnings))
	c.Set(HeaderCache, cache)
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(e.SVG)
}

// statusOf maps a render error to an HTTP status.
func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, diagram.ErrSchemaViolation),
		errors.Is(err, solver.ErrReference),
		errors.Is(err, solver.ErrInvalidProblem),
		errors.Is(err, geodraw.ErrInvalidParam):
		return fiber.StatusBadRequest
	case errors.Is(err, solver.ErrUnsatisfiable),
		errors.Is(err, solver.ErrSolverUnknown):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

func errorHandler(c fiber.Ctx, err error) error {
	code := statusOf(err)
	msg := err.Error()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		msg = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		geodraw.Logger().Error("server: render failed", "id", reqID(c), "err", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error":     msg,
		"requestId": reqID(c),
	})
}
