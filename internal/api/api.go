package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/zephyraoss/offline-finder/internal/metrics"
	"github.com/zephyraoss/offline-finder/internal/search"
	"github.com/zephyraoss/offline-finder/internal/store"
)

type Searcher interface {
	Search(ctx context.Context, req search.Request) (store.Result, error)
}

type StatusSource interface {
	Status() store.ProviderStatus
}

type Options struct {
	// MaxPageSize caps pageSize at the edge. Zero leaves it unbounded.
	MaxPageSize int64
	Metrics     metrics.Recorder
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

type Server struct {
	searcher Searcher
	status   StatusSource
	logger   *slog.Logger
	opts     Options
	metrics  metrics.Recorder
}

func New(searcher Searcher, status StatusSource, logger *slog.Logger, opts Options) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{searcher: searcher, status: status, logger: logger, opts: opts, metrics: metrics.OrNoop(opts.Metrics)}
	app := fiber.New(fiber.Config{AppName: "offlinefinder", DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(s.countRequests)

	v1 := app.Group("/api/v1")
	v1.Get("/health", s.health)
	v1.Get("/status", s.statusHandler)
	v1.Get("/search", s.searchQuery)
	v1.Post("/search", s.searchBody)

	if opts.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.MetricsHandler))
	}
	return app
}

func (s *Server) countRequests(c *fiber.Ctx) error {
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.metrics.IncRequestTotal(c.Route().Path, status)
	return err
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) statusHandler(c *fiber.Ctx) error {
	st := s.status.Status()
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"open":      st.Open,
			"path":      st.Path,
			"opened_at": formatTime(st.OpenedAt),
			"poisoned":  st.Poisoned,
		},
	})
}

func (s *Server) searchQuery(c *fiber.Ctx) error {
	req := search.Request{
		Query:     c.Query("q"),
		FTS:       c.Query("fts"),
		IsPhone:   c.QueryBool("isPhone", false),
		Sex:       c.Query("sesso"),
		Residence: c.Query("residente"),
		Page:      int64(c.QueryInt("page", 1)),
		PageSize:  int64(c.QueryInt("pageSize", 50)),
	}
	if c.QueryBool("auto", false) {
		req = req.Prepare()
	}
	return s.run(c, req)
}

type searchPayload struct {
	search.Request
	Auto bool `json:"auto"`
}

func (s *Server) searchBody(c *fiber.Ctx) error {
	var body searchPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	req := body.Request
	if body.Auto {
		req = req.Prepare()
	}
	return s.run(c, req)
}

func (s *Server) run(c *fiber.Ctx, req search.Request) error {
	if s.opts.MaxPageSize > 0 && req.PageSize > s.opts.MaxPageSize {
		req.PageSize = s.opts.MaxPageSize
	}
	res, err := s.searcher.Search(c.UserContext(), req)
	if err != nil {
		return s.writeSearchError(c, err)
	}
	return c.JSON(res)
}

// writeSearchError returns the diagnostic verbatim; the UI shows it as is.
func (s *Server) writeSearchError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, store.ErrDatabaseNotFound) {
		status = fiber.StatusServiceUnavailable
	}
	s.logger.Error("search request failed", "method", c.Method(), "status", status, "error", err)
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
