// Package api exposes ingestion, export and the template store over HTTP.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/cardkit/internal/config"
	"github.com/a3tai/cardkit/internal/export"
	"github.com/a3tai/cardkit/internal/ingest"
	"github.com/a3tai/cardkit/internal/templates"
)

// Multipart framing on top of the file itself.
const multipartOverhead = 1 << 20

const shutdownTimeout = 10 * time.Second

// Server wires the HTTP routes to the services.
type Server struct {
	config *config.Config
	ingest *ingest.Service
	export *export.Service
	repo   templates.Repository
	app    *fiber.App
}

// NewServer creates the fiber application and registers every route.
func NewServer(cfg *config.Config, ingestSvc *ingest.Service, exportSvc *export.Service, repo templates.Repository) (*Server, error) {
	if ingestSvc == nil || exportSvc == nil {
		return nil, errors.New("ingest and export services are required")
	}
	if repo == nil {
		return nil, errors.New("templates repository is required")
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.ServerName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		BodyLimit:             int(cfg.MaxFileSize) + multipartOverhead,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.IsDebug(),
	}))
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods:  "GET, POST, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "X-Request-ID, Content-Disposition",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     logrus.StandardLogger().Writer(),
	}))

	s := &Server{
		config: cfg,
		ingest: ingestSvc,
		export: exportSvc,
		repo:   repo,
		app:    app,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)

	v1 := s.app.Group("/api/v1")
	v1.Post("/files/analyze", s.handleAnalyze)
	v1.Post("/pdf/export", s.handleExportPDF)
	v1.Post("/idml/export", s.handleExportIDML)

	v1.Get("/templates", s.handleListTemplates)
	v1.Post("/templates", s.handleAddTemplate)
	v1.Get("/templates/search", s.handleFindTemplate)
	v1.Get("/templates/:id", s.handleGetTemplate)
	v1.Delete("/templates/:id", s.handleRemoveTemplate)
	v1.Post("/templates/:id/cards", s.handleIssueCard)

	v1.Get("/cards", s.handleListCards)
	v1.Get("/cards/:id", s.handleGetCard)
	v1.Patch("/cards/:id", s.handleUpdateCard)
	v1.Delete("/cards/:id", s.handleRemoveCard)
	v1.Get("/cards/:id/export.pdf", s.handleCardPDF)
	v1.Get("/cards/:id/export.idml", s.handleCardIDML)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"address":    s.config.Address(),
			"ai_enabled": s.ingest.AIEnabled(),
		}).Info("HTTP API listening")
		errCh <- s.app.Listen(s.config.Address())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logrus.Info("Shutting down HTTP API")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ok",
		"service":    s.config.ServerName,
		"version":    s.config.Version,
		"ai_enabled": s.ingest.AIEnabled(),
	})
}
