// Package server exposes the operational HTTP surface for serve mode:
// liveness and readiness probes plus Prometheus metrics.
package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coupontracker/internal/db"
)

// Server wraps the Fiber app.
type Server struct {
	App *fiber.App
	db  *db.DB
}

// New creates the ops server with middleware and routes configured.
func New(database *db.DB) *Server {
	app := fiber.New()

	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{App: app, db: database}

	// Liveness: the process is up.
	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Readiness: the database is reachable.
	app.Get("/readyz", func(c fiber.Ctx) error {
		if err := s.db.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "error",
				"error":  "database unavailable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return s
}

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
