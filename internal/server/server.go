package server

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/dropforge/gitdrop/internal/config"
	"github.com/dropforge/gitdrop/internal/filter"
	"github.com/dropforge/gitdrop/internal/handlers"
	"github.com/dropforge/gitdrop/internal/logger"
	"github.com/dropforge/gitdrop/internal/metrics"
	"github.com/dropforge/gitdrop/internal/middleware"
	"github.com/dropforge/gitdrop/internal/recovery"
	"github.com/dropforge/gitdrop/internal/services"
)

// Server wires the fiber app, handlers and metrics together
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	metrics *metrics.Metrics
}

// New assembles the application. The publisher is injectable for tests.
func New(cfg *config.Config, publisher services.Publisher, version string) *Server {
	if publisher == nil {
		publisher = services.NewGitHubPublisher(cfg.GitHubAPIURL)
	}

	app := fiber.New(fiber.Config{
		AppName:               "gitdrop " + version,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
	})

	m := metrics.New()

	app.Use(recover.New())
	app.Use(requestLogger())

	auth := middleware.NewAuthMiddleware()
	app.Use(auth.RequireAuth)

	f := filter.New(cfg.AllowedExts, cfg.AllowedNames, cfg.BlockedNames)
	publishHandler := handlers.NewPublishHandler(publisher, f, m, cfg.MaxFiles)
	healthHandler := handlers.NewHealthHandler(version)

	app.Get("/health", healthHandler.Health)
	app.Get("/metrics", metricsHandler(m))
	app.Post("/v1/publish/:owner/:repo", publishHandler.Publish)
	app.Post("/v1/publish/:owner/:repo/check", publishHandler.Check)

	return &Server{app: app, cfg: cfg, metrics: m}
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts listening and blocks until SIGINT/SIGTERM, then shuts down
// gracefully
func (s *Server) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	recovery.SafeGo("shutdown-watcher", func() {
		sig := <-sigCh
		logger.Infof("🛑 Received %s, shutting down", sig)
		if err := s.app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Errorf("❌ Shutdown error: %v", err)
		}
	})

	logger.Infof("🚀 gitdrop listening on %s", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// requestLogger logs one line per request with a correlation id
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Locals("request_id", requestID)
		c.Set("X-Request-Id", requestID)

		err := c.Next()

		logger.Logger.Info().
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}

// metricsHandler adapts the promhttp handler onto fasthttp
func metricsHandler(m *metrics.Metrics) fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(m.Handler())
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
