package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/api"
	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/auth"
	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

type Server struct {
	config *config.AppConfig
	log    *zap.Logger
	app    *fiber.App
}

type Params struct {
	fx.In

	Config         *config.AppConfig
	Logger         *zap.Logger
	AuthHandler    *auth.Handler
	AuthMiddleware *auth.Middleware
}

func NewServer(p Params) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "motokonig-auth",
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(requestLogger(p.Logger))

	app.Get(api.Health, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth.RegisterRoutes(app, p.AuthHandler, p.AuthMiddleware)

	return &Server{
		config: p.Config,
		log:    p.Logger,
		app:    app,
	}
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)
	s.log.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func (s *Server) Stop() {
	s.log.Info("shutting down HTTP server")
	if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
		s.log.Error("shutdown failed", zap.Error(err))
	}
}

// requestLogger emits one structured line per request, carrying the request
// id so warnings from deeper layers can be correlated. Health probes are not
// logged; other public endpoints log at debug to keep login scans out of the
// info stream.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Path()
		if path == api.Health {
			return err
		}

		level := zap.InfoLevel
		if api.PublicEndpoints[path] {
			level = zap.DebugLevel
		}

		reqID, _ := c.Locals("requestid").(string)
		log.Log(level, "request",
			zap.String("request_id", reqID),
			zap.String("method", c.Method()),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}
