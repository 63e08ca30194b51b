package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"restpki-batch/internal/config"
	"restpki-batch/internal/delivery/http/handler"
	"restpki-batch/internal/domain/entity"
)

type Router struct {
	app                   *fiber.App
	config                *config.Config
	registry              *prometheus.Registry
	batchSignatureHandler *handler.BatchSignatureHandler
	healthHandler         *handler.HealthHandler
	logHandler            *handler.LogHandler
}

func NewRouter(
	cfg *config.Config,
	registry *prometheus.Registry,
	batchSignatureHandler *handler.BatchSignatureHandler,
	healthHandler *handler.HealthHandler,
	logHandler *handler.LogHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: customErrorHandler,

		// Production runs unattended as a service, no startup banner
		DisableStartupMessage: cfg.IsProduction(),
	})

	return &Router{
		app:                   app,
		config:                cfg,
		registry:              registry,
		batchSignatureHandler: batchSignatureHandler,
		healthHandler:         healthHandler,
		logHandler:            logHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	// Prometheus metrics
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	// Signed documents are published as static files
	r.app.Static("/app-data", r.config.Document.OutputDir, fiber.Static{
		Download: true,
	})

	// Batch signature routes called by the signing page
	batch := r.app.Group("/batch-signature")
	{
		batch.Get("", r.batchSignatureHandler.ListDocuments)
		batch.Post("/start", r.batchSignatureHandler.Start)
		batch.Post("/complete", r.batchSignatureHandler.Complete)
	}

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		api.Get("/logs", r.logHandler.GetLogs)
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(entity.NewErrorResponse(errorCodeName(code), err.Error()))
}

func errorCodeName(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "INTERNAL_ERROR"
	}
}
