// Package main provides the flowgen API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/flowgen/pkg/auth"
	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/metrics"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/dukex/flowgen/pkg/services"
	"github.com/dukex/flowgen/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

const shutdownTimeout = 10 * time.Second

type APIConfig struct {
	Persistence persistence.Persistence
	Catalog     *catalog.Catalog
	EventBus    eventbus.EventBus
	Verifier    *auth.Verifier
	Limiter     *web.RateLimiter
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	Tracer      trace.Tracer
	SessionTTL  time.Duration
}

type API struct {
	logger   *slog.Logger
	config   APIConfig
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, config APIConfig) *API {
	if config.SessionTTL == 0 {
		config.SessionTTL = services.DefaultGenerationTTL
	}

	return &API{
		logger:   logger,
		config:   config,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	var publisher eventbus.EventPublisher = a.config.EventBus

	generatorOpts := []services.GeneratorOption{
		services.WithMetrics(a.config.Metrics),
		services.WithPublisher(publisher),
	}
	if a.config.Tracer != nil {
		generatorOpts = append(generatorOpts, services.WithTracer(a.config.Tracer))
	}

	sessions := services.NewGenerationStore(a.config.SessionTTL)
	generator := services.NewGenerator(a.logger, a.config.Catalog, generatorOpts...)
	workflows := services.NewWorkflows(a.logger, a.config.Persistence, sessions, publisher, a.config.Metrics)
	templates := services.NewTemplates(a.logger, a.config.Persistence, sessions, publisher, a.config.Metrics)

	handlers := web.NewAPIHandlers(a.logger, generator, a.config.Catalog, sessions, workflows, templates, a.validate)

	app := fiber.New()
	app.Use(recoverer.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))
	app.Use(web.Authenticate(a.logger, a.config.Verifier))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowgen API")
	})

	app.Get("/health", handlers.HealthCheck)

	if a.config.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.config.Registry, promhttp.HandlerOpts{})))
	}

	app.Get("/node-types", handlers.ListNodeTypes)
	app.Get("/node-types/:type", handlers.GetNodeType)
	app.Get("/patterns", handlers.ListPatterns)

	generate := []fiber.Handler{handlers.Generate}
	if a.config.Limiter != nil {
		generate = []fiber.Handler{a.config.Limiter.Handler(), handlers.Generate}
	}

	app.Post("/generate", generate[0], generate[1:]...)
	app.Get("/generations/:id", handlers.GetGeneration)

	app.Post("/validate", handlers.Validate)
	app.Post("/autofix", handlers.Autofix)
	app.Post("/score", handlers.Score)

	w := app.Group("/workflows")
	w.Get("/", handlers.ListWorkflows)
	w.Post("/", handlers.SaveWorkflow)
	w.Get("/:id", handlers.GetWorkflow)

	t := app.Group("/templates")
	t.Get("/", handlers.ListTemplates)
	t.Post("/", handlers.SaveTemplate)

	return app
}

// Start serves the API until ctx is cancelled.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	errCh := make(chan error, 1)

	go func() {
		errCh <- app.Listen(":" + strconv.Itoa(port))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.InfoContext(ctx, "Shutting down API")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		err := app.ShutdownWithContext(shutdownCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	}
}
