package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukex/flowgen/pkg/auth"
	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/cmd"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/dukex/flowgen/pkg/log"
	"github.com/dukex/flowgen/pkg/metrics"
	"github.com/dukex/flowgen/pkg/otelhelper"
	"github.com/dukex/flowgen/pkg/services"
	"github.com/dukex/flowgen/pkg/web"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPort       = 9091
	serviceName       = "flowgen-api"
	limiterIdleExpiry = 10 * time.Minute
)

func main() {
	_ = godotenv.Load()

	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Generate, validate and store workflows over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file://, postgres://, sqlite://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL holding the node catalog snapshot shared between replicas",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Usage:   "HS256 secret used to verify bearer tokens; unset serves anonymous users only",
				Sources: cli.EnvVars("JWT_SECRET"),
			},
			&cli.DurationFlag{
				Name:    "catalog-ttl",
				Usage:   "How long a node catalog snapshot is served before reloading",
				Value:   catalog.DefaultTTL,
				Sources: cli.EnvVars("CATALOG_TTL"),
			},
			&cli.StringFlag{
				Name:    "catalog-refresh",
				Usage:   "Cron schedule for background catalog reloads",
				Value:   catalog.DefaultRefreshSpec,
				Sources: cli.EnvVars("CATALOG_REFRESH"),
			},
			&cli.BoolFlag{
				Name:    "seed-builtin",
				Usage:   "Seed the built-in node catalog when the store has none",
				Value:   true,
				Sources: cli.EnvVars("SEED_BUILTIN"),
			},
			&cli.IntFlag{
				Name:    "rate-limit",
				Usage:   "Generations per minute allowed per user (0 disables the limit)",
				Value:   60,
				Sources: cli.EnvVars("RATE_LIMIT"),
			},
			&cli.BoolFlag{
				Name:    "otel",
				Usage:   "Export traces over OTLP HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Validator: func(level string) error {
					_, err := log.ParseLevel(level)

					return err
				},
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := command.Run(ctx, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing flowgen API")

	var tracer trace.Tracer

	if command.Bool("otel") {
		t, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		tracer = t
	}

	store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to open persistence: %w", err)
	}

	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(logger, command.String("event-bus"), command.String("kafka-brokers"), serviceName)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	if command.Bool("seed-builtin") {
		err = seedIfEmpty(ctx, services.NewCatalogSeeder(logger, store, eventBus), store)
		if err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := metrics.New(registry)

	var source catalog.Source = catalog.SourceFunc(store.NodeTypes)

	if redisURL := command.String("redis-url"); redisURL != "" {
		client, err := catalog.NewRedisClient(ctx, redisURL)
		if err != nil {
			return err
		}

		defer func() { _ = client.Close() }()

		source = catalog.NewRedisSource(logger, client, source, command.Duration("catalog-ttl"))
	}

	nodeCatalog := catalog.New(logger, source,
		catalog.WithTTL(command.Duration("catalog-ttl")),
		catalog.WithObserver(m),
	)

	err = eventBus.Handle(events.CatalogSeededEvent, services.InvalidateOnSeed(logger, nodeCatalog))
	if err != nil {
		return fmt.Errorf("failed to register catalog handler: %w", err)
	}

	err = eventBus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	refresher, err := catalog.NewRefresher(logger, nodeCatalog, command.String("catalog-refresh"))
	if err != nil {
		return err
	}

	refresher.Start()
	defer refresher.Stop()

	var verifier *auth.Verifier

	if secret := command.String("jwt-secret"); secret != "" {
		verifier, err = auth.NewVerifier(secret)
		if err != nil {
			return err
		}
	} else {
		logger.WarnContext(ctx, "JWT secret not configured, saving workflows is disabled")
	}

	var limiter *web.RateLimiter
	if perMinute := command.Int("rate-limit"); perMinute > 0 {
		limiter = web.NewRateLimiter(float64(perMinute)/60, perMinute, limiterIdleExpiry)
	}

	api := NewAPI(logger, APIConfig{
		Persistence: store,
		Catalog:     nodeCatalog,
		EventBus:    eventBus,
		Verifier:    verifier,
		Limiter:     limiter,
		Registry:    registry,
		Metrics:     m,
		Tracer:      tracer,
	})

	return api.Start(ctx, command.Int("port"))
}
