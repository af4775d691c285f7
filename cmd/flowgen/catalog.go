package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/cmd"
	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/log"
	"github.com/dukex/flowgen/pkg/services"
	cli "github.com/urfave/cli/v3"
)

// openCatalog picks the node type source from the global flags: a catalog
// file, the persistence store, or the built-in table.
func openCatalog(ctx context.Context, logger *slog.Logger, command *cli.Command) (*catalog.Catalog, func(), error) {
	closer := func() {}

	var source catalog.Source

	switch {
	case command.String("catalog-file") != "":
		source = catalog.NewFileSource(command.String("catalog-file"))
	case command.String("database-url") != "":
		store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
		if err != nil {
			return nil, closer, err
		}

		closer = func() {
			if err := store.Close(context.WithoutCancel(ctx)); err != nil {
				logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
			}
		}
		source = catalog.SourceFunc(store.NodeTypes)
	default:
		source = catalog.StaticSource(catalog.Builtin())
	}

	return catalog.New(logger, source), closer, nil
}

func setupLogger(command *cli.Command, action string) *slog.Logger {
	log.Setup(command.String("log-level"))

	return log.WithModule("flowgen").With("action", action)
}

func NewCatalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Inspect and seed the node catalog",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the node types of the active catalog",
				Action: func(ctx context.Context, command *cli.Command) error {
					logger := setupLogger(command, "catalog-list")

					nodeCatalog, closer, err := openCatalog(ctx, logger, command)
					if err != nil {
						return err
					}
					defer closer()

					defs := nodeCatalog.List(ctx)
					if nodeCatalog.Degraded() {
						logger.WarnContext(ctx, "Catalog unavailable, listing fallback node types")
					}

					return writeOutput(command.Root().Writer, command.String("format"), defs)
				},
			},
			{
				Name:  "seed",
				Usage: "Replace the stored node catalog with the contents of a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "JSON or YAML catalog file; the built-in table when omitted",
					},
					&cli.StringFlag{
						Name:    "redis-url",
						Usage:   "Purge the shared catalog snapshot in this redis",
						Sources: cli.EnvVars("REDIS_URL"),
					},
					&cli.StringFlag{
						Name:    "event-bus",
						Usage:   "Notify running API servers over this event bus (kafka)",
						Sources: cli.EnvVars("EVENT_BUS_TYPE"),
					},
					&cli.StringFlag{
						Name:    "kafka-brokers",
						Usage:   "Comma separated Kafka brokers",
						Sources: cli.EnvVars("KAFKA_BROKERS"),
					},
				},
				Action: seedCatalog,
			},
		},
	}
}

func seedCatalog(ctx context.Context, command *cli.Command) error {
	logger := setupLogger(command, "catalog-seed")

	databaseURL := command.String("database-url")
	if databaseURL == "" {
		return cli.Exit("--database-url is required to seed the catalog", 1)
	}

	defs := catalog.Builtin()

	if path := command.String("file"); path != "" {
		var err error

		defs, err = catalog.NewFileSource(path).ListNodeTypes(ctx)
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "Loaded catalog file", "path", filepath.Base(path), "node_types", len(defs))
	}

	store, err := cmd.NewPersistence(ctx, logger, databaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	var publisher eventbus.EventPublisher

	if provider := command.String("event-bus"); provider != "" {
		bus, err := cmd.NewEventBus(logger, provider, command.String("kafka-brokers"), "flowgen-cli")
		if err != nil {
			return err
		}

		defer func() {
			if err := bus.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
			}
		}()

		publisher = bus
	}

	err = services.NewCatalogSeeder(logger, store, publisher).Seed(ctx, defs)
	if err != nil {
		return err
	}

	if redisURL := command.String("redis-url"); redisURL != "" {
		client, err := catalog.NewRedisClient(ctx, redisURL)
		if err != nil {
			return err
		}

		defer func() { _ = client.Close() }()

		err = catalog.NewRedisSource(logger, client, nil, 0).Purge(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge catalog snapshot: %w", err)
		}
	}

	_, err = fmt.Fprintf(command.Root().Writer, "Seeded %d node types\n", len(defs))

	return err
}
