// Package main provides the flowgen command line tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/flowgen/pkg/log"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()

	err := NewApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewApp builds the root command.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:                  "flowgen",
		Usage:                 "Generate, validate and score automation workflows",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewGenerateCommand(),
			NewValidateCommand(),
			NewAutofixCommand(),
			NewScoreCommand(),
			NewCatalogCommand(),
			NewTokenCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, yaml)",
				Value:   formatJSON,
				Sources: cli.EnvVars("FLOWGEN_FORMAT"),
				Validator: func(format string) error {
					if format != formatJSON && format != formatYAML {
						return fmt.Errorf("%w: %s", errUnknownFormat, format)
					}

					return nil
				},
			},
			&cli.StringFlag{
				Name:    "catalog-file",
				Usage:   "Read node types from a JSON or YAML catalog file instead of the built-in table",
				Sources: cli.EnvVars("CATALOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Read node types from persistence (file://, postgres://, sqlite://)",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Validator: func(level string) error {
					_, err := log.ParseLevel(level)

					return err
				},
			},
		},
	}
}
