package main

import (
	"context"
	"strings"

	"github.com/dukex/flowgen/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func NewGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     "Generate a workflow from a description",
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "Build the node sequence of a named workflow pattern",
			},
			&cli.BoolFlag{
				Name:  "export",
				Usage: "Print only the importable workflow document",
			},
			&cli.BoolFlag{
				Name:  "list-patterns",
				Usage: "List the available workflow patterns and exit",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setupLogger(command, "generate")

			nodeCatalog, closer, err := openCatalog(ctx, logger, command)
			if err != nil {
				return err
			}
			defer closer()

			generator := services.NewGenerator(logger, nodeCatalog)
			out := command.Root().Writer
			format := command.String("format")

			if command.Bool("list-patterns") {
				return writeOutput(out, format, generator.ListPatterns())
			}

			description := strings.Join(command.Args().Slice(), " ")

			var generation *services.Generation

			if pattern := command.String("pattern"); pattern != "" {
				generation, err = generator.GenerateFromPattern(ctx, pattern, description)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
			} else {
				generation = generator.Generate(ctx, description)
			}

			if command.Bool("export") {
				return writeOutput(out, format, generation.Document)
			}

			return writeOutput(out, format, generation)
		},
	}
}
