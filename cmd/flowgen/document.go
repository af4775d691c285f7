package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/services"
	cli "github.com/urfave/cli/v3"
)

// documentCommand loads the workflow named by the first argument and hands it
// to run together with a generator over the active catalog.
func documentCommand(name, usage string, run func(ctx context.Context, command *cli.Command, g *services.Generator, doc *models.WorkflowDocument) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<workflow.json|workflow.yaml|->",
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return cli.Exit(fmt.Sprintf("%s expects exactly one workflow file", name), 1)
			}

			logger := setupLogger(command, name)

			doc, err := readDocument(command.Args().First(), os.Stdin)
			if err != nil {
				return err
			}

			nodeCatalog, closer, err := openCatalog(ctx, logger, command)
			if err != nil {
				return err
			}
			defer closer()

			return run(ctx, command, services.NewGenerator(logger, nodeCatalog), doc)
		},
	}
}

func NewValidateCommand() *cli.Command {
	return documentCommand("validate", "Validate a workflow document against the node catalog",
		func(ctx context.Context, command *cli.Command, g *services.Generator, doc *models.WorkflowDocument) error {
			result := g.Validate(ctx, doc)

			err := writeOutput(command.Root().Writer, command.String("format"), result)
			if err != nil {
				return err
			}

			if !result.IsValid {
				return cli.Exit(fmt.Sprintf("workflow has %d errors", result.Count(models.IssueTypeError)), 2)
			}

			return nil
		})
}

func NewAutofixCommand() *cli.Command {
	return documentCommand("autofix", "Migrate deprecated nodes to their replacements",
		func(ctx context.Context, command *cli.Command, g *services.Generator, doc *models.WorkflowDocument) error {
			result, err := g.Autofix(ctx, doc)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			return writeOutput(command.Root().Writer, command.String("format"), result)
		})
}

func NewScoreCommand() *cli.Command {
	return documentCommand("score", "Score a workflow on performance, security and maintainability",
		func(_ context.Context, command *cli.Command, g *services.Generator, doc *models.WorkflowDocument) error {
			return writeOutput(command.Root().Writer, command.String("format"), g.Score(doc))
		})
}
