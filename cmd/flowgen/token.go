package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/flowgen/pkg/auth"
	cli "github.com/urfave/cli/v3"
)

func NewTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for the API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Usage:    "User id the token is issued for",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "jwt-secret",
				Usage:    "HS256 secret shared with the API server",
				Required: true,
				Sources:  cli.EnvVars("JWT_SECRET"),
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime",
				Value: 24 * time.Hour,
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			verifier, err := auth.NewVerifier(command.String("jwt-secret"))
			if err != nil {
				return err
			}

			token, err := verifier.Issue(command.String("user"), command.Duration("ttl"))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(command.Root().Writer, token)

			return err
		},
	}
}
