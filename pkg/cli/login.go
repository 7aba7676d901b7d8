package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdLogin() *cli.Command {
	var clientCfg config.Client
	var credsCfg config.Credentials

	flags := append(clientCfg.Flags(), credsCfg.Flags()...)

	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and show the session's token claims",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := clientCfg.Configure()
			if err != nil {
				return err
			}

			if err := credsCfg.SignIn(ctx, client); err != nil {
				return err
			}

			claims, err := client.Session().Claims()
			if err != nil {
				return goerr.Wrap(err, "signed in but token is not inspectable")
			}

			color.Green("Signed in")
			fmt.Printf("  email:   %s\n", claims.Email)
			if !claims.ExpiresAt.IsZero() {
				fmt.Printf("  expires: %s (in %s)\n",
					claims.ExpiresAt.Format(time.RFC3339),
					time.Until(claims.ExpiresAt).Round(time.Second))
			}
			return nil
		},
	}
}
