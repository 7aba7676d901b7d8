package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/apiclient"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Credentials holds the signin credentials. The password is only ever kept
// in memory and never logged.
type Credentials struct {
	email    string
	password string
}

// Flags returns CLI flags for credentials
func (x *Credentials) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Account email address",
			Sources:     cli.EnvVars("OURHOUR_EMAIL"),
			Destination: &x.email,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Account password",
			Sources:     cli.EnvVars("OURHOUR_PASSWORD"),
			Destination: &x.password,
		},
	}
}

// LogAttrs returns log attributes for the credentials (password hidden)
func (x *Credentials) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("email", x.email),
	}
}

// IsConfigured returns true if both email and password are set
func (x *Credentials) IsConfigured() bool {
	return x.email != "" && x.password != ""
}

// SignIn authenticates the client with the configured credentials
func (x *Credentials) SignIn(ctx context.Context, client *apiclient.Client) error {
	if !x.IsConfigured() {
		return goerr.Wrap(ErrMissingCredentials, "set --email and --password")
	}

	_, err := client.Auth.SignIn(ctx, &model.SignInRequest{
		Email:    x.email,
		Password: x.password,
	})
	if err != nil {
		return goerr.Wrap(err, "signin failed", goerr.V("email", x.email))
	}
	return nil
}
