package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/apiclient"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Client holds configuration for the API client
type Client struct {
	baseURL string
	timeout time.Duration
	profile string
}

// Profile is the optional TOML profile file. Flag and environment values
// take precedence over the file.
type Profile struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// Validate checks if the profile is usable
func (p *Profile) Validate() error {
	if p.Timeout != "" {
		if _, err := time.ParseDuration(p.Timeout); err != nil {
			return goerr.Wrap(ErrInvalidProfile, "bad timeout value",
				goerr.V("timeout", p.Timeout))
		}
	}
	return nil
}

// Flags returns CLI flags for the API client configuration
func (x *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "OurHour API base URL (e.g. https://api.our-hour.com)",
			Sources:     cli.EnvVars("OURHOUR_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Per-request timeout (default 10s)",
			Sources:     cli.EnvVars("OURHOUR_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to a TOML profile file",
			Sources:     cli.EnvVars("OURHOUR_PROFILE"),
			Destination: &x.profile,
		},
	}
}

// LogAttrs returns log attributes for the client configuration
func (x *Client) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("base_url", x.baseURL),
		slog.Duration("timeout", x.timeout),
		slog.String("profile", x.profile),
	}
}

// Configure creates the API client from the flags, merged with the profile
// file when one is given.
func (x *Client) Configure(opts ...apiclient.Option) (*apiclient.Client, error) {
	baseURL := x.baseURL
	timeout := x.timeout

	if x.profile != "" {
		profile, err := LoadProfile(x.profile)
		if err != nil {
			return nil, err
		}
		if baseURL == "" {
			baseURL = profile.BaseURL
		}
		if profile.Timeout != "" && timeout == 0 {
			d, _ := time.ParseDuration(profile.Timeout)
			timeout = d
		}
	}

	if baseURL == "" {
		return nil, goerr.Wrap(ErrMissingBaseURL, "set --base-url or a profile")
	}

	clientOpts := append([]apiclient.Option{}, opts...)
	if timeout > 0 {
		clientOpts = append(clientOpts, apiclient.WithTimeout(timeout))
	}

	client, err := apiclient.New(baseURL, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create API client")
	}
	return client, nil
}

// LoadProfile loads and validates a TOML profile file
func LoadProfile(path string) (*Profile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile file", goerr.V("path", path))
	}

	var profile Profile
	if err := toml.Unmarshal(data, &profile); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML profile", goerr.V("path", path))
	}

	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(err, "profile validation failed", goerr.V("path", path))
	}

	return &profile, nil
}
