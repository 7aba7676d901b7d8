package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrMissingBaseURL     = goerr.New("base URL is required")
	ErrMissingCredentials = goerr.New("email and password are required")
	ErrInvalidProfile     = goerr.New("invalid profile file")
	ErrInvalidLogLevel    = goerr.New("invalid log level")
	ErrInvalidLogFormat   = goerr.New("invalid log format")
)
