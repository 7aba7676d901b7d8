package config

import "time"

func NewTestClient(baseURL string, timeout time.Duration, profile string) *Client {
	return &Client{baseURL: baseURL, timeout: timeout, profile: profile}
}

func NewTestLogger(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewTestCredentials(email, password string) *Credentials {
	return &Credentials{email: email, password: password}
}
