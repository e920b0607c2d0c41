// Package config loads startup configuration for the gh2linear CLI.
//
// Configuration comes from the environment (GITHUB_TOKEN, LINEAR_API_KEY,
// or GH2LINEAR_-prefixed overrides) and an optional gh2linear.yaml file.
// Nothing here terminates the process: a missing credential is returned as
// a typed error and the command entry point decides exit behavior.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Environment variables read for credentials.
const (
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvLinearAPIKey = "LINEAR_API_KEY"
)

// Config holds everything the CLI needs at startup.
type Config struct {
	GitHubToken    string
	LinearAPIKey   string
	GitHubBaseURL  string // optional override, e.g. GitHub Enterprise
	LinearEndpoint string // optional override, for testing
	Concurrency    int    // per-batch pipeline bound
}

// MissingCredentialError reports an absent required credential. Fatal to
// the run; callers surface it and exit nonzero.
type MissingCredentialError struct {
	Name   string // human name, e.g. "GitHub token"
	EnvVar string // where to set it
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s not configured (set %s)", e.Name, e.EnvVar)
}

// Load reads configuration from the environment and, when present, a
// gh2linear.yaml in the working directory or $HOME. Credentials are not
// required at load time; commands demand only what they use via
// RequireGitHub/RequireLinear.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("gh2linear")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Env always wins over the config file; plain names first, then
	// prefixed overrides for environments where the plain names are taken.
	_ = v.BindEnv("github.token", "GH2LINEAR_GITHUB_TOKEN", EnvGitHubToken)
	_ = v.BindEnv("github.base_url", "GH2LINEAR_GITHUB_BASE_URL")
	_ = v.BindEnv("linear.api_key", "GH2LINEAR_LINEAR_API_KEY", EnvLinearAPIKey)
	_ = v.BindEnv("linear.endpoint", "GH2LINEAR_LINEAR_ENDPOINT")
	_ = v.BindEnv("sync.concurrency", "GH2LINEAR_CONCURRENCY")

	v.SetDefault("sync.concurrency", 8)

	return &Config{
		GitHubToken:    v.GetString("github.token"),
		LinearAPIKey:   v.GetString("linear.api_key"),
		GitHubBaseURL:  v.GetString("github.base_url"),
		LinearEndpoint: v.GetString("linear.endpoint"),
		Concurrency:    v.GetInt("sync.concurrency"),
	}, nil
}

// RequireGitHub fails when the GitHub token is absent.
func (c *Config) RequireGitHub() error {
	if c.GitHubToken == "" {
		return &MissingCredentialError{Name: "GitHub token", EnvVar: EnvGitHubToken}
	}
	return nil
}

// RequireLinear fails when the Linear API key is absent.
func (c *Config) RequireLinear() error {
	if c.LinearAPIKey == "" {
		return &MissingCredentialError{Name: "Linear API key", EnvVar: EnvLinearAPIKey}
	}
	return nil
}
