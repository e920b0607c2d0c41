package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvGitHubToken, "ghp_token")
	t.Setenv(EnvLinearAPIKey, "lin_api_key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "ghp_token", cfg.GitHubToken)
	require.Equal(t, "lin_api_key", cfg.LinearAPIKey)
	require.Equal(t, 8, cfg.Concurrency, "default concurrency")
	require.NoError(t, cfg.RequireGitHub())
	require.NoError(t, cfg.RequireLinear())
}

func TestPrefixedEnvOverrides(t *testing.T) {
	t.Setenv(EnvGitHubToken, "plain")
	t.Setenv("GH2LINEAR_GITHUB_TOKEN", "prefixed")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "prefixed", cfg.GitHubToken, "prefixed env var should win")
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv(EnvGitHubToken, "")
	t.Setenv(EnvLinearAPIKey, "")
	t.Setenv("GH2LINEAR_GITHUB_TOKEN", "")
	t.Setenv("GH2LINEAR_LINEAR_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err, "missing credentials are not a load error")

	err = cfg.RequireGitHub()
	require.Error(t, err)
	var missing *MissingCredentialError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, EnvGitHubToken, missing.EnvVar)
	require.Contains(t, err.Error(), "GITHUB_TOKEN")

	err = cfg.RequireLinear()
	require.Error(t, err)
	require.True(t, errors.As(err, &missing))
	require.Equal(t, EnvLinearAPIKey, missing.EnvVar)
}

func TestConcurrencyOverride(t *testing.T) {
	t.Setenv("GH2LINEAR_CONCURRENCY", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Concurrency)
}
