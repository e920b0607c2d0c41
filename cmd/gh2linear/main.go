// Command gh2linear mirrors GitHub issues into Linear.
//
// The sync is one-directional: GitHub is the source of record, Linear
// receives created or updated mirror issues. See the sync command for the
// main workflow; the list commands exist to discover repositories, teams,
// and projects to sync between.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Wazzymandias/github-linear-sync/internal/config"
	"github.com/Wazzymandias/github-linear-sync/internal/debug"
	"github.com/Wazzymandias/github-linear-sync/internal/github"
	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:     "gh2linear",
	Short:   "Mirror GitHub issues into Linear",
	Version: Version,
	Long: `gh2linear mirrors GitHub issues into a Linear project.

For each GitHub issue it finds the Linear issue mirroring it (by embedded
source URL or derived title), computes the state the mirror should be in,
and creates or updates it. Closed GitHub issues that were never mirrored
are skipped rather than created. Re-running a sync is safe: it converges
instead of duplicating.

Credentials come from the environment:
  GITHUB_TOKEN     GitHub personal access token
  LINEAR_API_KEY   Linear API key`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(whoamiCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads startup configuration; callers demand the credentials
// they need via the Require helpers.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newGitHubClient builds the source tracker client from config.
func newGitHubClient(cfg *config.Config) (*github.Client, error) {
	if err := cfg.RequireGitHub(); err != nil {
		return nil, err
	}
	client := github.NewClient(cfg.GitHubToken)
	if cfg.GitHubBaseURL != "" {
		client = client.WithBaseURL(cfg.GitHubBaseURL)
	}
	return client, nil
}

// newLinearClient builds the mirror system client from config.
func newLinearClient(cfg *config.Config) (*linear.Client, error) {
	if err := cfg.RequireLinear(); err != nil {
		return nil, err
	}
	client := linear.NewClient(cfg.LinearAPIKey)
	if cfg.LinearEndpoint != "" {
		client = client.WithEndpoint(cfg.LinearEndpoint)
	}
	return client, nil
}
