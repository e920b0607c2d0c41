package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Wazzymandias/github-linear-sync/internal/debug"
	"github.com/Wazzymandias/github-linear-sync/internal/linear"
	"github.com/Wazzymandias/github-linear-sync/internal/mirror"
)

var (
	syncRepos       []string
	syncAuthors     []string
	syncSince       string
	syncProject     string
	syncTeam        string
	syncYes         bool
	syncConcurrency int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror GitHub issues into a Linear project",
	Long: `Mirror GitHub issues from one or more repositories into a Linear project.

Each issue is matched against existing Linear issues by its embedded GitHub
URL or by its derived title. Matched issues are updated in place; unmatched
open issues are created in the team's backlog. Closed issues without a
mirror are skipped. Issues whose GitHub original was deleted are moved to
the done stage with an orphan warning.

The project may be referenced by ID, slug, name, or a fragment of its URL.
The team may be referenced by ID, key, or name.

Examples:
  gh2linear sync --repo acme/widgets --project Mirrors --team ENG
  gh2linear sync --repo acme/widgets --repo acme/gadgets \
      --author octocat --since 2024-01-01 --project mirrors-77aa --team ENG --yes`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd.Context())
	},
}

func init() {
	syncCmd.Flags().StringArrayVar(&syncRepos, "repo", nil, "Repository to sync, owner/name (repeatable)")
	syncCmd.Flags().StringArrayVar(&syncAuthors, "author", nil, "Only sync issues created by this login (repeatable)")
	syncCmd.Flags().StringVar(&syncSince, "since", "", "Only sync issues updated since (RFC 3339, YYYY-MM-DD, or a duration like 72h)")
	syncCmd.Flags().StringVar(&syncProject, "project", "", "Linear project (ID, slug, name, or URL fragment)")
	syncCmd.Flags().StringVar(&syncTeam, "team", "", "Linear team (ID, key, or name)")
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "Skip the confirmation prompt")
	syncCmd.Flags().IntVar(&syncConcurrency, "concurrency", 0, "Max issues syncing at once (default from config)")

	_ = syncCmd.MarkFlagRequired("repo")
	_ = syncCmd.MarkFlagRequired("project")
	_ = syncCmd.MarkFlagRequired("team")
}

func runSync(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gh, err := newGitHubClient(cfg)
	if err != nil {
		return err
	}
	lin, err := newLinearClient(cfg)
	if err != nil {
		return err
	}

	since, err := parseSince(syncSince)
	if err != nil {
		return err
	}

	issues, err := gh.ListIssues(ctx, syncRepos, syncAuthors, since)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		debug.PrintNormal("No issues found to sync.\n")
		return nil
	}

	teamID, err := resolveTeamID(ctx, lin, syncTeam)
	if err != nil {
		return err
	}

	// Pre-flight: don't even attempt closed issues that were never
	// mirrored; the upsert gate would refuse them anyway.
	filtered := mirror.NewPreflight(mirror.NewMatcher(lin)).Filter(ctx, issues)
	preflightSkipped := len(issues) - len(filtered)
	if preflightSkipped > 0 {
		debug.PrintNormal("Skipping %d closed issue(s) with no existing mirror.\n", preflightSkipped)
	}
	if len(filtered) == 0 {
		debug.PrintNormal("Nothing to sync after pre-flight filtering.\n")
		return nil
	}

	if !syncYes && !jsonOutput && !debug.IsQuiet() {
		ok, err := confirmSync(len(filtered), syncProject)
		if err != nil {
			return err
		}
		if !ok {
			debug.PrintNormal("Aborted.\n")
			return nil
		}
	}

	coord := mirror.NewCoordinator(gh, lin)
	concurrency := syncConcurrency
	if concurrency == 0 {
		concurrency = cfg.Concurrency
	}
	coord = coord.WithConcurrency(concurrency)

	result, err := coord.Run(ctx, filtered, syncProject, teamID)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := printSyncJSON(result, preflightSkipped); err != nil {
			return err
		}
	} else {
		printSyncReport(result, preflightSkipped)
	}

	if n := result.HardFailures(); n > 0 {
		return fmt.Errorf("%d issue(s) failed to sync", n)
	}
	return nil
}

// confirmSync asks before writing to Linear.
func confirmSync(count int, project string) (bool, error) {
	var ok bool
	confirm := huh.NewConfirm().
		Title(fmt.Sprintf("Sync %d issue(s) into project %q?", count, project)).
		Affirmative("Sync").
		Negative("Cancel").
		Value(&ok)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return ok, nil
}

// resolveTeamID accepts a team ID, key, or name and returns the team ID.
// An unrecognized value passes through unchanged so raw UUIDs keep working
// without a listTeams round trip matching them.
func resolveTeamID(ctx context.Context, lin *linear.Client, ref string) (string, error) {
	teams, err := lin.ListTeams(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range teams {
		if t.ID == ref || t.Key == ref || strings.EqualFold(t.Name, ref) {
			return t.ID, nil
		}
	}
	return ref, nil
}

// parseSince accepts an RFC 3339 timestamp, a plain date, or a duration
// interpreted as "this long ago".
func parseSince(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		t := time.Now().Add(-d)
		return &t, nil
	}
	return nil, fmt.Errorf("cannot parse --since value %q (want RFC 3339, YYYY-MM-DD, or a duration)", s)
}
