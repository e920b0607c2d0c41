package mirror

import (
	"context"
	"fmt"

	"github.com/Wazzymandias/github-linear-sync/internal/github"
	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// mirrorSearcher is the slice of the mirror client matching needs.
type mirrorSearcher interface {
	SearchIssues(ctx context.Context, filter linear.IssueFilter) ([]linear.Issue, error)
}

// Matcher finds the existing mirror for a source issue, if any.
//
// Two predicates identify a mirror: its description contains the source
// issue's canonical URL, or its title equals the derived title. Neither is
// a strong identity key, so the URL match is preferred: the URL survives
// source title edits, the derived title does not. The title search runs
// only when the URL search returns nothing.
type Matcher struct {
	mirror mirrorSearcher
}

// NewMatcher creates a matcher backed by the given mirror client.
func NewMatcher(mirror mirrorSearcher) *Matcher {
	return &Matcher{mirror: mirror}
}

// Find returns the existing mirror for the source issue, or nil when none
// exists. A nil result is not an error; it signals "create new". Query
// failures propagate: a failed lookup must fail the issue's sync attempt,
// not silently create a duplicate mirror.
//
// When a query returns several candidates the first is taken. The remote's
// result ordering is not guaranteed stable, so "first" means only "some
// existing match", never a semantically preferred one.
func (m *Matcher) Find(ctx context.Context, issue github.Issue) (*linear.Issue, error) {
	byURL, err := m.mirror.SearchIssues(ctx, linear.IssueFilter{
		DescriptionContains: issue.HTMLURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to match by source URL: %w", err)
	}
	if len(byURL) > 0 {
		return &byURL[0], nil
	}

	title := DerivedTitle(issue.RepoFullName(), issue.Number, issue.Title)
	byTitle, err := m.mirror.SearchIssues(ctx, linear.IssueFilter{
		TitleEquals: title,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to match by derived title: %w", err)
	}
	if len(byTitle) > 0 {
		return &byTitle[0], nil
	}

	return nil, nil
}
