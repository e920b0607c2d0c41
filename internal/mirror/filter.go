package mirror

import (
	"context"

	"github.com/Wazzymandias/github-linear-sync/internal/debug"
	"github.com/Wazzymandias/github-linear-sync/internal/github"
)

// Preflight drops source issues that are doomed to the policy skip (closed
// upstream with no existing mirror) before the batch runs, so the report
// isn't padded with expected skips.
//
// This is an optimization, not the safety net: the Upserter's gate makes
// the same check at write time and holds even if the filter's lookups go
// stale between filtering and writing.
type Preflight struct {
	matcher *Matcher
}

// NewPreflight creates a filter backed by the given matcher.
func NewPreflight(matcher *Matcher) *Preflight {
	return &Preflight{matcher: matcher}
}

// Filter returns the issues worth attempting. Open issues always pass.
// A closed issue passes only when a mirror already exists for it. When the
// mirror lookup fails the issue is kept: the per-issue pipeline will
// surface the error as a failure instead of the filter hiding it.
func (p *Preflight) Filter(ctx context.Context, issues []github.Issue) []github.Issue {
	kept := make([]github.Issue, 0, len(issues))
	for _, issue := range issues {
		if !issue.IsClosed() {
			kept = append(kept, issue)
			continue
		}

		existing, err := p.matcher.Find(ctx, issue)
		if err != nil {
			debug.Logf("preflight: lookup failed for %s#%d, keeping: %v\n", issue.RepoFullName(), issue.Number, err)
			kept = append(kept, issue)
			continue
		}
		if existing == nil {
			debug.Logf("preflight: dropping closed unmirrored issue %s#%d\n", issue.RepoFullName(), issue.Number)
			continue
		}
		kept = append(kept, issue)
	}
	return kept
}
