// Package mirror implements the reconciliation engine that keeps Linear
// mirror issues in step with their GitHub source issues.
//
// For each source issue the engine finds the existing mirror (if any),
// derives the state that mirror should be in, and applies exactly one
// create-or-update. Issues sync concurrently and independently: one
// issue's failure never cancels or delays its siblings, and every issue
// produces exactly one outcome. The engine holds no state between runs;
// matches and targets are re-derived from live reads every time, so
// re-running a sync converges.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Wazzymandias/github-linear-sync/internal/debug"
	"github.com/Wazzymandias/github-linear-sync/internal/github"
	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// DefaultConcurrency bounds how many per-issue pipelines run at once.
const DefaultConcurrency = 8

// SourceReader is what the engine needs from the source tracker.
type SourceReader interface {
	IssueStillExists(ctx context.Context, url string) (bool, error)
}

// MirrorClient is what the engine needs from the mirror system.
type MirrorClient interface {
	ListProjects(ctx context.Context) ([]linear.Project, error)
	TeamWorkflowStates(ctx context.Context, teamID string) ([]linear.WorkflowState, error)
	SearchIssues(ctx context.Context, filter linear.IssueFilter) ([]linear.Issue, error)
	CreateIssue(ctx context.Context, input linear.IssueCreateInput) (*linear.Issue, error)
	UpdateIssue(ctx context.Context, id string, input linear.IssueUpdateInput) (*linear.Issue, error)
}

// Failure is one issue's sync attempt that did not produce a mirror write.
type Failure struct {
	Issue  github.Issue
	Reason string // human-readable; shown to operators
	Err    error  // underlying cause, kept for diagnostics
}

// Skipped reports whether this failure is the expected policy skip rather
// than a hard error.
func (f Failure) Skipped() bool {
	return errors.Is(f.Err, ErrClosedUnmirrored)
}

// Result partitions a batch's outcomes. Order within each slice follows
// completion order, not input order.
type Result struct {
	Succeeded []linear.Issue
	Failed    []Failure
}

// HardFailures counts failures that are not policy skips.
func (r *Result) HardFailures() int {
	n := 0
	for _, f := range r.Failed {
		if !f.Skipped() {
			n++
		}
	}
	return n
}

// Coordinator fans a batch of source issues out to concurrent per-issue
// sync pipelines and gathers their outcomes.
type Coordinator struct {
	source      SourceReader
	mirror      MirrorClient
	concurrency int64
	now         func() time.Time
}

// NewCoordinator creates a coordinator over the two remote systems.
func NewCoordinator(source SourceReader, mirror MirrorClient) *Coordinator {
	return &Coordinator{
		source:      source,
		mirror:      mirror,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
}

// WithConcurrency returns a coordinator bounded to n in-flight pipelines.
// Values below 1 fall back to the default.
func (c *Coordinator) WithConcurrency(n int) *Coordinator {
	limit := int64(n)
	if limit < 1 {
		limit = DefaultConcurrency
	}
	return &Coordinator{
		source:      c.source,
		mirror:      c.mirror,
		concurrency: limit,
		now:         c.now,
	}
}

// Run syncs every issue and returns the partitioned outcomes.
//
// The batch preconditions (resolving the project reference and the team's
// workflow stages) run first; their failure is a configuration error that
// aborts the run before any per-issue work starts. After that, every issue
// settles to exactly one outcome: pipelines run concurrently, errors are
// caught at the pipeline boundary, and no failure cancels sibling work.
func (c *Coordinator) Run(ctx context.Context, issues []github.Issue, projectRef, teamID string) (*Result, error) {
	projects, err := c.mirror.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	project, err := ResolveProject(projects, projectRef)
	if err != nil {
		return nil, err
	}
	stages, err := ResolveStages(ctx, c.mirror, teamID)
	if err != nil {
		return nil, err
	}

	debug.Logf("batch: syncing %d issues into project %s (team %s)\n", len(issues), project.Name, teamID)

	result := &Result{}
	sem := semaphore.NewWeighted(c.concurrency)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, issue := range issues {
		wg.Add(1)
		go func(issue github.Issue) {
			defer wg.Done()

			var (
				mirrored *linear.Issue
				err      error
			)
			if err = sem.Acquire(ctx, 1); err == nil {
				mirrored, err = c.syncOne(ctx, issue, stages, project.ID, teamID)
				sem.Release(1)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, Failure{
					Issue:  issue,
					Reason: err.Error(),
					Err:    err,
				})
				return
			}
			result.Succeeded = append(result.Succeeded, *mirrored)
		}(issue)
	}

	wg.Wait()
	return result, nil
}

// syncOne runs a single issue's pipeline: match, liveness probe, derive,
// gated write. Steps are sequential because each depends on the previous
// step's result.
func (c *Coordinator) syncOne(ctx context.Context, issue github.Issue, stages StagePair, projectID, teamID string) (*linear.Issue, error) {
	existing, err := NewMatcher(c.mirror).Find(ctx, issue)
	if err != nil {
		return nil, err
	}

	live, err := c.source.IssueStillExists(ctx, issue.HTMLURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check source issue: %w", err)
	}

	target := Derive(issue, live, stages, c.now())

	return NewUpserter(c.mirror).Apply(ctx, issue, existing, target, projectID, teamID)
}
