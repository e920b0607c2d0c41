package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/Wazzymandias/github-linear-sync/internal/github"
	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// ErrClosedUnmirrored is the policy-skip outcome: a closed source issue
// with no existing mirror gets no mirror created for it. It travels as a
// failure so operators can see it in reports, but it is expected behavior,
// not a bug; callers distinguish it with errors.Is.
var ErrClosedUnmirrored = errors.New("skipped: closed source issue with no existing mirror")

// mirrorWriter is the slice of the mirror client the upsert needs.
type mirrorWriter interface {
	CreateIssue(ctx context.Context, input linear.IssueCreateInput) (*linear.Issue, error)
	UpdateIssue(ctx context.Context, id string, input linear.IssueUpdateInput) (*linear.Issue, error)
}

// Upserter applies a derived TargetState to the mirror system with exactly
// one write per invocation: an update when a mirror exists, a create when
// none does.
type Upserter struct {
	mirror mirrorWriter
}

// NewUpserter creates an upserter backed by the given mirror client.
func NewUpserter(mirror mirrorWriter) *Upserter {
	return &Upserter{mirror: mirror}
}

// Apply performs the create-or-update for one source issue.
//
// The policy gate runs before any write: when no mirror exists and the
// source issue is already closed, Apply refuses to create one and returns
// ErrClosedUnmirrored. The pre-flight filter usually drops such issues
// earlier, but this gate is the authoritative check and holds even when
// the filter was bypassed or raced a state change.
func (u *Upserter) Apply(ctx context.Context, issue github.Issue, existing *linear.Issue, target TargetState, projectID, teamID string) (*linear.Issue, error) {
	if existing == nil && issue.IsClosed() {
		return nil, ErrClosedUnmirrored
	}

	if existing != nil {
		updated, err := u.mirror.UpdateIssue(ctx, existing.ID, target.updateInput())
		if err != nil {
			return nil, fmt.Errorf("failed to update mirror %s: %w", existing.Identifier, err)
		}
		return updated, nil
	}

	created, err := u.mirror.CreateIssue(ctx, target.createInput(projectID, teamID))
	if err != nil {
		return nil, fmt.Errorf("failed to create mirror: %w", err)
	}
	return created, nil
}
