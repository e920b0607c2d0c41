package mirror

import (
	"strings"
	"time"

	"github.com/Wazzymandias/github-linear-sync/internal/github"
	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// OrphanWarning is appended to a mirror's description when the source
// issue no longer exists upstream.
const OrphanWarning = "⚠️ The GitHub issue behind this mirror no longer exists."

// lastSyncedPrefix labels the sync timestamp line in mirror descriptions.
const lastSyncedPrefix = "Last synced: "

// TargetState is the state a mirror record should be in, computed from the
// source issue alone. Writing the same TargetState twice is a no-op in
// effect, which is what makes repeated syncs converge.
type TargetState struct {
	Title       string
	Description string
	StateID     string // workflow state the mirror should be in
}

// Derive computes the target mirror state for a source issue. Pure; all
// facts (liveness, stages, time) come in as arguments.
//
// The stage is Done when the source issue is closed or gone upstream;
// orphaned work must land in a terminal stage rather than linger in the
// backlog. Only an open, still-live issue derives to Backlog.
func Derive(issue github.Issue, sourceLive bool, stages StagePair, now time.Time) TargetState {
	stage := stages.Backlog
	if issue.IsClosed() || !sourceLive {
		stage = stages.Done
	}

	return TargetState{
		Title:       DerivedTitle(issue.RepoFullName(), issue.Number, issue.Title),
		Description: deriveDescription(issue, sourceLive, now),
		StateID:     stage.ID,
	}
}

// deriveDescription assembles the mirror description: source body, a blank
// line, the canonical source URL, an orphan warning when the source is
// gone, and the sync timestamp. Empty segments are dropped.
func deriveDescription(issue github.Issue, sourceLive bool, now time.Time) string {
	segments := make([]string, 0, 5)

	if body := strings.TrimRight(issue.Body, "\n"); body != "" {
		segments = append(segments, body, "")
	}
	if issue.HTMLURL != "" {
		segments = append(segments, issue.HTMLURL)
	}
	if !sourceLive {
		segments = append(segments, OrphanWarning)
	}
	segments = append(segments, lastSyncedPrefix+now.UTC().Format(time.RFC3339))

	return strings.Join(segments, "\n")
}

// updateInput converts a TargetState into the full update payload. Every
// field is written on every update so reconciliation converges regardless
// of what the mirror looked like before.
func (s TargetState) updateInput() linear.IssueUpdateInput {
	title, description, stateID := s.Title, s.Description, s.StateID
	return linear.IssueUpdateInput{
		Title:       &title,
		Description: &description,
		StateID:     &stateID,
	}
}

// createInput converts a TargetState into a create payload scoped to the
// given project and team.
func (s TargetState) createInput(projectID, teamID string) linear.IssueCreateInput {
	return linear.IssueCreateInput{
		Title:       s.Title,
		Description: s.Description,
		TeamID:      teamID,
		ProjectID:   projectID,
		StateID:     s.StateID,
	}
}
