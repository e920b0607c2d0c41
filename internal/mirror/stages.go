package mirror

import (
	"context"
	"fmt"

	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// StagePair holds the two workflow stages a sync writes to: Backlog for
// open work and Done for closed or orphaned work. Resolved once per team
// per batch.
type StagePair struct {
	Backlog linear.WorkflowState
	Done    linear.WorkflowState
}

// StageError reports a team missing a required workflow stage. This is a
// configuration error: no issue in the batch can sync without both stages,
// so the whole batch fails before any per-issue work starts.
type StageError struct {
	TeamID    string
	StageType string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("team %s has no workflow state of type %q", e.TeamID, e.StageType)
}

// stageLister is the slice of the mirror client stage resolution needs.
type stageLister interface {
	TeamWorkflowStates(ctx context.Context, teamID string) ([]linear.WorkflowState, error)
}

// ResolveStages looks up the team's backlog and completed workflow states.
// When a team has several states of the same type, the first one the API
// returns is used (Linear orders states by position).
func ResolveStages(ctx context.Context, client stageLister, teamID string) (StagePair, error) {
	states, err := client.TeamWorkflowStates(ctx, teamID)
	if err != nil {
		return StagePair{}, fmt.Errorf("failed to resolve workflow states: %w", err)
	}

	var pair StagePair
	var haveBacklog, haveDone bool
	for _, s := range states {
		switch s.Type {
		case linear.StateTypeBacklog:
			if !haveBacklog {
				pair.Backlog = s
				haveBacklog = true
			}
		case linear.StateTypeCompleted:
			if !haveDone {
				pair.Done = s
				haveDone = true
			}
		}
	}

	if !haveBacklog {
		return StagePair{}, &StageError{TeamID: teamID, StageType: linear.StateTypeBacklog}
	}
	if !haveDone {
		return StagePair{}, &StageError{TeamID: teamID, StageType: linear.StateTypeCompleted}
	}
	return pair, nil
}
