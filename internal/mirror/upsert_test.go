package mirror

import (
	"context"
	"errors"
	"testing"

	"github.com/Wazzymandias/github-linear-sync/internal/github"
	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// TestApply_PolicyGate verifies the single most important rule: a closed
// source issue with no existing mirror gets zero writes.
func TestApply_PolicyGate(t *testing.T) {
	mirror := &fakeMirror{states: testStates()}
	upserter := NewUpserter(mirror)

	issue := sourceIssue("acme/widgets", 42, "Fix race", github.StateClosed)
	target := Derive(issue, true, testStagePair(), testNow)

	_, err := upserter.Apply(context.Background(), issue, nil, target, "proj-1", "team-1")
	if !errors.Is(err, ErrClosedUnmirrored) {
		t.Fatalf("Apply() error = %v, want ErrClosedUnmirrored", err)
	}
	if mirror.createCalls != 0 || mirror.updateCalls != 0 {
		t.Errorf("writes = %d creates, %d updates, want zero of each",
			mirror.createCalls, mirror.updateCalls)
	}
}

// TestApply_UpdatesWhenMirrorExists verifies an existing mirror is always
// updated, never re-created, closed source or not.
func TestApply_UpdatesWhenMirrorExists(t *testing.T) {
	for _, state := range []string{github.StateOpen, github.StateClosed} {
		t.Run(state, func(t *testing.T) {
			existing := linear.Issue{ID: "m1", Identifier: "ENG-1", Title: "old"}
			mirror := &fakeMirror{states: testStates(), issues: []linear.Issue{existing}}
			upserter := NewUpserter(mirror)

			issue := sourceIssue("acme/widgets", 42, "Fix race", state)
			target := Derive(issue, true, testStagePair(), testNow)

			got, err := upserter.Apply(context.Background(), issue, &existing, target, "proj-1", "team-1")
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if mirror.updateCalls != 1 || mirror.createCalls != 0 {
				t.Errorf("writes = %d updates, %d creates, want 1/0",
					mirror.updateCalls, mirror.createCalls)
			}
			if got.Title != target.Title {
				t.Errorf("updated title = %q, want %q", got.Title, target.Title)
			}
		})
	}
}

func TestApply_CreatesWhenAbsentAndOpen(t *testing.T) {
	mirror := &fakeMirror{states: testStates()}
	upserter := NewUpserter(mirror)

	issue := sourceIssue("acme/widgets", 42, "Fix race", github.StateOpen)
	target := Derive(issue, true, testStagePair(), testNow)

	got, err := upserter.Apply(context.Background(), issue, nil, target, "proj-1", "team-1")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if mirror.createCalls != 1 || mirror.updateCalls != 0 {
		t.Errorf("writes = %d creates, %d updates, want 1/0",
			mirror.createCalls, mirror.updateCalls)
	}
	if got.Title != "[🛠️GH] acme/widgets#42: Fix race" {
		t.Errorf("created title = %q", got.Title)
	}
	if got.State == nil || got.State.ID != "state-backlog" {
		t.Errorf("created state = %+v, want backlog", got.State)
	}
}

func TestApply_WriteErrorWrapped(t *testing.T) {
	writeErr := errors.New("remote write failed")
	mirror := &fakeMirror{createErr: writeErr}
	upserter := NewUpserter(mirror)

	issue := sourceIssue("acme/widgets", 42, "Fix race", github.StateOpen)
	target := Derive(issue, true, testStagePair(), testNow)

	_, err := upserter.Apply(context.Background(), issue, nil, target, "proj-1", "team-1")
	if !errors.Is(err, writeErr) {
		t.Fatalf("Apply() error = %v, want to wrap %v", err, writeErr)
	}
}
