package mirror

import (
	"strings"
	"testing"
	"time"

	"github.com/Wazzymandias/github-linear-sync/internal/github"
)

var testNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

// TestDerive_StageMatrix pins the stage rule: done when closed or gone
// upstream, backlog only for open and live.
func TestDerive_StageMatrix(t *testing.T) {
	tests := []struct {
		name       string
		state      string
		sourceLive bool
		wantStage  string
	}{
		{"open and live", github.StateOpen, true, "state-backlog"},
		{"open but deleted upstream", github.StateOpen, false, "state-done"},
		{"closed and live", github.StateClosed, true, "state-done"},
		{"closed and deleted upstream", github.StateClosed, false, "state-done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := sourceIssue("acme/widgets", 42, "Fix race", tt.state)
			got := Derive(issue, tt.sourceLive, testStagePair(), testNow)
			if got.StateID != tt.wantStage {
				t.Errorf("StateID = %q, want %q", got.StateID, tt.wantStage)
			}
		})
	}
}

func TestDerive_Title(t *testing.T) {
	issue := sourceIssue("acme/widgets", 42, "Fix race", github.StateOpen)

	got := Derive(issue, true, testStagePair(), testNow)

	want := "[🛠️GH] acme/widgets#42: Fix race"
	if got.Title != want {
		t.Errorf("Title = %q, want %q", got.Title, want)
	}
}

// TestDerive_Description verifies segment assembly: body, blank line, URL,
// optional orphan warning, sync timestamp.
func TestDerive_Description(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		sourceLive bool
		want       string
	}{
		{
			name:       "body present and live",
			body:       "Something is racy.",
			sourceLive: true,
			want: "Something is racy.\n" +
				"\n" +
				"https://github.com/acme/widgets/issues/42\n" +
				"Last synced: 2024-03-01T12:30:00Z",
		},
		{
			name:       "no body drops the leading segments",
			body:       "",
			sourceLive: true,
			want: "https://github.com/acme/widgets/issues/42\n" +
				"Last synced: 2024-03-01T12:30:00Z",
		},
		{
			name:       "orphan gets a warning line",
			body:       "Something is racy.",
			sourceLive: false,
			want: "Something is racy.\n" +
				"\n" +
				"https://github.com/acme/widgets/issues/42\n" +
				OrphanWarning + "\n" +
				"Last synced: 2024-03-01T12:30:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := sourceIssue("acme/widgets", 42, "Fix race", github.StateOpen)
			issue.Body = tt.body

			got := Derive(issue, tt.sourceLive, testStagePair(), testNow)
			if got.Description != tt.want {
				t.Errorf("Description =\n%q\nwant\n%q", got.Description, tt.want)
			}
		})
	}
}

// TestDerive_Idempotent verifies deriving twice with no source change
// yields identical state apart from the timestamp line.
func TestDerive_Idempotent(t *testing.T) {
	issue := sourceIssue("acme/widgets", 42, "Fix race", github.StateOpen)
	issue.Body = "Something is racy."

	first := Derive(issue, true, testStagePair(), testNow)
	second := Derive(issue, true, testStagePair(), testNow.Add(5*time.Minute))

	if first.Title != second.Title {
		t.Errorf("Title changed between derives: %q vs %q", first.Title, second.Title)
	}
	if first.StateID != second.StateID {
		t.Errorf("StateID changed between derives: %q vs %q", first.StateID, second.StateID)
	}

	stripSynced := func(desc string) string {
		lines := strings.Split(desc, "\n")
		kept := lines[:0]
		for _, l := range lines {
			if strings.HasPrefix(l, lastSyncedPrefix) {
				continue
			}
			kept = append(kept, l)
		}
		return strings.Join(kept, "\n")
	}
	if stripSynced(first.Description) != stripSynced(second.Description) {
		t.Errorf("Description differs beyond the timestamp:\n%q\nvs\n%q", first.Description, second.Description)
	}

	// Same instant derives byte-identical state.
	repeat := Derive(issue, true, testStagePair(), testNow)
	if repeat != first {
		t.Errorf("same-instant derive differs: %+v vs %+v", repeat, first)
	}
}
