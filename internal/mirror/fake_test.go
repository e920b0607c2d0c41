package mirror

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Wazzymandias/github-linear-sync/internal/github"
	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// fakeMirror is an in-memory stand-in for the Linear client. Safe for
// concurrent use so coordinator tests can hammer it.
type fakeMirror struct {
	mu       sync.Mutex
	projects []linear.Project
	states   []linear.WorkflowState
	issues   []linear.Issue

	searchErr       error
	createErr       error
	updateErr       error
	statesErr       error
	projectsErr     error
	failCreateTitle string // CreateIssue fails for this exact title

	searchCalls int
	createCalls int
	updateCalls int
}

func (f *fakeMirror) ListProjects(_ context.Context) ([]linear.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	return append([]linear.Project(nil), f.projects...), nil
}

func (f *fakeMirror) TeamWorkflowStates(_ context.Context, _ string) ([]linear.WorkflowState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statesErr != nil {
		return nil, f.statesErr
	}
	return append([]linear.WorkflowState(nil), f.states...), nil
}

func (f *fakeMirror) SearchIssues(_ context.Context, filter linear.IssueFilter) ([]linear.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var matches []linear.Issue
	for _, issue := range f.issues {
		if filter.DescriptionContains != "" && !strings.Contains(issue.Description, filter.DescriptionContains) {
			continue
		}
		if filter.TitleEquals != "" && issue.Title != filter.TitleEquals {
			continue
		}
		matches = append(matches, issue)
	}
	return matches, nil
}

func (f *fakeMirror) CreateIssue(_ context.Context, input linear.IssueCreateInput) (*linear.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.failCreateTitle != "" && input.Title == f.failCreateTitle {
		return nil, fmt.Errorf("simulated write error for %q", input.Title)
	}

	issue := linear.Issue{
		ID:          fmt.Sprintf("fake-%d", len(f.issues)+1),
		Identifier:  fmt.Sprintf("ENG-%d", len(f.issues)+1),
		Title:       input.Title,
		Description: input.Description,
		State:       f.findState(input.StateID),
	}
	f.issues = append(f.issues, issue)
	return &issue, nil
}

func (f *fakeMirror) UpdateIssue(_ context.Context, id string, input linear.IssueUpdateInput) (*linear.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	for i := range f.issues {
		if f.issues[i].ID != id {
			continue
		}
		if input.Title != nil {
			f.issues[i].Title = *input.Title
		}
		if input.Description != nil {
			f.issues[i].Description = *input.Description
		}
		if input.StateID != nil {
			f.issues[i].State = f.findState(*input.StateID)
		}
		issue := f.issues[i]
		return &issue, nil
	}
	return nil, fmt.Errorf("no issue with id %q", id)
}

func (f *fakeMirror) findState(id string) *linear.WorkflowState {
	for i := range f.states {
		if f.states[i].ID == id {
			s := f.states[i]
			return &s
		}
	}
	return nil
}

// fakeSource stands in for the GitHub client's existence probe.
type fakeSource struct {
	deleted map[string]bool // URLs that no longer exist
	err     error
}

func (f *fakeSource) IssueStillExists(_ context.Context, url string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.deleted[url], nil
}

// Test fixtures shared across the package's tests.

func testStates() []linear.WorkflowState {
	return []linear.WorkflowState{
		{ID: "state-triage", Name: "Triage", Type: linear.StateTypeTriage},
		{ID: "state-backlog", Name: "Backlog", Type: linear.StateTypeBacklog},
		{ID: "state-started", Name: "In Progress", Type: linear.StateTypeStarted},
		{ID: "state-done", Name: "Done", Type: linear.StateTypeCompleted},
	}
}

func testStagePair() StagePair {
	return StagePair{
		Backlog: linear.WorkflowState{ID: "state-backlog", Name: "Backlog", Type: linear.StateTypeBacklog},
		Done:    linear.WorkflowState{ID: "state-done", Name: "Done", Type: linear.StateTypeCompleted},
	}
}

func testProjects() []linear.Project {
	return []linear.Project{
		{ID: "proj-1", Name: "Mirrors", SlugID: "mirrors-77aa", URL: "https://linear.app/acme/project/mirrors-77aa"},
		{ID: "proj-2", Name: "Platform", SlugID: "platform-88bb", URL: "https://linear.app/acme/project/platform-88bb"},
	}
}

func sourceIssue(repo string, number int, title, state string) github.Issue {
	return github.Issue{
		ID:      int64(number),
		Number:  number,
		Title:   title,
		State:   state,
		HTMLURL: fmt.Sprintf("https://github.com/%s/issues/%d", repo, number),
		Repo:    repo,
	}
}
