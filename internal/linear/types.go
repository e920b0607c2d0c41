// Package linear provides the client and data types for the Linear GraphQL API.
//
// This package is the write side of the sync: it searches for mirror
// issues, creates and updates them, and resolves the projects, teams, and
// workflow states a sync is scoped to.
package linear

import (
	"net/http"
	"regexp"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the Linear GraphQL API URL.
	DefaultAPIEndpoint = "https://api.linear.app/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RetryMaxElapsed bounds how long transient failures are retried.
	RetryMaxElapsed = 30 * time.Second

	// MaxSearchResults caps how many candidate issues a search returns.
	MaxSearchResults = 50

	// MaxListResults caps how many projects/teams a listing returns.
	MaxListResults = 250
)

// Workflow state types as Linear defines them.
const (
	StateTypeTriage    = "triage"
	StateTypeBacklog   = "backlog"
	StateTypeUnstarted = "unstarted"
	StateTypeStarted   = "started"
	StateTypeCompleted = "completed"
	StateTypeCanceled  = "canceled"
)

// Client provides methods to interact with the Linear GraphQL API.
type Client struct {
	APIKey     string       // Linear API key
	Endpoint   string       // GraphQL endpoint (default: https://api.linear.app/graphql)
	HTTPClient *http.Client // Optional custom HTTP client
}

// Issue represents a Linear issue (a mirror record in a sync).
type Issue struct {
	ID          string         `json:"id"`
	Identifier  string         `json:"identifier"` // e.g. "ENG-123"
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	State       *WorkflowState `json:"state,omitempty"`
	Project     *Project       `json:"project,omitempty"`
	Team        *Team          `json:"team,omitempty"`
}

// WorkflowState represents a stage in a team's workflow.
type WorkflowState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // triage, backlog, unstarted, started, completed, canceled
}

// Project represents a Linear project.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	SlugID string `json:"slugId"`
	URL    string `json:"url"`
}

// Team represents a Linear team.
type Team struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// IssueFilter narrows an issue search. Set fields combine as AND per
// Linear's filter semantics; callers wanting OR issue one search per
// predicate.
type IssueFilter struct {
	DescriptionContains string
	TitleEquals         string
}

// IssueCreateInput carries the fields for a new issue.
type IssueCreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TeamID      string `json:"teamId"`
	ProjectID   string `json:"projectId,omitempty"`
	StateID     string `json:"stateId,omitempty"`
}

// IssueUpdateInput carries the fields for an issue update. Pointer fields
// distinguish "leave unchanged" from "set to zero value".
type IssueUpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	StateID     *string `json:"stateId,omitempty"`
	ProjectID   *string `json:"projectId,omitempty"`
}

// issueURLPattern matches Linear issue URLs, with or without a title slug.
var issueURLPattern = regexp.MustCompile(`^https://linear\.app/([^/]+)/issue/([A-Za-z0-9]+-\d+)(?:/.*)?$`)

// CanonicalizeIssueURL strips the title slug from a Linear issue URL,
// returning the stable form "https://linear.app/<workspace>/issue/<identifier>".
func CanonicalizeIssueURL(url string) (string, bool) {
	m := issueURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return "https://linear.app/" + m[1] + "/issue/" + m[2], true
}
