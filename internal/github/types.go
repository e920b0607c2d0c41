// Package github provides the client and data types for the GitHub REST API.
//
// This package is the read side of the sync: it lists issues across one or
// more repositories, probes whether an issue still exists upstream, and
// enumerates organizations and repositories for the discovery commands.
// Nothing here ever writes to GitHub.
package github

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for rate-limited requests.
	MaxRetries = 3

	// RetryDelay is the base delay between retries (exponential backoff).
	RetryDelay = time.Second

	// MaxPageSize is the maximum number of issues to fetch per page.
	MaxPageSize = 100

	// MaxPages is the maximum number of pages to fetch before stopping.
	// This prevents infinite loops from malformed Link headers.
	MaxPages = 1000
)

// Client provides methods to interact with the GitHub REST API.
type Client struct {
	Token      string       // GitHub personal access token
	BaseURL    string       // API base URL (default: https://api.github.com)
	HTTPClient *http.Client // Optional custom HTTP client
}

// Issue represents an issue from the GitHub API.
type Issue struct {
	ID            int64      `json:"id"`     // Global unique ID
	Number        int        `json:"number"` // Repository-scoped issue number
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	State         string     `json:"state"` // "open" or "closed"
	HTMLURL       string     `json:"html_url"`
	RepositoryURL string     `json:"repository_url,omitempty"`
	User          *User      `json:"user,omitempty"` // Author
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	PullRequest   *PullRef   `json:"pull_request,omitempty"` // Non-nil if this is a PR

	// Repo is the "owner/name" the issue was listed from. Set by the
	// client during listing; not part of the API response.
	Repo string `json:"-"`
}

// RepoFullName returns the "owner/name" of the issue's repository, falling
// back to the repository_url field when the issue was not produced by
// ListIssues (e.g. decoded from a single-issue fetch).
func (i *Issue) RepoFullName() string {
	if i.Repo != "" {
		return i.Repo
	}
	const marker = "/repos/"
	if idx := strings.LastIndex(i.RepositoryURL, marker); idx != -1 {
		return i.RepositoryURL[idx+len(marker):]
	}
	return ""
}

// IsClosed reports whether the issue's lifecycle state is "closed".
func (i *Issue) IsClosed() bool {
	return i.State == StateClosed
}

// PullRef indicates an issue is actually a pull request.
// The GitHub Issues API returns PRs alongside issues; this field
// distinguishes them.
type PullRef struct {
	URL string `json:"url,omitempty"`
}

// User represents a GitHub user.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Repository represents a GitHub repository (for listing repos).
type Repository struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	HTMLURL     string `json:"html_url"`
	Private     bool   `json:"private"`
	Owner       *User  `json:"owner,omitempty"`
}

// Organization represents a GitHub organization membership entry.
type Organization struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Description string `json:"description,omitempty"`
}

// Issue lifecycle states.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// validStates for GitHub issues.
var validStates = map[string]bool{
	StateOpen:   true,
	StateClosed: true,
}

// IsValidState checks if a GitHub state string is valid.
func IsValidState(state string) bool {
	return validStates[state]
}

// issueURLPattern matches canonical GitHub issue HTML URLs, capturing
// owner, repo, and issue number. Host-agnostic so GHE URLs work too.
var issueURLPattern = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+)/issues/(\d+)/?$`)

// ParseIssueURL extracts the "owner/name" repository path and issue number
// from a canonical issue HTML URL such as
// "https://github.com/acme/widgets/issues/42".
func ParseIssueURL(url string) (repo string, number int, ok bool) {
	m := issueURLPattern.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return "", 0, false
	}
	return m[1] + "/" + m[2], n, true
}
