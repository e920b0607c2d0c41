package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NewClient creates a new GitHub client.
func NewClient(token string) *Client {
	return &Client{
		Token:   token,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		Token:      c.Token,
		BaseURL:    c.BaseURL,
		HTTPClient: httpClient,
	}
}

// WithBaseURL returns a new client with a custom base URL (for testing or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		Token:      c.Token,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: c.HTTPClient,
	}
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// doRequest performs a GET request with authentication and rate-limit retry.
// All calls this client makes are reads, so the request carries no body and
// is safe to replay.
func (c *Client) doRequest(ctx context.Context, urlStr string) ([]byte, http.Header, int, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt+1, MaxRetries+1, err)
			continue
		}

		const maxResponseSize = 50 * 1024 * 1024
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response (attempt %d/%d): %w", attempt+1, MaxRetries+1, err)
			continue
		}

		// Handle rate limiting (GitHub uses 403 with X-RateLimit-Remaining: 0, or 429)
		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
			delay := RetryDelay * time.Duration(1<<attempt)
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					delay = time.Duration(seconds) * time.Second
				}
			}
			lastErr = fmt.Errorf("rate limited (attempt %d/%d)", attempt+1, MaxRetries+1)
			select {
			case <-ctx.Done():
				return nil, nil, 0, ctx.Err()
			case <-time.After(delay):
				continue
			}
		}

		return respBody, resp.Header, resp.StatusCode, nil
	}

	return nil, nil, 0, fmt.Errorf("max retries (%d) exceeded: %w", MaxRetries+1, lastErr)
}

// get performs a GET and fails on any non-2xx status.
func (c *Client) get(ctx context.Context, urlStr string) ([]byte, http.Header, error) {
	respBody, headers, status, err := c.doRequest(ctx, urlStr)
	if err != nil {
		return nil, nil, err
	}
	if status < 200 || status >= 300 {
		return nil, nil, fmt.Errorf("API error: %s (status %d)", string(respBody), status)
	}
	return respBody, headers, nil
}

// linkNextPattern matches the "next" relation in GitHub Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// hasNextPage checks the Link header for a next page URL and returns it.
func hasNextPage(headers http.Header) (string, bool) {
	link := headers.Get("Link")
	if link == "" {
		return "", false
	}
	matches := linkNextPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// ListIssues retrieves issues from the given repositories ("owner/name"),
// optionally filtered by author login and last-updated time. Pull requests
// are filtered out (GitHub returns PRs in the issues endpoint), and each
// returned issue carries the repository it was listed from.
//
// The API accepts a single "creator" filter, so with exactly one author the
// filter is pushed to the server; with several, issues are filtered
// client-side after listing.
func (c *Client) ListIssues(ctx context.Context, repos []string, authors []string, since *time.Time) ([]Issue, error) {
	var all []Issue
	for _, repo := range repos {
		issues, err := c.listRepoIssues(ctx, repo, authors, since)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues for %s: %w", repo, err)
		}
		all = append(all, issues...)
	}
	return all, nil
}

func (c *Client) listRepoIssues(ctx context.Context, repo string, authors []string, since *time.Time) ([]Issue, error) {
	var all []Issue
	page := 1

	authorSet := make(map[string]bool, len(authors))
	for _, a := range authors {
		authorSet[strings.ToLower(a)] = true
	}

	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		params := map[string]string{
			"state":    "all",
			"per_page": strconv.Itoa(MaxPageSize),
			"page":     strconv.Itoa(page),
		}
		if since != nil {
			params["since"] = since.UTC().Format(time.RFC3339)
		}
		if len(authors) == 1 {
			params["creator"] = authors[0]
		}

		urlStr := c.buildURL("/repos/"+repo+"/issues", params)
		respBody, headers, err := c.get(ctx, urlStr)
		if err != nil {
			return nil, err
		}

		var issues []Issue
		if err := json.Unmarshal(respBody, &issues); err != nil {
			return nil, fmt.Errorf("failed to parse issues response: %w", err)
		}

		for i := range issues {
			if issues[i].PullRequest != nil {
				continue
			}
			if len(authors) > 1 {
				if issues[i].User == nil || !authorSet[strings.ToLower(issues[i].User.Login)] {
					continue
				}
			}
			issues[i].Repo = repo
			all = append(all, issues[i])
		}

		if _, ok := hasNextPage(headers); !ok {
			break
		}
		page++

		if page > MaxPages {
			return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}
	}

	return all, nil
}

// IssueStillExists probes whether the issue behind a canonical HTML URL
// still exists upstream. A 404 or 410 means the issue was deleted (or the
// repository made inaccessible); any other non-2xx status is an error, not
// evidence of deletion.
func (c *Client) IssueStillExists(ctx context.Context, issueURL string) (bool, error) {
	repo, number, ok := ParseIssueURL(issueURL)
	if !ok {
		return false, fmt.Errorf("not a GitHub issue URL: %q", issueURL)
	}

	urlStr := c.buildURL("/repos/"+repo+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, status, err := c.doRequest(ctx, urlStr)
	if err != nil {
		return false, fmt.Errorf("failed to check issue %s#%d: %w", repo, number, err)
	}

	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return false, nil
	case status >= 200 && status < 300:
		return true, nil
	default:
		return false, fmt.Errorf("API error checking issue %s#%d: %s (status %d)", repo, number, string(respBody), status)
	}
}

// ListOrganizations retrieves organizations the authenticated user belongs to.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	urlStr := c.buildURL("/user/orgs", map[string]string{"per_page": "100"})
	respBody, _, err := c.get(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	var orgs []Organization
	if err := json.Unmarshal(respBody, &orgs); err != nil {
		return nil, fmt.Errorf("failed to parse organizations response: %w", err)
	}

	return orgs, nil
}

// ListRepositoriesForOrg retrieves repositories belonging to an organization.
func (c *Client) ListRepositoriesForOrg(ctx context.Context, org string) ([]Repository, error) {
	params := map[string]string{
		"per_page": "100",
		"sort":     "updated",
	}
	urlStr := c.buildURL("/orgs/"+org+"/repos", params)
	respBody, _, err := c.get(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", org, err)
	}

	var repos []Repository
	if err := json.Unmarshal(respBody, &repos); err != nil {
		return nil, fmt.Errorf("failed to parse repositories response: %w", err)
	}

	return repos, nil
}

// ListRepositoriesForUser retrieves repositories accessible to the authenticated user.
func (c *Client) ListRepositoriesForUser(ctx context.Context) ([]Repository, error) {
	params := map[string]string{
		"per_page": "100",
		"sort":     "updated",
	}
	urlStr := c.buildURL("/user/repos", params)
	respBody, _, err := c.get(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	var repos []Repository
	if err := json.Unmarshal(respBody, &repos); err != nil {
		return nil, fmt.Errorf("failed to parse repositories response: %w", err)
	}

	return repos, nil
}

// Viewer validates the configured token and returns the authenticated
// user's login.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	urlStr := c.buildURL("/user", nil)
	respBody, _, err := c.get(ctx, urlStr)
	if err != nil {
		return "", fmt.Errorf("GitHub token validation failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(respBody, &user); err != nil {
		return "", fmt.Errorf("failed to parse user response: %w", err)
	}

	return user.Login, nil
}
