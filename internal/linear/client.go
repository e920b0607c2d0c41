package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
)

// NewClient creates a new Linear client.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:   apiKey,
		Endpoint: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithEndpoint returns a new client with a custom GraphQL endpoint (for testing).
func (c *Client) WithEndpoint(endpoint string) *Client {
	return &Client{
		APIKey:     c.APIKey,
		Endpoint:   endpoint,
		HTTPClient: c.HTTPClient,
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		APIKey:     c.APIKey,
		Endpoint:   c.Endpoint,
		HTTPClient: httpClient,
	}
}

// graphQLRequest is the JSON envelope Linear expects.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLError is a single entry in a GraphQL errors array.
type graphQLError struct {
	Message string `json:"message"`
}

// graphQLResponse is the JSON envelope Linear returns.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

// newRequestBackoff returns retry policy for transient API failures.
// BackOff implementations are stateful; always return a fresh instance.
func newRequestBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = RetryMaxElapsed
	return bo
}

// do executes one GraphQL operation and decodes the data payload into out.
// Transport errors, 429s, and 5xx responses are retried with exponential
// backoff; other HTTP errors and GraphQL-level errors are permanent.
func (c *Client) do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	var data json.RawMessage
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Authorization", c.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err) // retryable
		}

		const maxResponseSize = 10 * 1024 * 1024
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err) // retryable
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("API error: %s (status %d)", string(respBody), resp.StatusCode) // retryable
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("API error: %s (status %d)", string(respBody), resp.StatusCode))
		}

		var envelope graphQLResponse
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse GraphQL response: %w", err))
		}
		if len(envelope.Errors) > 0 {
			msgs := make([]string, len(envelope.Errors))
			for i, e := range envelope.Errors {
				msgs[i] = e.Message
			}
			return backoff.Permanent(fmt.Errorf("GraphQL error: %s", strings.Join(msgs, "; ")))
		}

		data = envelope.Data
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(newRequestBackoff(), ctx)); err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse GraphQL data: %w", err)
		}
	}
	return nil
}

const issueFields = `id identifier title description url state { id name type } project { id name slugId url } team { id key name }`

// ListProjects retrieves the projects accessible to the API key.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	query := `query Projects($first: Int!) {
		projects(first: $first) { nodes { id name slugId url } }
	}`
	var resp struct {
		Projects struct {
			Nodes []Project `json:"nodes"`
		} `json:"projects"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"first": MaxListResults}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return resp.Projects.Nodes, nil
}

// ListTeams retrieves the teams accessible to the API key.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	query := `query Teams($first: Int!) {
		teams(first: $first) { nodes { id key name } }
	}`
	var resp struct {
		Teams struct {
			Nodes []Team `json:"nodes"`
		} `json:"teams"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"first": MaxListResults}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return resp.Teams.Nodes, nil
}

// TeamWorkflowStates retrieves the workflow states of a team.
func (c *Client) TeamWorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error) {
	query := `query TeamStates($teamId: String!) {
		team(id: $teamId) { states { nodes { id name type } } }
	}`
	var resp struct {
		Team struct {
			States struct {
				Nodes []WorkflowState `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"teamId": teamID}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list workflow states for team %s: %w", teamID, err)
	}
	return resp.Team.States.Nodes, nil
}

// SearchIssues finds issues matching the filter. An empty result is not an
// error.
func (c *Client) SearchIssues(ctx context.Context, filter IssueFilter) ([]Issue, error) {
	f := map[string]interface{}{}
	if filter.DescriptionContains != "" {
		f["description"] = map[string]interface{}{"contains": filter.DescriptionContains}
	}
	if filter.TitleEquals != "" {
		f["title"] = map[string]interface{}{"eq": filter.TitleEquals}
	}
	if len(f) == 0 {
		return nil, fmt.Errorf("empty issue filter")
	}

	query := fmt.Sprintf(`query SearchIssues($filter: IssueFilter!, $first: Int!) {
		issues(filter: $filter, first: $first) { nodes { %s } }
	}`, issueFields)
	var resp struct {
		Issues struct {
			Nodes []Issue `json:"nodes"`
		} `json:"issues"`
	}
	vars := map[string]interface{}{"filter": f, "first": MaxSearchResults}
	if err := c.do(ctx, query, vars, &resp); err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}
	return resp.Issues.Nodes, nil
}

// CreateIssue creates a new issue.
func (c *Client) CreateIssue(ctx context.Context, input IssueCreateInput) (*Issue, error) {
	query := fmt.Sprintf(`mutation CreateIssue($input: IssueCreateInput!) {
		issueCreate(input: $input) { success issue { %s } }
	}`, issueFields)
	var resp struct {
		IssueCreate struct {
			Success bool   `json:"success"`
			Issue   *Issue `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"input": input}, &resp); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	if !resp.IssueCreate.Success || resp.IssueCreate.Issue == nil {
		return nil, fmt.Errorf("issue create was not successful")
	}
	return resp.IssueCreate.Issue, nil
}

// UpdateIssue updates an existing issue by its internal ID.
func (c *Client) UpdateIssue(ctx context.Context, id string, input IssueUpdateInput) (*Issue, error) {
	query := fmt.Sprintf(`mutation UpdateIssue($id: String!, $input: IssueUpdateInput!) {
		issueUpdate(id: $id, input: $input) { success issue { %s } }
	}`, issueFields)
	var resp struct {
		IssueUpdate struct {
			Success bool   `json:"success"`
			Issue   *Issue `json:"issue"`
		} `json:"issueUpdate"`
	}
	vars := map[string]interface{}{"id": id, "input": input}
	if err := c.do(ctx, query, vars, &resp); err != nil {
		return nil, fmt.Errorf("failed to update issue %s: %w", id, err)
	}
	if !resp.IssueUpdate.Success || resp.IssueUpdate.Issue == nil {
		return nil, fmt.Errorf("issue update was not successful")
	}
	return resp.IssueUpdate.Issue, nil
}

// Viewer validates the configured API key and returns the viewer's name.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	query := `query { viewer { id name email } }`
	var resp struct {
		Viewer struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"viewer"`
	}
	if err := c.do(ctx, query, nil, &resp); err != nil {
		return "", fmt.Errorf("Linear API key validation failed: %w", err)
	}
	return resp.Viewer.Name, nil
}
