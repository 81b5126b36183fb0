package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

const (
	defaultBaseURL = "https://api.github.com"
	searchPageSize = 30
	maxErrorBody   = 64 << 10
)

// Client searches and creates issues in one repository
type Client struct {
	owner string
	repo  string
	api   *gh.Client
}

// Issue is the subset of the GitHub issue object the agent reads
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
}

// CreateIssueRequest is the payload for a new issue
type CreateIssueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	Payload    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github returned status %d: %s", e.StatusCode, e.Payload)
}

// NewClient creates a GitHub client from cfg. The repository must be
// "owner/name"; an empty one is allowed but every call will fail.
func NewClient(cfg *config.GitHubConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	api := gh.NewClient(&http.Client{Timeout: timeout}).WithAuthToken(cfg.Token)
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" && base != defaultBaseURL {
		if u, err := url.Parse(base + "/"); err == nil {
			api.BaseURL = u
		}
	}
	owner, repo, _ := strings.Cut(cfg.Repo, "/")
	return &Client{owner: owner, repo: repo, api: api}
}

// Repo returns the configured "owner/name"
func (c *Client) Repo() string {
	return c.owner + "/" + c.repo
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.api.BaseURL.String(), "/")
}

// SearchIssues runs an issue search and returns the first page of items
func (c *Client) SearchIssues(ctx context.Context, query string) ([]Issue, error) {
	result, resp, err := c.api.Search.Issues(ctx, query, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: searchPageSize},
	})
	if err != nil {
		return nil, wrapError("search issues", resp, err)
	}
	items := make([]Issue, 0, len(result.Issues))
	for _, i := range result.Issues {
		items = append(items, fromAPI(i))
	}
	return items, nil
}

// CreateIssue opens a new issue in the configured repository
func (c *Client) CreateIssue(ctx context.Context, in CreateIssueRequest) (*Issue, error) {
	req := &gh.IssueRequest{
		Title: gh.String(in.Title),
		Body:  gh.String(in.Body),
	}
	if len(in.Labels) > 0 {
		req.Labels = &in.Labels
	}
	if len(in.Assignees) > 0 {
		req.Assignees = &in.Assignees
	}

	created, resp, err := c.api.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return nil, wrapError("create issue", resp, err)
	}
	issue := fromAPI(created)
	return &issue, nil
}

func fromAPI(i *gh.Issue) Issue {
	return Issue{
		Number:  i.GetNumber(),
		Title:   i.GetTitle(),
		Body:    i.GetBody(),
		State:   i.GetState(),
		HTMLURL: i.GetHTMLURL(),
	}
}

// wrapError turns an upstream rejection into *APIError. Transport failures
// keep their original error.
func wrapError(op string, resp *gh.Response, err error) error {
	if resp == nil || resp.Response == nil || resp.StatusCode < 300 {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &APIError{StatusCode: resp.StatusCode, Payload: errorPayload(resp.Response, err)}
}

// errorPayload prefers the raw response body, which go-github restores after
// decoding, and falls back to the decoded error fields.
func errorPayload(resp *http.Response, err error) string {
	if resp.Body != nil {
		if body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil {
			if s := strings.TrimSpace(string(body)); s != "" {
				return s
			}
		}
	}
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) {
		if b, mErr := json.Marshal(errResp); mErr == nil {
			return string(b)
		}
		return errResp.Message
	}
	return err.Error()
}
