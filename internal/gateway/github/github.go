// Package github adapts the GitHub REST API to the governance gateway
// interfaces.
package github

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/linnemanlabs/go-core/log"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/governance"
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

const apiTimeout = 10 * time.Second

// Client implements governance.Gateway and governance.History against the
// GitHub REST API. It also serves repository docs for grounding detection.
type Client struct {
	gh     *github.Client
	logger log.Logger
}

// New creates an authenticated client. An empty token yields an
// unauthenticated client, which is only useful for tests.
func New(token string, logger log.Logger) *Client {
	if logger == nil {
		logger = log.Nop()
	}
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh, logger: logger}
}

// NewWithHTTPClient creates a client against a custom base URL, for tests
// backed by httptest servers.
func NewWithHTTPClient(httpClient *http.Client, baseURL string, logger log.Logger) *Client {
	if logger == nil {
		logger = log.Nop()
	}
	gh := github.NewClient(httpClient)
	if baseURL != "" {
		gh, _ = gh.WithEnterpriseURLs(baseURL, baseURL)
	}
	return &Client{gh: gh, logger: logger}
}

// AddLabels applies labels to an issue.
func (c *Client) AddLabels(ctx context.Context, repo issue.Repo, num issue.Number, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	_, _, err := c.gh.Issues.AddLabelsToIssue(ctx, repo.Owner, repo.Name, num.Int(), labels)
	return err
}

// RemoveLabel removes a single label from an issue. Removing a label the
// issue does not carry is treated as success, so replays and races with
// other automation stay quiet.
func (c *Client) RemoveLabel(ctx context.Context, repo issue.Repo, num issue.Number, label string) error {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	resp, err := c.gh.Issues.RemoveLabelForIssue(ctx, repo.Owner, repo.Name, num.Int(), label)
	if err != nil && isNotFound(err, resp) {
		c.logger.Info(ctx, "label already absent", "repo", repo.String(), "issue", num.Int(), "label", label)
		return nil
	}
	return err
}

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, repo issue.Repo, num issue.Number, body string) error {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	_, _, err := c.gh.Issues.CreateComment(ctx, repo.Owner, repo.Name, num.Int(), &github.IssueComment{
		Body: github.String(body),
	})
	return err
}

// LogValidatedIssue records that an issue passed the integrity gate. GitHub
// has no side channel for this, so it is an audit log line.
func (c *Client) LogValidatedIssue(ctx context.Context, repo issue.Repo, num issue.Number) error {
	c.logger.Info(ctx, "issue passed validation", "repo", repo.String(), "issue", num.Int())
	return nil
}

// FindRecentIssues lists the most recently created issues in the repository,
// excluding pull requests.
func (c *Client) FindRecentIssues(ctx context.Context, repo issue.Repo, limit int) ([]governance.RecentIssue, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: limit},
	}
	issues, _, err := c.gh.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, err
	}

	out := make([]governance.RecentIssue, 0, len(issues))
	for _, is := range issues {
		if is.IsPullRequest() {
			continue
		}
		labels := make([]string, 0, len(is.Labels))
		for _, l := range is.Labels {
			labels = append(labels, l.GetName())
		}
		out = append(out, governance.RecentIssue{
			Number: issue.Number(is.GetNumber()),
			Title:  is.GetTitle(),
			Labels: labels,
			State:  is.GetState(),
		})
	}
	return out, nil
}

// HasIssueCommentWithPrefix reports whether the given author already left a
// comment starting with prefix on the issue. Used to keep bot comments
// idempotent across webhook redeliveries.
func (c *Client) HasIssueCommentWithPrefix(ctx context.Context, repo issue.Repo, num issue.Number, prefix, authorLogin string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, repo.Owner, repo.Name, num.Int(), opts)
		if err != nil {
			return false, err
		}
		for _, cm := range comments {
			if authorLogin != "" && cm.GetUser().GetLogin() != authorLogin {
				continue
			}
			if hasPrefix(cm.GetBody(), prefix) {
				return true, nil
			}
		}
		if resp.NextPage == 0 {
			return false, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetRepositoryDoc fetches the repository README for grounding detection.
func (c *Client) GetRepositoryDoc(ctx context.Context, repo issue.Repo) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	readme, resp, err := c.gh.Repositories.GetReadme(ctx, repo.Owner, repo.Name, nil)
	if err != nil {
		if isNotFound(err, resp) {
			return "", nil
		}
		return "", err
	}
	return readme.GetContent()
}

func isNotFound(err error, resp *github.Response) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

func hasPrefix(s, prefix string) bool {
	return prefix != "" && len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
