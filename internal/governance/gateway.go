package governance

import (
	"context"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

// Gateway performs governance actions against the real issue tracker.
// Failures propagate to the caller, except that adapters must translate the
// tracker-specific "label not found on remove" condition into a silent
// success before this layer ever sees it.
type Gateway interface {
	AddLabels(ctx context.Context, repo issue.Repo, num issue.Number, labels []string) error
	RemoveLabel(ctx context.Context, repo issue.Repo, num issue.Number, label string) error
	CreateComment(ctx context.Context, repo issue.Repo, num issue.Number, body string) error
	LogValidatedIssue(ctx context.Context, repo issue.Repo, num issue.Number) error
}

// RecentIssue is a summary of a previously filed issue, used for duplicate
// fallback resolution.
type RecentIssue struct {
	Number issue.Number
	Title  string
	Labels []string
	State  string
}

// History reads prior tracker state the policies need.
type History interface {
	FindRecentIssues(ctx context.Context, repo issue.Repo, limit int) ([]RecentIssue, error)
	HasIssueCommentWithPrefix(ctx context.Context, repo issue.Repo, num issue.Number, prefix, authorLogin string) (bool, error)
}
