package triage

import (
	"context"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/governance"
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

// ModelProvider is the interface for any analysis backend.
type ModelProvider interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error)
}

// AnalyzeRequest is the input to the model provider.
type AnalyzeRequest struct {
	Repo         issue.Repo
	Number       issue.Number
	Title        string
	Body         string
	RecentIssues []governance.RecentIssue
}

// AnalyzeResponse is the raw, untrusted model output plus usage accounting.
// Parsing and validation belong to the analysis normalizer, not the provider.
type AnalyzeResponse struct {
	RawText      string
	Model        string
	InputTokens  int
	OutputTokens int
}

// DocSource supplies the repository long-form text used for grounding
// detection on suggested responses.
type DocSource interface {
	GetRepositoryDoc(ctx context.Context, repo issue.Repo) (string, error)
}

// Notifier publishes finished runs to an external channel (e.g. Slack).
type Notifier interface {
	Send(ctx context.Context, run *Run) error
}
