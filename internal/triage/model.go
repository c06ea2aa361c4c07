package triage

import (
	"time"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
)

// Status tracks where a triage run is in its lifecycle.
type Status string

const (
	// StatusPending means created, not yet started.
	StatusPending Status = "pending"

	// StatusInProgress means currently being processed.
	StatusInProgress Status = "in_progress"

	// StatusComplete means the governance plan was applied.
	StatusComplete Status = "complete"

	// StatusSkipped means the run ended early by policy (fail-open), with
	// the reason recorded. Skips are successes, not errors.
	StatusSkipped Status = "skipped"

	// StatusFailed means a gateway or store error aborted the run.
	StatusFailed Status = "failed"
)

// Run is the audit record of one triage request. The in-flight analysis
// record stays immutable and request-scoped; the Run is what survives.
type Run struct {
	ID          string `json:"id"`
	DeliveryID  string `json:"delivery_id,omitempty"`
	Repo        string `json:"repo"`
	IssueNumber int    `json:"issue_number"`
	Action      string `json:"action"`
	Status      Status `json:"status"`
	SkipReason  string `json:"skip_reason,omitempty"`

	Analysis *analysis.Analysis `json:"analysis,omitempty"`
	Grammar  string             `json:"grammar,omitempty"`

	AppliedActions int    `json:"applied_actions"`
	ResponseSource string `json:"response_source,omitempty"`
	Grounded       bool   `json:"grounded,omitempty"`
	Suppressed     bool   `json:"suppressed_by_hostile_tone,omitempty"`

	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	Duration    float64   `json:"duration_seconds,omitempty"`
	Error       string    `json:"error,omitempty"`
}
