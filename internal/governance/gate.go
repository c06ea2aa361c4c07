package governance

import (
	"slices"
	"strings"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

// Skip reasons surfaced by the pre-AI gate.
const (
	SkipUnsupportedAction = "unsupported action"
	SkipFailedValidation  = "failed validation"
	SkipAlreadyFlagged    = "validation already reported"
)

// GatePlan is the pre-AI decision for one webhook delivery: either flag the
// issue as needing more information, or clear error labels and proceed to
// AI triage.
type GatePlan struct {
	Proceed    bool
	SkipReason string
	// AddLabel and CommentBody are set together when the issue fails
	// validation for the first time.
	AddLabel    string
	CommentBody string
	// RemoveLabels are configured error labels still present on a valid issue.
	RemoveLabels []string
	LogValidated bool
}

// BuildGatePlan validates issue integrity and decides whether AI triage may
// run. Invalid issues are flagged exactly once per violation cycle: if the
// needs-info label is already present no new label or comment is planned.
func BuildGatePlan(action string, is *issue.Issue, existingLabels []string, needsInfoLabel string, errorLabels []string) GatePlan {
	if !SupportedAction(action) {
		return GatePlan{SkipReason: SkipUnsupportedAction}
	}

	result := issue.Validate(is)
	if !result.IsValid() {
		if slices.Contains(existingLabels, needsInfoLabel) {
			return GatePlan{SkipReason: SkipAlreadyFlagged}
		}
		return GatePlan{
			SkipReason:  SkipFailedValidation,
			AddLabel:    needsInfoLabel,
			CommentBody: validationComment(result.Errors),
		}
	}

	var remove []string
	for _, l := range errorLabels {
		if slices.Contains(existingLabels, l) {
			remove = append(remove, l)
		}
	}
	return GatePlan{
		Proceed:      true,
		RemoveLabels: remove,
		LogValidated: true,
	}
}

func validationComment(errs []string) string {
	var b strings.Builder
	b.WriteString("This issue needs more information before it can be triaged:\n")
	for _, e := range errs {
		b.WriteString("\n- ")
		b.WriteString(e)
	}
	return b.String()
}
