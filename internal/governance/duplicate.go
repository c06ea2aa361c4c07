package governance

import (
	"fmt"
	"math"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

// DuplicateDecision is the duplicate-policy outcome. When ShouldApply is
// true, the execution context adds Label and, only if the label was newly
// added, publishes CommentBody.
type DuplicateDecision struct {
	ShouldApply          bool
	OriginalIssueNumber  int
	UsedFallbackOriginal bool
	Label                string
	CommentBody          string
}

// DuplicateInput carries everything the duplicate policy reads.
type DuplicateInput struct {
	IsDuplicate          bool
	OriginalIssueNumber  *int
	SimilarityScore      float64
	HasExplicitReference bool
	CurrentIssue         issue.Number
	// FallbackOriginal is the most recent other open issue number supplied
	// by the caller, or nil when none exists.
	FallbackOriginal    *int
	SimilarityThreshold float64
	Label               string
}

// DecideDuplicate applies the duplicate resolution policy. The fallback
// original is substituted only when the model gave no explicit reference at
// all; an explicit reference that failed to resolve is an unresolved
// reference, not a missing one, and never falls back.
func DecideDuplicate(in DuplicateInput) DuplicateDecision {
	hasSimilarity := in.SimilarityScore >= in.SimilarityThreshold

	resolved := in.OriginalIssueNumber
	usedFallback := false
	if resolved == nil && hasSimilarity && !in.HasExplicitReference && in.FallbackOriginal != nil {
		resolved = in.FallbackOriginal
		usedFallback = true
	}

	hasValidOriginal := resolved != nil && *resolved != in.CurrentIssue.Int()
	if !in.IsDuplicate || !hasSimilarity || !hasValidOriginal {
		return DuplicateDecision{}
	}

	return DuplicateDecision{
		ShouldApply:          true,
		OriginalIssueNumber:  *resolved,
		UsedFallbackOriginal: usedFallback,
		Label:                in.Label,
		CommentBody:          duplicateComment(*resolved, in.SimilarityScore),
	}
}

func duplicateComment(original int, score float64) string {
	return fmt.Sprintf("Possible duplicate of #%d (Similarity: %d%%).",
		original, int(math.Round(score*100)))
}
