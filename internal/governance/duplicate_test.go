package governance

import (
	"testing"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

func dupInput() DuplicateInput {
	return DuplicateInput{
		IsDuplicate:         true,
		SimilarityScore:     0.9,
		CurrentIssue:        issue.Number(10),
		SimilarityThreshold: 0.85,
		Label:               "duplicate",
	}
}

func TestDecideDuplicate_Applies(t *testing.T) {
	t.Parallel()

	in := dupInput()
	n := 7
	in.OriginalIssueNumber = &n

	d := DecideDuplicate(in)
	if !d.ShouldApply {
		t.Fatal("expected apply")
	}
	if d.OriginalIssueNumber != 7 {
		t.Errorf("original = %d, want 7", d.OriginalIssueNumber)
	}
	if d.UsedFallbackOriginal {
		t.Error("explicit original must not be marked fallback")
	}
	want := "Possible duplicate of #7 (Similarity: 90%)."
	if d.CommentBody != want {
		t.Errorf("comment = %q, want %q", d.CommentBody, want)
	}
}

func TestDecideDuplicate_BelowThreshold(t *testing.T) {
	t.Parallel()

	in := dupInput()
	n := 7
	in.OriginalIssueNumber = &n
	in.SimilarityScore = 0.84

	if d := DecideDuplicate(in); d.ShouldApply {
		t.Error("similarity below threshold must not apply")
	}
}

func TestDecideDuplicate_NotDuplicate(t *testing.T) {
	t.Parallel()

	in := dupInput()
	n := 7
	in.OriginalIssueNumber = &n
	in.IsDuplicate = false

	if d := DecideDuplicate(in); d.ShouldApply {
		t.Error("isDuplicate=false must not apply")
	}
}

func TestDecideDuplicate_FallbackUsedWhenNoReference(t *testing.T) {
	t.Parallel()

	in := dupInput()
	fb := 3
	in.FallbackOriginal = &fb

	d := DecideDuplicate(in)
	if !d.ShouldApply {
		t.Fatal("expected apply via fallback")
	}
	if d.OriginalIssueNumber != 3 || !d.UsedFallbackOriginal {
		t.Errorf("got original=%d fallback=%v, want 3/true", d.OriginalIssueNumber, d.UsedFallbackOriginal)
	}
}

func TestDecideDuplicate_UnresolvedExplicitReferenceNeverFallsBack(t *testing.T) {
	t.Parallel()

	// The model named an original but it could not be resolved; substituting
	// a guess would point contributors at an unrelated issue.
	in := dupInput()
	in.HasExplicitReference = true
	fb := 3
	in.FallbackOriginal = &fb

	if d := DecideDuplicate(in); d.ShouldApply {
		t.Errorf("unresolved explicit reference fell back to #%d", d.OriginalIssueNumber)
	}
}

func TestDecideDuplicate_FallbackEqualToCurrentRejected(t *testing.T) {
	t.Parallel()

	in := dupInput()
	fb := 10 // same as current issue
	in.FallbackOriginal = &fb

	if d := DecideDuplicate(in); d.ShouldApply {
		t.Error("fallback equal to the current issue must not apply")
	}
}

func TestDecideDuplicate_CommentRoundsSimilarity(t *testing.T) {
	t.Parallel()

	in := dupInput()
	n := 2
	in.OriginalIssueNumber = &n
	in.SimilarityScore = 0.876

	d := DecideDuplicate(in)
	want := "Possible duplicate of #2 (Similarity: 88%)."
	if d.CommentBody != want {
		t.Errorf("comment = %q, want %q", d.CommentBody, want)
	}
}
