package governance

import (
	"slices"
	"testing"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
)

func rec(apply bool, conf float64) *analysis.LabelRecommendation {
	return &analysis.LabelRecommendation{ShouldApply: apply, Confidence: conf}
}

func curationInput() CurationInput {
	return CurationInput{
		Recommendations: &analysis.LabelRecommendations{
			Documentation:  rec(true, 0.9),
			HelpWanted:     rec(true, 0.9),
			GoodFirstIssue: rec(true, 0.9),
		},
		Classification: analysis.Classification{Type: analysis.TypeQuestion, Confidence: 0.9},
		Tone:           analysis.ToneNeutral,
		Labels:         DefaultLabels(),
		Thresholds:     DefaultThresholds(),
	}
}

func TestDecideCuration_AllThreeInOrder(t *testing.T) {
	t.Parallel()

	d := DecideCuration(curationInput())
	want := []string{"documentation", "help wanted", "good first issue"}
	if !slices.Equal(d.LabelsToAdd, want) {
		t.Errorf("add = %v, want %v", d.LabelsToAdd, want)
	}
}

func TestDecideCuration_SkipsHostile(t *testing.T) {
	t.Parallel()

	in := curationInput()
	in.Tone = analysis.ToneHostile
	if d := DecideCuration(in); len(d.LabelsToAdd) != 0 {
		t.Errorf("add = %v, want none for hostile tone", d.LabelsToAdd)
	}
}

func TestDecideCuration_SkipsLikelyDuplicate(t *testing.T) {
	t.Parallel()

	in := curationInput()
	in.LikelyDuplicate = true
	if d := DecideCuration(in); len(d.LabelsToAdd) != 0 {
		t.Errorf("add = %v, want none for likely duplicate", d.LabelsToAdd)
	}
}

func TestDecideCuration_NilRecommendations(t *testing.T) {
	t.Parallel()

	in := curationInput()
	in.Recommendations = nil
	if d := DecideCuration(in); len(d.LabelsToAdd) != 0 {
		t.Errorf("add = %v, want none without recommendations", d.LabelsToAdd)
	}
}

func TestDecideCuration_BugBlocksDocAndGFI(t *testing.T) {
	t.Parallel()

	in := curationInput()
	in.Classification.Type = analysis.TypeBug

	d := DecideCuration(in)
	if !slices.Equal(d.LabelsToAdd, []string{"help wanted"}) {
		t.Errorf("add = %v, want only help wanted for a bug", d.LabelsToAdd)
	}
}

func TestDecideCuration_GFIRequiresClassificationConfidence(t *testing.T) {
	t.Parallel()

	// good-first-issue additionally requires the classification itself to
	// clear the GFI threshold; documentation and help-wanted do not.
	in := curationInput()
	in.Classification.Confidence = 0.5

	d := DecideCuration(in)
	if slices.Contains(d.LabelsToAdd, "good first issue") {
		t.Error("good first issue applied despite low classification confidence")
	}
	if !slices.Contains(d.LabelsToAdd, "documentation") || !slices.Contains(d.LabelsToAdd, "help wanted") {
		t.Errorf("add = %v, want documentation and help wanted", d.LabelsToAdd)
	}
}

func TestDecideCuration_SkipsExistingLabels(t *testing.T) {
	t.Parallel()

	in := curationInput()
	in.ExistingLabels = []string{"documentation", "good first issue"}

	d := DecideCuration(in)
	if !slices.Equal(d.LabelsToAdd, []string{"help wanted"}) {
		t.Errorf("add = %v, want only the missing label", d.LabelsToAdd)
	}
}

func TestDecideCuration_RecommendationThresholds(t *testing.T) {
	t.Parallel()

	in := curationInput()
	in.Recommendations = &analysis.LabelRecommendations{
		Documentation:  rec(true, 0.69),  // below 0.7
		HelpWanted:     rec(false, 0.99), // shouldApply false
		GoodFirstIssue: rec(true, 0.79),  // below 0.8
	}

	if d := DecideCuration(in); len(d.LabelsToAdd) != 0 {
		t.Errorf("add = %v, want none", d.LabelsToAdd)
	}
}
