package governance

import (
	"slices"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
)

// CurationDecision lists the curation labels to add, in fixed order:
// documentation, help wanted, good first issue.
type CurationDecision struct {
	LabelsToAdd []string
}

// CurationInput carries everything the curation policy reads.
type CurationInput struct {
	Recommendations *analysis.LabelRecommendations
	Classification  analysis.Classification
	Tone            analysis.Tone
	LikelyDuplicate bool
	ExistingLabels  []string
	Labels          Labels
	Thresholds      Thresholds
}

// DecideCuration applies the documentation / help-wanted / good-first-issue
// policy. It skips entirely for hostile tone or likely duplicates.
func DecideCuration(in CurationInput) CurationDecision {
	if in.Tone == analysis.ToneHostile || in.LikelyDuplicate || in.Recommendations == nil {
		return CurationDecision{}
	}

	questionOrFeature := in.Classification.Type == analysis.TypeQuestion ||
		in.Classification.Type == analysis.TypeFeature

	var add []string

	if rec := in.Recommendations.Documentation; curable(rec, in.Thresholds.Documentation) &&
		questionOrFeature &&
		!slices.Contains(in.ExistingLabels, in.Labels.Documentation) {
		add = append(add, in.Labels.Documentation)
	}

	if rec := in.Recommendations.HelpWanted; curable(rec, in.Thresholds.HelpWanted) &&
		!slices.Contains(in.ExistingLabels, in.Labels.HelpWanted) {
		add = append(add, in.Labels.HelpWanted)
	}

	if rec := in.Recommendations.GoodFirstIssue; curable(rec, in.Thresholds.GoodFirstIssue) &&
		questionOrFeature &&
		in.Classification.Confidence >= in.Thresholds.GoodFirstIssue &&
		!slices.Contains(in.ExistingLabels, in.Labels.GoodFirstIssue) {
		add = append(add, in.Labels.GoodFirstIssue)
	}

	return CurationDecision{LabelsToAdd: add}
}

func curable(rec *analysis.LabelRecommendation, threshold float64) bool {
	return rec != nil && rec.ShouldApply && rec.Confidence >= threshold
}
