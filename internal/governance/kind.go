package governance

import (
	"slices"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
)

// KindDecision is the classification-label outcome for one triage request.
type KindDecision struct {
	LabelsToAdd             []string
	LabelsToRemove          []string
	SuppressedByHostileTone bool
}

// KindInput carries everything the kind policy reads.
type KindInput struct {
	TargetLabel              string
	ClassificationConfidence float64
	ClassificationThreshold  float64
	Tone                     analysis.Tone
	ToneConfidence           float64
	ToneThreshold            float64
	ExistingLabels           []string
	KindLabels               []string
}

// DecideKind applies the mutually exclusive kind-label policy. A hostile tone
// at or above its threshold suppresses all kind labels regardless of
// classification confidence.
func DecideKind(in KindInput) KindDecision {
	if in.Tone == analysis.ToneHostile && in.ToneConfidence >= in.ToneThreshold {
		var remove []string
		for _, kind := range in.KindLabels {
			if slices.Contains(in.ExistingLabels, kind) {
				remove = append(remove, kind)
			}
		}
		return KindDecision{LabelsToRemove: remove, SuppressedByHostileTone: true}
	}

	if in.ClassificationConfidence < in.ClassificationThreshold {
		return KindDecision{}
	}

	// At most one kind label at a time: apply the target, shed the rest.
	var remove []string
	for _, kind := range in.KindLabels {
		if kind != in.TargetLabel && slices.Contains(in.ExistingLabels, kind) {
			remove = append(remove, kind)
		}
	}
	return KindDecision{
		LabelsToAdd:    []string{in.TargetLabel},
		LabelsToRemove: remove,
	}
}
