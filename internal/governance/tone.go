package governance

import "github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"

// ToneDecision lists the tone-monitor labels to add.
type ToneDecision struct {
	LabelsToAdd []string
}

// DecideToneMonitor adds the monitoring label whenever the tone is hostile,
// independent of confidence. This is distinct from the confidence-gated
// kind-suppression rule.
func DecideToneMonitor(tone analysis.Tone, monitorLabel string) ToneDecision {
	if tone != analysis.ToneHostile {
		return ToneDecision{}
	}
	return ToneDecision{LabelsToAdd: []string{monitorLabel}}
}
