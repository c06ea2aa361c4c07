package governance

import (
	"slices"
	"testing"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
)

func TestDecideToneMonitor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tone analysis.Tone
		want []string
	}{
		{analysis.ToneHostile, []string{"needs-monitoring"}},
		{analysis.ToneNeutral, nil},
		{analysis.TonePositive, nil},
	}

	for _, tt := range tests {
		d := DecideToneMonitor(tt.tone, "needs-monitoring")
		if !slices.Equal(d.LabelsToAdd, tt.want) {
			t.Errorf("DecideToneMonitor(%q) = %v, want %v", tt.tone, d.LabelsToAdd, tt.want)
		}
	}
}
