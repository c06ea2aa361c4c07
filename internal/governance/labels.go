// Package governance is the pure decision core of the triage bot. It maps a
// normalized analysis record, the current issue state, and configured
// thresholds into an ordered, idempotent action plan, and applies that plan
// through an injected gateway.
package governance

import "github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"

// Labels names the tracker labels the policy engine manages.
type Labels struct {
	KindBug         string
	KindFeature     string
	KindQuestion    string
	Duplicate       string
	NeedsMoreInfo   string
	NeedsMonitoring string
	Documentation   string
	HelpWanted      string
	GoodFirstIssue  string
}

// DefaultLabels returns the label set used unless overridden by config.
func DefaultLabels() Labels {
	return Labels{
		KindBug:         "kind/bug",
		KindFeature:     "kind/feature",
		KindQuestion:    "kind/question",
		Duplicate:       "duplicate",
		NeedsMoreInfo:   "needs-more-info",
		NeedsMonitoring: "needs-monitoring",
		Documentation:   "documentation",
		HelpWanted:      "help wanted",
		GoodFirstIssue:  "good first issue",
	}
}

// Kind returns the mutually exclusive classification labels.
func (l Labels) Kind() []string {
	return []string{l.KindBug, l.KindFeature, l.KindQuestion}
}

// ForType maps a classification type to its kind label.
func (l Labels) ForType(t analysis.ClassificationType) string {
	switch t {
	case analysis.TypeBug:
		return l.KindBug
	case analysis.TypeFeature:
		return l.KindFeature
	case analysis.TypeQuestion:
		return l.KindQuestion
	}
	return ""
}

// Thresholds gates how confident the model must be before a policy acts.
type Thresholds struct {
	Classification float64
	Tone           float64
	Similarity     float64
	Documentation  float64
	HelpWanted     float64
	GoodFirstIssue float64
}

// DefaultThresholds returns the gates used unless overridden by config.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Classification: 0.8,
		Tone:           0.8,
		Similarity:     0.85,
		Documentation:  0.7,
		HelpWanted:     0.7,
		GoodFirstIssue: 0.8,
	}
}

// IssueAction is the webhook action verb a triage request was born from.
type IssueAction string

const (
	ActionOpened IssueAction = "opened"
	ActionEdited IssueAction = "edited"
)

// SupportedAction reports whether the verb is one the bot triages. Any other
// verb causes an immediate skip before validation or AI work.
func SupportedAction(a string) bool {
	return IssueAction(a) == ActionOpened || IssueAction(a) == ActionEdited
}
