package governance

import (
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

// Snapshot is the caller-owned view of the issue under triage. The policy
// layer never fetches tracker state itself.
type Snapshot struct {
	Repo   issue.Repo
	Number issue.Number
	Title  string
	Body   string
	Action IssueAction
	Labels []string
	// RecentIssues feeds duplicate fallback resolution, newest first.
	RecentIssues []RecentIssue
	// RepositoryDoc is the repository's long-form text (e.g. its README),
	// used for grounding detection on suggested responses.
	RepositoryDoc string
}

// Plan is the full set of governance decisions for one triage request.
// It is built once, never mutated, and consumed exactly once.
type Plan struct {
	Kind      KindDecision
	Duplicate DuplicateDecision
	Tone      ToneDecision
	Question  QuestionDecision
	Curation  CurationDecision
	// Grounded reports that an AI-suggested response reuses repository
	// vocabulary; exported for metrics only.
	Grounded bool
}

// PlanBuilder composes the five policies with fixed configuration.
type PlanBuilder struct {
	labels     Labels
	thresholds Thresholds
	keywords   []string
	checklist  string
}

// NewPlanBuilder creates a builder. Empty keywords or checklist fall back to
// the package defaults.
func NewPlanBuilder(labels Labels, thresholds Thresholds, keywords []string, checklist string) *PlanBuilder {
	if len(keywords) == 0 {
		keywords = DefaultSignalKeywords
	}
	if checklist == "" {
		checklist = DefaultFallbackChecklist
	}
	return &PlanBuilder{
		labels:     labels,
		thresholds: thresholds,
		keywords:   keywords,
		checklist:  checklist,
	}
}

// Build composes the policy decisions for one issue snapshot and its
// normalized analysis. It is pure: no I/O, no mutation of its inputs.
func (b *PlanBuilder) Build(snap *Snapshot, a *analysis.Analysis) *Plan {
	kind := DecideKind(KindInput{
		TargetLabel:              b.labels.ForType(a.Classification.Type),
		ClassificationConfidence: a.Classification.Confidence,
		ClassificationThreshold:  b.thresholds.Classification,
		Tone:                     a.Sentiment.Tone,
		ToneConfidence:           a.Sentiment.Confidence,
		ToneThreshold:            b.thresholds.Tone,
		ExistingLabels:           snap.Labels,
		KindLabels:               b.labels.Kind(),
	})

	dup := DecideDuplicate(DuplicateInput{
		IsDuplicate:          a.DuplicateDetection.IsDuplicate,
		OriginalIssueNumber:  a.DuplicateDetection.OriginalIssueNumber,
		SimilarityScore:      a.DuplicateDetection.SimilarityScore,
		HasExplicitReference: a.DuplicateDetection.HasExplicitOriginalIssueReference,
		CurrentIssue:         snap.Number,
		FallbackOriginal:     fallbackOriginal(snap),
		SimilarityThreshold:  b.thresholds.Similarity,
		Label:                b.labels.Duplicate,
	})

	tone := DecideToneMonitor(a.Sentiment.Tone, b.labels.NeedsMonitoring)

	question := DecideQuestion(QuestionInput{
		Action:                   snap.Action,
		Tone:                     a.Sentiment.Tone,
		ClassificationType:       a.Classification.Type,
		ClassificationConfidence: a.Classification.Confidence,
		ClassificationThreshold:  b.thresholds.Classification,
		LooksLikeQuestion:        LooksLikeQuestion(snap.Title, snap.Body, b.keywords),
		SuggestedResponse:        a.SuggestedResponse,
		FallbackChecklist:        b.checklist,
	})

	curation := DecideCuration(CurationInput{
		Recommendations: a.LabelRecommendations,
		Classification:  a.Classification,
		Tone:            a.Sentiment.Tone,
		LikelyDuplicate: dup.ShouldApply,
		ExistingLabels:  snap.Labels,
		Labels:          b.labels,
		Thresholds:      b.thresholds,
	})

	grounded := question.ShouldCreateComment &&
		question.ResponseSource == SourceAISuggested &&
		UsesRepositoryContext(question.ResponseBody, snap.RepositoryDoc)

	return &Plan{
		Kind:      kind,
		Duplicate: dup,
		Tone:      tone,
		Question:  question,
		Curation:  curation,
		Grounded:  grounded,
	}
}

// fallbackOriginal picks the most recent other open issue from the snapshot.
func fallbackOriginal(snap *Snapshot) *int {
	for _, ri := range snap.RecentIssues {
		if ri.State == "open" && ri.Number != snap.Number {
			n := ri.Number.Int()
			return &n
		}
	}
	return nil
}
