// Package analysis turns raw model output into a canonical, validated
// analysis record. The model is not trusted: several incompatible JSON
// shapes are reconciled by ordered grammar fallback in the normalizer.
package analysis

// ClassificationType is the issue kind the model assigned.
type ClassificationType string

const (
	TypeBug      ClassificationType = "bug"
	TypeFeature  ClassificationType = "feature"
	TypeQuestion ClassificationType = "question"
)

// Tone is the sentiment the model read from the issue text.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneHostile  Tone = "hostile"
)

// Classification is the kind decision with its confidence.
type Classification struct {
	Type       ClassificationType `json:"type"`
	Confidence float64            `json:"confidence"`
	Reasoning  string             `json:"reasoning,omitempty"`
}

// DuplicateDetection is the model's duplicate signal.
//
// OriginalIssueNumber, when set, never equals the issue under analysis;
// the normalizer clears self-references.
type DuplicateDetection struct {
	IsDuplicate                       bool    `json:"isDuplicate"`
	OriginalIssueNumber               *int    `json:"originalIssueNumber,omitempty"`
	SimilarityScore                   float64 `json:"similarityScore"`
	HasExplicitOriginalIssueReference bool    `json:"hasExplicitOriginalIssueReference"`
}

// Sentiment is the tone decision with its confidence.
type Sentiment struct {
	Tone       Tone    `json:"tone"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// LabelRecommendation is one curation suggestion.
type LabelRecommendation struct {
	ShouldApply bool    `json:"shouldApply"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// LabelRecommendations holds the three curation suggestions the model may
// emit. A nil entry means the model gave no usable recommendation for it.
type LabelRecommendations struct {
	Documentation  *LabelRecommendation `json:"documentation,omitempty"`
	HelpWanted     *LabelRecommendation `json:"helpWanted,omitempty"`
	GoodFirstIssue *LabelRecommendation `json:"goodFirstIssue,omitempty"`
}

// Analysis is the canonical record produced by normalization. It is built
// once per triage request and immutable thereafter.
type Analysis struct {
	Classification       Classification        `json:"classification"`
	DuplicateDetection   DuplicateDetection    `json:"duplicateDetection"`
	Sentiment            Sentiment             `json:"sentiment"`
	LabelRecommendations *LabelRecommendations `json:"labelRecommendations,omitempty"`
	SuggestedResponse    string                `json:"suggestedResponse,omitempty"`
}
