package governance

import (
	"strings"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
)

// ResponseSource identifies where a question-response comment came from.
type ResponseSource string

const (
	SourceAISuggested ResponseSource = "ai_suggested_response"
	SourceChecklist   ResponseSource = "fallback_checklist"
)

// CommentPrefix is the marker prepended to published response comments.
// HasIssueCommentWithPrefix checks for it so redelivered webhooks never
// publish the same response twice.
func (s ResponseSource) CommentPrefix() string {
	if s == SourceChecklist {
		return "<!-- sentinel:checklist -->"
	}
	return "<!-- sentinel:ai-response -->"
}

// DefaultSignalKeywords are the question heuristics checked against
// title + body, case-insensitive.
var DefaultSignalKeywords = []string{
	"how do i", "how to", "how can i", "is it possible", "what is",
	"can someone", "any idea", "help me", "does anyone",
}

// DefaultFallbackChecklist is the fixed, non-AI response used when the model
// suggested nothing usable but the issue reads like a question.
const DefaultFallbackChecklist = `Thanks for the question! While a maintainer gets to it, please check:

- [ ] The README and documentation for existing answers
- [ ] Closed issues that may cover the same topic
- [ ] That your report includes versions, steps to reproduce, and expected behavior`

// QuestionDecision is the question-response outcome. ResponseBody carries the
// raw text; the execution context prepends the source prefix on publish.
type QuestionDecision struct {
	ShouldCreateComment bool
	ResponseSource      ResponseSource
	ResponseBody        string
}

// QuestionInput carries everything the question policy reads.
type QuestionInput struct {
	Action                   IssueAction
	Tone                     analysis.Tone
	ClassificationType       analysis.ClassificationType
	ClassificationConfidence float64
	ClassificationThreshold  float64
	LooksLikeQuestion        bool
	SuggestedResponse        string
	FallbackChecklist        string
}

// DecideQuestion applies the question-response policy. The model-suggested
// response wins when non-empty; the fallback checklist is used only when the
// question heuristic fired.
func DecideQuestion(in QuestionInput) QuestionDecision {
	if in.Action != ActionOpened || in.Tone == analysis.ToneHostile {
		return QuestionDecision{}
	}

	classifiedQuestion := in.ClassificationType == analysis.TypeQuestion &&
		in.ClassificationConfidence >= in.ClassificationThreshold
	if !classifiedQuestion && !in.LooksLikeQuestion {
		return QuestionDecision{}
	}

	if body := strings.TrimSpace(in.SuggestedResponse); body != "" {
		return QuestionDecision{
			ShouldCreateComment: true,
			ResponseSource:      SourceAISuggested,
			ResponseBody:        body,
		}
	}
	if in.LooksLikeQuestion && strings.TrimSpace(in.FallbackChecklist) != "" {
		return QuestionDecision{
			ShouldCreateComment: true,
			ResponseSource:      SourceChecklist,
			ResponseBody:        in.FallbackChecklist,
		}
	}
	return QuestionDecision{}
}

// LooksLikeQuestion reports whether title + body contains a question mark
// (ASCII or Spanish inverted) or any signal keyword, case-insensitive.
func LooksLikeQuestion(title, body string, keywords []string) bool {
	text := title + " " + body
	if strings.ContainsAny(text, "?¿") {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// groundingStopwords are common long words excluded from grounding tokens.
var groundingStopwords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "because": {}, "before": {},
	"being": {}, "between": {}, "could": {}, "every": {}, "issue": {},
	"other": {}, "please": {}, "should": {}, "their": {}, "there": {},
	"these": {}, "thing": {}, "think": {}, "those": {}, "through": {},
	"under": {}, "using": {}, "where": {}, "which": {}, "while": {},
	"would": {}, "write": {}, "your": {}, "yours": {},
}

// UsesRepositoryContext reports whether a suggested response demonstrably
// reuses repository vocabulary: at least two distinct meaningful tokens from
// the repository's long-form text also appear in the response.
func UsesRepositoryContext(response, repositoryText string) bool {
	repoTokens := meaningfulTokens(repositoryText)
	if len(repoTokens) == 0 {
		return false
	}
	respTokens := meaningfulTokens(response)

	matches := 0
	for tok := range respTokens {
		if _, ok := repoTokens[tok]; ok {
			matches++
			if matches >= 2 {
				return true
			}
		}
	}
	return false
}

// meaningfulTokens returns lower-cased alphanumeric runs of length >= 5,
// minus the stop-word list.
func meaningfulTokens(text string) map[string]struct{} {
	out := make(map[string]struct{})
	var b strings.Builder
	flush := func() {
		if b.Len() >= 5 {
			tok := b.String()
			if _, stop := groundingStopwords[tok]; !stop {
				out[tok] = struct{}{}
			}
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}
