package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

// Grammar names the JSON shape that produced a normalized record.
type Grammar string

const (
	GrammarCanonical  Grammar = "canonical"
	GrammarStructured Grammar = "structured"
	GrammarLegacy     Grammar = "legacy"
	GrammarNone       Grammar = "none"
)

// Normalize parses raw model output into a canonical Analysis for the issue
// identified by current. It reports false when no grammar matches. It is
// deterministic, side-effect-free, and never panics for any input string.
func Normalize(raw string, current issue.Number) (*Analysis, bool) {
	a, _, ok := NormalizeDetailed(raw, current)
	return a, ok
}

// NormalizeDetailed is Normalize plus the grammar that matched, for telemetry.
//
// Grammar order is load-bearing: canonical wins over structured, structured
// wins over legacy. A structured payload carrying stray legacy-named fields
// has those fields silently ignored.
func NormalizeDetailed(raw string, current issue.Number) (*Analysis, Grammar, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, GrammarNone, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, GrammarNone, false
	}

	if a, ok := fromCanonical(m, current); ok {
		return a, GrammarCanonical, true
	}
	if a, ok := fromStructured(m, current); ok {
		return a, GrammarStructured, true
	}
	if a, ok := fromLegacy(m, current); ok {
		return a, GrammarLegacy, true
	}
	return nil, GrammarNone, false
}

// fromCanonical accepts a payload only when it already satisfies the
// canonical shape: exact field names, exact enum values, confidences in
// range, and no self-referencing original issue number.
func fromCanonical(m map[string]any, current issue.Number) (*Analysis, bool) {
	cls, ok := asMap(m["classification"])
	if !ok {
		return nil, false
	}
	typStr, ok := asString(cls["type"])
	if !ok {
		return nil, false
	}
	typ := ClassificationType(typStr)
	if typ != TypeBug && typ != TypeFeature && typ != TypeQuestion {
		return nil, false
	}
	clsConf, ok := asConfidence(cls["confidence"])
	if !ok {
		return nil, false
	}

	dup, ok := asMap(m["duplicateDetection"])
	if !ok {
		return nil, false
	}
	isDup, ok := asBool(dup["isDuplicate"])
	if !ok {
		return nil, false
	}
	score, ok := asConfidence(dup["similarityScore"])
	if !ok {
		return nil, false
	}
	hasRef, ok := asBool(dup["hasExplicitOriginalIssueReference"])
	if !ok {
		return nil, false
	}
	var orig *int
	if v, present := dup["originalIssueNumber"]; present {
		n, ok := asIssueRef(v)
		if !ok || n == current.Int() {
			return nil, false
		}
		orig = &n
	}

	sent, ok := asMap(m["sentiment"])
	if !ok {
		return nil, false
	}
	toneStr, ok := asString(sent["tone"])
	if !ok {
		return nil, false
	}
	tone := Tone(toneStr)
	if tone != TonePositive && tone != ToneNeutral && tone != ToneHostile {
		return nil, false
	}
	sentConf, ok := asConfidence(sent["confidence"])
	if !ok {
		return nil, false
	}

	a := &Analysis{
		Classification: Classification{
			Type:       typ,
			Confidence: clsConf,
			Reasoning:  optString(cls["reasoning"]),
		},
		DuplicateDetection: DuplicateDetection{
			IsDuplicate:                       isDup,
			OriginalIssueNumber:               orig,
			SimilarityScore:                   score,
			HasExplicitOriginalIssueReference: hasRef,
		},
		Sentiment: Sentiment{
			Tone:       tone,
			Confidence: sentConf,
			Reasoning:  optString(sent["reasoning"]),
		},
	}

	if v, present := m["labelRecommendations"]; present {
		recs, ok := canonicalLabelRecs(v)
		if !ok {
			return nil, false
		}
		a.LabelRecommendations = recs
	}
	if v, present := m["suggestedResponse"]; present {
		s, ok := asString(v)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		a.SuggestedResponse = s
	}

	return a, true
}

// fromStructured accepts any keyed record that carries a classification
// object, a sentiment object (under "sentiment" or "tone"), and at least one
// duplicate-signal field, reconciling aliased and misplaced fields into the
// canonical shape.
func fromStructured(m map[string]any, current issue.Number) (*Analysis, bool) {
	cls, ok := asMap(m["classification"])
	if !ok {
		return nil, false
	}
	sent, ok := asMap(m["sentiment"])
	if !ok {
		sent, ok = asMap(m["tone"])
	}
	if !ok {
		return nil, false
	}
	dup, dupOK := asMap(m["duplicateDetection"])
	if !dupOK {
		dup, dupOK = asMap(m["duplicate"])
	}
	if !dupOK && !hasAnyKey(m, "isDuplicate", "is_duplicate", "similarityScore", "similarity_score") {
		return nil, false
	}

	typ, ok := parseClassType(cls["type"])
	if !ok {
		return nil, false
	}
	clsConf, ok := asConfidence(cls["confidence"])
	if !ok {
		// root-level confidence fallback
		clsConf, ok = asConfidence(m["confidence"])
	}
	if !ok {
		clsConf = 0
	}

	isDup := firstBool(
		mapIndex(dup, "isDuplicate"), mapIndex(dup, "is_duplicate"),
		m["isDuplicate"], m["is_duplicate"],
	)

	// similarity fallback chain: duplicate object, then root, then
	// classification object, then the duplicate-dependent default.
	score, ok := asConfidence(mapIndex(dup, "similarityScore"))
	if !ok {
		score, ok = asConfidence(mapIndex(dup, "similarity_score"))
	}
	if !ok {
		score, ok = asConfidence(m["similarityScore"])
	}
	if !ok {
		score, ok = asConfidence(cls["similarityScore"])
	}
	if !ok {
		score = 0
		if isDup {
			score = 1
		}
	}

	orig, explicit := resolveOriginalIssue(dup, m)
	if b, ok := asBool(mapIndex(dup, "hasExplicitOriginalIssueReference")); ok {
		explicit = b
	}
	if orig != nil && *orig == current.Int() {
		orig = nil
	}

	tone, ok := parseTone(sent["tone"])
	if !ok {
		tone = ToneNeutral
	}
	sentConf, ok := asConfidence(sent["confidence"])
	if !ok {
		sentConf = 0
	}

	a := &Analysis{
		Classification: Classification{
			Type:       typ,
			Confidence: clsConf,
			Reasoning:  optString(cls["reasoning"]),
		},
		DuplicateDetection: DuplicateDetection{
			IsDuplicate:                       isDup,
			OriginalIssueNumber:               orig,
			SimilarityScore:                   score,
			HasExplicitOriginalIssueReference: explicit,
		},
		Sentiment: Sentiment{
			Tone:       tone,
			Confidence: sentConf,
			Reasoning:  optString(sent["reasoning"]),
		},
		LabelRecommendations: parseLabelRecs(m["label_recommendations"], m["labelRecommendations"]),
	}

	if s, ok := asString(m["suggestedResponse"]); ok && strings.TrimSpace(s) != "" {
		a.SuggestedResponse = s
	} else if s, ok := asString(m["suggested_response"]); ok && strings.TrimSpace(s) != "" {
		a.SuggestedResponse = s
	}

	return a, true
}

// fromLegacy accepts the oldest emitter shape: classification and tone as
// bare strings, duplicate data under duplicate_detection with snake_case
// keys. It qualifies only when tone is a string or a duplicate_detection
// object is present.
func fromLegacy(m map[string]any, current issue.Number) (*Analysis, bool) {
	toneStr, toneOK := asString(m["tone"])
	dd, ddOK := asMap(m["duplicate_detection"])
	if !toneOK && !ddOK {
		return nil, false
	}

	// The legacy emitter carried no confidences; a recognized bare string is
	// taken at full confidence, anything else degrades to a value that can
	// never clear a threshold.
	cls := Classification{Type: TypeQuestion, Confidence: 0}
	if typ, ok := parseClassType(m["classification"]); ok {
		cls = Classification{Type: typ, Confidence: 1}
	}
	sent := Sentiment{Tone: ToneNeutral, Confidence: 0}
	if toneOK {
		if tone, ok := parseTone(toneStr); ok {
			sent = Sentiment{Tone: tone, Confidence: 1}
		}
	}

	isDup := firstBool(mapIndex(dd, "is_duplicate"))

	var orig *int
	explicit := false
	if v, present := dd["original_issue_number"]; present {
		explicit = true
		if n, ok := asIssueRef(v); ok {
			orig = &n
		}
	}
	if orig == nil {
		if arr, ok := mapIndex(dd, "duplicate_of").([]any); ok {
			explicit = true
			for _, e := range arr {
				if n, ok := asIssueRef(e); ok {
					orig = &n
					break
				}
			}
		}
	}
	if orig != nil && *orig == current.Int() {
		orig = nil
	}

	score, ok := asConfidence(mapIndex(dd, "similarity_score"))
	if !ok {
		score = 0
		if isDup {
			score = 1
		}
	}

	a := &Analysis{
		Classification: cls,
		DuplicateDetection: DuplicateDetection{
			IsDuplicate:                       isDup,
			OriginalIssueNumber:               orig,
			SimilarityScore:                   score,
			HasExplicitOriginalIssueReference: explicit,
		},
		Sentiment: sent,
	}

	if s, ok := asString(m["suggested_response"]); ok && strings.TrimSpace(s) != "" {
		a.SuggestedResponse = s
	} else if s, ok := asString(m["suggestedResponse"]); ok && strings.TrimSpace(s) != "" {
		a.SuggestedResponse = s
	}

	return a, true
}

// originalIssueAliases is the fixed priority order for resolving the
// original issue number. Order matters: the first alias that parses wins,
// even when several are present.
var originalIssueAliases = [...]string{
	"originalIssueNumber",
	"original_issue_number",
	"originalIssue",
	"original_issue",
	"issue_number",
	"issueNumber",
}

// resolveOriginalIssue walks the alias chain, checking the duplicate object
// before the root for each name, then scans duplicate-of arrays. explicit is
// true when any alias or array was present, resolvable or not.
func resolveOriginalIssue(dup, root map[string]any) (orig *int, explicit bool) {
	for _, key := range originalIssueAliases {
		for _, m := range [2]map[string]any{dup, root} {
			v, present := lookup(m, key)
			if !present {
				continue
			}
			explicit = true
			if orig == nil {
				if n, ok := asIssueRef(v); ok {
					n := n
					orig = &n
				}
			}
		}
	}
	for _, key := range [2]string{"duplicateOf", "duplicate_of"} {
		for _, m := range [2]map[string]any{dup, root} {
			v, present := lookup(m, key)
			if !present {
				continue
			}
			arr, ok := v.([]any)
			if !ok {
				continue
			}
			explicit = true
			if orig != nil {
				continue
			}
			for _, e := range arr {
				if n, ok := asIssueRef(e); ok {
					n := n
					orig = &n
					break
				}
			}
		}
	}
	return orig, explicit
}

// canonicalLabelRecs parses the strict labelRecommendations object; any
// malformed entry fails the canonical guard as a whole.
func canonicalLabelRecs(v any) (*LabelRecommendations, bool) {
	mp, ok := asMap(v)
	if !ok {
		return nil, false
	}
	out := &LabelRecommendations{}
	for key, dst := range map[string]**LabelRecommendation{
		"documentation":  &out.Documentation,
		"helpWanted":     &out.HelpWanted,
		"goodFirstIssue": &out.GoodFirstIssue,
	} {
		e, present := mp[key]
		if !present {
			continue
		}
		rec := parseLabelRec(e)
		if rec == nil {
			return nil, false
		}
		*dst = rec
	}
	return out, true
}

// parseLabelRecs parses the lenient label-recommendation block: an object
// with aliased keys, or a fixed-position 3-element sequence mapped to
// documentation, helpWanted, goodFirstIssue in that order. A structurally
// invalid block becomes absent; an invalid entry is dropped alone.
func parseLabelRecs(candidates ...any) *LabelRecommendations {
	var v any
	for _, c := range candidates {
		if c != nil {
			v = c
			break
		}
	}
	if v == nil {
		return nil
	}

	if arr, ok := v.([]any); ok {
		if len(arr) != 3 {
			return nil
		}
		return &LabelRecommendations{
			Documentation:  parseLabelRec(arr[0]),
			HelpWanted:     parseLabelRec(arr[1]),
			GoodFirstIssue: parseLabelRec(arr[2]),
		}
	}

	mp, ok := asMap(v)
	if !ok {
		return nil
	}
	out := &LabelRecommendations{}
	out.Documentation = parseLabelRec(firstPresent(mp, "documentation"))
	out.HelpWanted = parseLabelRec(firstPresent(mp, "helpWanted", "help_wanted"))
	out.GoodFirstIssue = parseLabelRec(firstPresent(mp, "goodFirstIssue", "good_first_issue"))
	return out
}

// parseLabelRec rejects the entry as a whole when shouldApply is not a
// boolean or confidence is out of range.
func parseLabelRec(v any) *LabelRecommendation {
	mp, ok := asMap(v)
	if !ok {
		return nil
	}
	apply, ok := asBool(firstPresent(mp, "shouldApply", "should_apply"))
	if !ok {
		return nil
	}
	conf, ok := asConfidence(mp["confidence"])
	if !ok {
		return nil
	}
	return &LabelRecommendation{
		ShouldApply: apply,
		Confidence:  conf,
		Reasoning:   optString(mp["reasoning"]),
	}
}

// parseClassType matches classification types case-insensitively.
func parseClassType(v any) (ClassificationType, bool) {
	s, ok := asString(v)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bug":
		return TypeBug, true
	case "feature":
		return TypeFeature, true
	case "question":
		return TypeQuestion, true
	}
	return "", false
}

// parseTone matches tones case-insensitively; "aggressive" aliases to hostile.
func parseTone(v any) (Tone, bool) {
	s, ok := asString(v)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return TonePositive, true
	case "neutral":
		return ToneNeutral, true
	case "hostile", "aggressive":
		return ToneHostile, true
	}
	return "", false
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asConfidence accepts a finite number in [0,1]; anything else is treated as
// absent so the grammar-specific default applies.
func asConfidence(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

// asIssueRef parses a positive issue number from a JSON number or a string
// like "123" or "#123".
func asIssueRef(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		// Bounded to keep the int conversion from overflowing.
		if t > 0 && t <= math.MaxInt32 && t == math.Trunc(t) {
			return int(t), true
		}
	case string:
		s := strings.TrimPrefix(strings.TrimSpace(t), "#")
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func optString(v any) string {
	s, _ := v.(string)
	return s
}

func mapIndex(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

func lookup(m map[string]any, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func firstBool(candidates ...any) bool {
	for _, c := range candidates {
		if b, ok := asBool(c); ok {
			return b
		}
	}
	return false
}
