package feedback

import (
	"encoding/json"
	"strings"
)

// Metrics scores one answer.
type Metrics struct {
	Clarity    float64 `json:"clarity"`
	Relevance  float64 `json:"relevance"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the per-answer breakdown.
type Analysis struct {
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	Improvements []string `json:"improvements"`
}

// GlobalFeedback is the structured form of the summary feedback. Older
// summaries carry plain text instead.
type GlobalFeedback struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Analysis   string   `json:"analysis"`
}

// Decode parses a JSON document stored as a string. Absent, empty, null or
// malformed input yields the zero value and false.
func Decode[T any](s *string) (T, bool) {
	var zero T
	if s == nil || strings.TrimSpace(*s) == "" {
		return zero, false
	}
	var out *T
	if err := json.Unmarshal([]byte(*s), &out); err != nil || out == nil {
		return zero, false
	}
	return *out, true
}

func DecodeMetrics(s *string) (Metrics, bool) { return Decode[Metrics](s) }

func DecodeAnalysis(s *string) (Analysis, bool) { return Decode[Analysis](s) }

// DecodeGlobalFeedback returns false for plain-text feedback, which callers
// show verbatim.
func DecodeGlobalFeedback(s string) (GlobalFeedback, bool) {
	return Decode[GlobalFeedback](&s)
}
