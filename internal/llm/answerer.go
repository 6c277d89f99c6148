// Package llm provides the single-shot answer-generation seam (spec.md
// section 6's "external LM step") and the answer-parsing contract the
// grader applies to whatever the LM returns. The core only emits
// prompts and parses answers; it never trains or fine-tunes a model.
package llm

import (
	"context"
	"regexp"
	"strings"
)

// Invalid is the sentinel the grader emits when an answer cannot be
// parsed out of raw model output, or when the call itself failed
// (spec.md section 7: "LM call failure/timeout: return sentinel;
// grader labels as INVALID").
const Invalid = "INVALID"

// DatasetKind selects which answer-parsing rule applies to a question.
type DatasetKind int

const (
	// MCQ expects exactly one of A|B|C|D.
	MCQ DatasetKind = iota
	// YesNo expects Yes|No.
	YesNo
	// YesNoMaybe expects Yes|No|Maybe.
	YesNoMaybe
)

var (
	mcqPattern        = regexp.MustCompile(`(?i)\b([A-D])\b`)
	yesNoPattern      = regexp.MustCompile(`(?i)\b(Yes|No)\b`)
	yesNoMaybePattern = regexp.MustCompile(`(?i)\b(Yes|No|Maybe)\b`)
)

// ParseAnswer extracts the first matching token from raw per the rule
// named by kind, or returns Invalid if none is found (spec.md section
// 6's answer-parsing contract).
func ParseAnswer(kind DatasetKind, raw string) string {
	var pattern *regexp.Regexp
	switch kind {
	case MCQ:
		pattern = mcqPattern
	case YesNo:
		pattern = yesNoPattern
	case YesNoMaybe:
		pattern = yesNoMaybePattern
	default:
		return Invalid
	}
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return Invalid
	}
	if kind == MCQ {
		return strings.ToUpper(m[1])
	}
	return capitalize(m[1])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Answerer is the narrow single-shot chat contract every backend
// implements: one prompt in, one completion out. Unlike the teacher's
// streaming, tool-calling llm.Provider, question answering here never
// streams and never calls tools.
type Answerer interface {
	Answer(ctx context.Context, systemPrompt, question string) (string, error)
}
