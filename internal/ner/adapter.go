// Package ner defines the contract for the biomedical named-entity
// recognizer named out of scope by spec.md section 1: the core only
// consumes passage→entity-set and sentence→entity-set maps. Adapter is
// the seam; SimpleAdapter is a dictionary/regex default so the module
// is runnable without a real NER service.
package ner

import (
	"context"
	"regexp"
	"strings"
)

// Sentence is one sentence extracted from a passage, together with the
// entities recognized in it.
type Sentence struct {
	Text     string
	Entities []string
}

// Adapter is the NER seam. ExtractPassage returns the passage's own
// entity set and its constituent sentences (each with its own,
// possibly different, entity set — a sentence usually mentions a
// subset of the passage's entities).
type Adapter interface {
	ExtractPassage(ctx context.Context, text string) (entities []string, sentences []Sentence, err error)
}

// minEntityLen is spec.md section 4.2's "entities whose lowercased
// form is shorter than 3 characters are filtered out by convention of
// the provider".
const minEntityLen = 3

var sentenceBoundary = regexp.MustCompile(`(?s)([^.!?]+[.!?]+|[^.!?]+$)`)

func splitSentences(text string) []string {
	parts := sentenceBoundary.FindAllString(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// filterShort drops entities under minEntityLen and lowercases the
// rest, deduplicating.
func filterShort(entities []string) []string {
	seen := make(map[string]struct{}, len(entities))
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		lower := strings.ToLower(strings.TrimSpace(e))
		if len(lower) < minEntityLen {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, lower)
	}
	return out
}
