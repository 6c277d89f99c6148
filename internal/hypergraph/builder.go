package hypergraph

import (
	"strings"
)

// Builder constructs hyperedges from sentence→entity co-occurrence
// (spec.md section 4.4), mirroring CooccurrenceHyperedgeBuilder.
type Builder struct {
	MinEntities       int
	MaxEntities       int
	MinSentenceLength int
	MaxSentenceLength int
}

// NewBuilder returns a Builder with the given entity-count bounds, used
// as passed (spec.md's defaults are min_entities=2, max_entities=10),
// and sentence-length bounds of [20, 500] characters.
func NewBuilder(minEntities, maxEntities int) *Builder {
	return &Builder{
		MinEntities:       minEntities,
		MaxEntities:       maxEntities,
		MinSentenceLength: 20,
		MaxSentenceLength: 500,
	}
}

func (b *Builder) isValidSentence(sentence string, entities []string) bool {
	if sentence == "" || len(entities) == 0 {
		return false
	}
	l := len(sentence)
	if l < b.MinSentenceLength || l > b.MaxSentenceLength {
		return false
	}
	n := len(entities)
	return n >= b.MinEntities && n <= b.MaxEntities
}

// BuildFromNERResults mirrors build_from_ner_results: accepts
// sentences in [min_sentence_length, max_sentence_length] carrying
// between MinEntities and MaxEntities distinct lowercased entities;
// base score = entity_count / max_entity_count_seen among valid
// sentences.
func (b *Builder) BuildFromNERResults(sentenceToEntities map[string][]string, entityTypes map[string]string) []Hyperedge {
	if len(sentenceToEntities) == 0 {
		return nil
	}

	maxEntityCount := 1
	for sentence, entities := range sentenceToEntities {
		if b.isValidSentence(sentence, entities) && len(entities) > maxEntityCount {
			maxEntityCount = len(entities)
		}
	}

	var out []Hyperedge
	for sentence, entities := range sentenceToEntities {
		if !b.isValidSentence(sentence, entities) {
			continue
		}
		entityList := dedupeLower(entities)
		if len(entityList) < b.MinEntities {
			continue
		}
		baseScore := float64(len(entityList)) / float64(maxEntityCount)

		heTypes := make(map[string]string, len(entityList))
		for _, e := range entityList {
			if t, ok := entityTypes[e]; ok {
				heTypes[e] = t
			} else {
				heTypes[e] = "UNKNOWN"
			}
		}

		out = append(out, NewHyperedge(strings.TrimSpace(sentence), entityList, baseScore, heTypes))
	}
	return out
}

// PassageRef identifies a passage for the substring-membership pass.
type PassageRef struct {
	Hash string
	Text string
}

// BuildFromPassageSentences mirrors build_from_passage_sentences: runs
// BuildFromNERResults, then determines passage_to_hyperedge_ids by
// substring test (a hyperedge belongs to a passage iff its source
// sentence is a substring of the passage text) — the alternative entry
// point named in SPEC_FULL.md's supplemented feature 3.
func (b *Builder) BuildFromPassageSentences(sentenceToEntities map[string][]string, passages []PassageRef, entityTypes map[string]string) ([]Hyperedge, map[string][]string) {
	hyperedges := b.BuildFromNERResults(sentenceToEntities, entityTypes)

	passageToHyperedgeIDs := make(map[string][]string)
	for _, p := range passages {
		var matches []string
		for _, he := range hyperedges {
			if strings.Contains(p.Text, he.Text) {
				matches = append(matches, he.HashID)
			}
		}
		if len(matches) > 0 {
			passageToHyperedgeIDs[p.Hash] = matches
		}
	}
	return hyperedges, passageToHyperedgeIDs
}

func dedupeLower(entities []string) []string {
	seen := make(map[string]struct{}, len(entities))
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
