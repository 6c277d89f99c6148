package graph

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"linearrag/internal/embedstore"
)

// Builder assembles the heterogeneous graph incrementally as passages
// are indexed (spec.md section 4.3).
type Builder struct {
	g *Graph
}

// NewBuilder wraps g (typically freshly constructed via New()).
func NewBuilder(g *Graph) *Builder { return &Builder{g: g} }

// AddPassage registers passageHash as a passage vertex and adds one
// entity↔passage edge per distinct entity in entities, weighted by
// normalized in-text occurrence count (spec.md section 4.3 point 1).
// Entities with zero occurrences (shouldn't happen if entities came
// from NER on this same text, but defensive per spec.md section 7
// "entity not in embedding store... skip silently") are omitted.
func (b *Builder) AddPassage(passageHash, passageText string, entities []string) {
	b.g.EnsurePassageNode(passageHash)

	lowerText := strings.ToLower(passageText)
	counts := make(map[string]int, len(entities))
	total := 0
	for _, e := range entities {
		lower := strings.ToLower(e)
		c := strings.Count(lowerText, lower)
		if c == 0 {
			continue
		}
		counts[lower] = c
		total += c
	}
	if total == 0 {
		return
	}
	for entity, c := range counts {
		entityHash := embedstore.HashFor("entity", entity)
		weight := float64(c) / float64(total)
		b.g.AddEdge(entityHash, passageHash, weight)
	}
}

// passagePrefix matches the "<integer>:" ordering key of spec.md
// section 3 ("Passage↔Passage edge of weight 1.0 between consecutive
// passages when texts begin with \"<integer>:\"").
var passagePrefix = regexp.MustCompile(`^(\d+):`)

// PassageRef is one passage's identity for adjacency linking.
type PassageRef struct {
	Hash string
	Text string
}

// AddSequentialAdjacency links passages whose text begins with an
// integer prefix, in increasing prefix order, with weight 1.0 between
// consecutive integers (spec.md section 3 and section 5's "inserted in
// increasing integer prefix order so that indexing is deterministic").
// Passages without the prefix do not participate.
func (b *Builder) AddSequentialAdjacency(refs []PassageRef) {
	type ordered struct {
		n    int
		hash string
	}
	var numbered []ordered
	for _, r := range refs {
		m := passagePrefix.FindStringSubmatch(r.Text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		numbered = append(numbered, ordered{n: n, hash: r.Hash})
		b.g.EnsurePassageNode(r.Hash)
	}
	sort.Slice(numbered, func(i, j int) bool { return numbered[i].n < numbered[j].n })
	for i := 1; i < len(numbered); i++ {
		if numbered[i].n == numbered[i-1].n+1 {
			b.g.AddEdge(numbered[i-1].hash, numbered[i].hash, 1.0)
		}
	}
}
