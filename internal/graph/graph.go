// Package graph builds and persists the heterogeneous entity/passage
// graph of spec.md section 4.3 and scores it with Personalized
// PageRank (section 4.8). Node representation and adjacency are backed
// by gonum.org/v1/gonum/graph/simple, the same graph-library surface
// the pack's other repos (qubicDB, CompCogNeuro-sims) pull gonum in
// for; the personalized power iteration itself is hand-written because
// gonum's graph/network.PageRank only supports uniform teleportation,
// not a caller-supplied reset vector.
package graph

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/graph/simple"
)

// Graph is the undirected, weighted entity/passage graph. Node names
// are the namespaced hash IDs of spec.md section 6
// ("<namespace>-<hex>"); sentences never appear here (they live only
// in the activation engine's adjacency maps).
type Graph struct {
	mu sync.RWMutex

	g        *simple.WeightedUndirectedGraph
	idByName map[string]int64
	nameByID map[int64]string
	nextID   int64

	passageIDs []int64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		g:        simple.NewWeightedUndirectedGraph(0, 0),
		idByName: make(map[string]int64),
		nameByID: make(map[int64]string),
	}
}

// nodeID returns the existing id for name, allocating and adding a
// graph node if this is the first time name is seen.
func (g *Graph) nodeID(name string) int64 {
	if id, ok := g.idByName[name]; ok {
		return id
	}
	id := g.nextID
	g.nextID++
	g.idByName[name] = id
	g.nameByID[id] = name
	g.g.AddNode(simple.Node(id))
	return id
}

// EnsurePassageNode registers name as a passage node (for vertex
// enumeration during PPR extraction) without requiring an edge yet —
// spec.md's invariant 2 only requires a vector row, not graph
// connectivity, but the retrieval path needs every passage's vertex id
// even if it ended up with no edges at all (e.g. an isolated passage).
func (g *Graph) EnsurePassageNode(name string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, existed := g.idByName[name]
	id := g.nodeID(name)
	if !existed {
		g.passageIDs = append(g.passageIDs, id)
	}
	return id
}

// AddEdge inserts (or overwrites) a single undirected edge a—b with
// weight w, skipping self-loops per spec.md invariant 4. Per spec.md
// section 4.3 point 1, each unordered pair must be inserted only once;
// callers are expected to aggregate before calling this.
func (g *Graph) AddEdge(a, b string, w float64) {
	if a == b {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	idA := g.nodeID(a)
	idB := g.nodeID(b)
	g.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(idA), T: simple.Node(idB), W: w})
}

// NodeName returns the name registered for a vertex id.
func (g *Graph) NodeName(id int64) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nameByID[id]
	return n, ok
}

// NodeID returns the vertex id for a node name, if it has been added.
func (g *Graph) NodeID(name string) (int64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.idByName[name]
	return id, ok
}

// PassageIDs returns the vertex ids registered as passages, in
// insertion order.
func (g *Graph) PassageIDs() []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]int64, len(g.passageIDs))
	copy(out, g.passageIDs)
	return out
}

// NumNodes reports the number of distinct vertices.
func (g *Graph) NumNodes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.idByName)
}

// WeightedNeighbors returns the neighbor ids and edge weights of id.
func (g *Graph) WeightedNeighbors(id int64) ([]int64, []float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	it := g.g.From(id)
	var ids []int64
	var weights []float64
	for it.Next() {
		n := it.Node()
		e := g.g.WeightedEdge(id, n.ID())
		ids = append(ids, n.ID())
		weights = append(weights, e.Weight())
	}
	return ids, weights
}

// Validate checks spec.md invariant 4 (no self-loops): returns an
// error naming the offending node if one slipped through.
func (g *Graph) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := g.g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if g.g.HasEdgeBetween(id, id) {
			return fmt.Errorf("graph: self-loop at node %q", g.nameByID[id])
		}
	}
	return nil
}
