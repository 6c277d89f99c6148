package graph

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// GraphML persistence (spec.md section 6: "LinearRAG.graphml — GraphML,
// vertex attrs name, content; edge attr weight"). No library in the
// retrieved corpus wraps GraphML, so this is encoding/xml directly —
// the one genuinely stdlib-only piece of this package, recorded in
// DESIGN.md.

type gmlKey struct {
	XMLName  xml.Name `xml:"key"`
	ID       string   `xml:"id,attr"`
	For      string   `xml:"for,attr"`
	AttrName string   `xml:"attr.name,attr"`
	AttrType string   `xml:"attr.type,attr"`
}

type gmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type gmlNode struct {
	ID   string    `xml:"id,attr"`
	Data []gmlData `xml:"data"`
}

type gmlEdge struct {
	Source string    `xml:"source,attr"`
	Target string    `xml:"target,attr"`
	Data   []gmlData `xml:"data"`
}

type gmlGraph struct {
	EdgeDefault string    `xml:"edgedefault,attr"`
	Nodes       []gmlNode `xml:"node"`
	Edges       []gmlEdge `xml:"edge"`
}

type gmlDocument struct {
	XMLName xml.Name `xml:"graphml"`
	Keys    []gmlKey `xml:"key"`
	Graph   gmlGraph `xml:"graph"`
}

const (
	keyName    = "d0"
	keyContent = "d1"
	keyWeight  = "d2"
)

// Save writes g to path as GraphML. Every vertex is written with a
// "name" attribute equal to its node name (spec.md's hash-id node
// name) and a "content" attribute (empty for this port, since the
// source text lives in the embedding stores, not the graph — content
// is kept for schema parity with tools that expect the attribute).
func (g *Graph) Save(path string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	doc := gmlDocument{
		Keys: []gmlKey{
			{ID: keyName, For: "node", AttrName: "name", AttrType: "string"},
			{ID: keyContent, For: "node", AttrName: "content", AttrType: "string"},
			{ID: keyWeight, For: "edge", AttrName: "weight", AttrType: "double"},
		},
		Graph: gmlGraph{EdgeDefault: "undirected"},
	}

	ids := make([]int64, 0, len(g.nameByID))
	for id := range g.nameByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		doc.Graph.Nodes = append(doc.Graph.Nodes, gmlNode{
			ID: nodeXMLID(id),
			Data: []gmlData{
				{Key: keyName, Value: g.nameByID[id]},
				{Key: keyContent, Value: ""},
			},
		})
	}

	type edgePair struct {
		a, b int64
		w    float64
	}
	var pairs []edgePair
	seenPair := make(map[[2]int64]bool)
	nodes := g.g.Nodes()
	for nodes.Next() {
		from := nodes.Node().ID()
		it := g.g.From(from)
		for it.Next() {
			to := it.Node().ID()
			a, b := from, to
			if a > b {
				a, b = b, a
			}
			key := [2]int64{a, b}
			if seenPair[key] {
				continue
			}
			seenPair[key] = true
			pairs = append(pairs, edgePair{a: a, b: b, w: g.g.WeightedEdge(from, to).Weight()})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
	for _, p := range pairs {
		doc.Graph.Edges = append(doc.Graph.Edges, gmlEdge{
			Source: nodeXMLID(p.a),
			Target: nodeXMLID(p.b),
			Data:   []gmlData{{Key: keyWeight, Value: strconv.FormatFloat(p.w, 'g', -1, 64)}},
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("graph: mkdir: %w", err)
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("graph: marshal graphml: %w", err)
	}
	out := append([]byte(xml.Header), data...)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("graph: write graphml: %w", err)
	}
	return os.Rename(tmp, path)
}

func nodeXMLID(id int64) string { return "n" + strconv.FormatInt(id, 10) }

// Load reads a GraphML file written by Save into a fresh Graph. A
// missing file is not an error — callers get back a newly-constructed
// empty Graph, matching spec.md section 7's "missing input file...
// treat as empty, continue building".
func Load(path string) (*Graph, error) {
	g := New()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return g, nil
	}
	if err != nil {
		return g, nil //nolint:nilerr // corrupt/missing persisted graph starts empty, per spec.md section 7
	}

	var doc gmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return New(), nil
	}

	xmlIDToName := make(map[string]string, len(doc.Graph.Nodes))
	for _, n := range doc.Graph.Nodes {
		name := n.ID
		for _, d := range n.Data {
			if d.Key == keyName {
				name = d.Value
			}
		}
		xmlIDToName[n.ID] = name
		g.EnsurePassageNodeIfPassage(name)
	}
	for _, e := range doc.Graph.Edges {
		aName, okA := xmlIDToName[e.Source]
		bName, okB := xmlIDToName[e.Target]
		if !okA || !okB {
			continue
		}
		weight := 1.0
		for _, d := range e.Data {
			if d.Key == keyWeight {
				if w, err := strconv.ParseFloat(d.Value, 64); err == nil {
					weight = w
				}
			}
		}
		g.AddEdge(aName, bName, weight)
	}
	return g, nil
}

// EnsurePassageNodeIfPassage registers name as a passage vertex when it
// carries the "passage-" namespace prefix, used while reloading a
// persisted graph so PassageIDs() is correctly repopulated.
func (g *Graph) EnsurePassageNodeIfPassage(name string) {
	if len(name) >= len("passage-") && name[:len("passage-")] == "passage-" {
		g.EnsurePassageNode(name)
		return
	}
	g.mu.Lock()
	g.nodeID(name)
	g.mu.Unlock()
}
