package graph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/pkggraph/pkg/dag"
)

// Node kinds.
const (
	KindExternal   = "external"   // Known package that was not expanded (beyond the depth limit)
	KindUnresolved = "unresolved" // Name missing from every index
)

// =============================================================================
// Graph - Dependency Graph Serialization
// =============================================================================

// Graph is the node-link serialization of a [dag.Graph].
//
// Expanded packages come first, in expansion order, followed by the names
// they reference that were never expanded. Edges keep each package's
// dependency order, so [ToDAG] rebuilds an identical graph.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is a package in a serialized graph.
type Node struct {
	ID          string `json:"id" bson:"id"`
	Version     string `json:"version,omitempty" bson:"version,omitempty"`
	Depth       int    `json:"depth" bson:"depth"`                               // Expansion depth, or first-seen depth for leaves
	Kind        string `json:"kind,omitempty" bson:"kind,omitempty"`             // "", "external" or "unresolved"
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Expanded reports whether the node was expanded during resolution.
func (n Node) Expanded() bool { return n.Kind == "" }

// Edge represents a directed edge from a package to one of its dependencies.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// =============================================================================
// dag.Graph ↔ Graph Conversion
// =============================================================================

// FromDAG converts a graph to its serialization format. Names that are not
// keys become [KindExternal] nodes; callers that know the index mark the
// missing ones [KindUnresolved] with [Graph.MarkUnresolved].
func FromDAG(g *dag.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.Len()),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}

	leafDepth := make(map[string]int)
	for _, id := range g.Keys() {
		n, _ := g.Node(id)
		out.Nodes = append(out.Nodes, Node{ID: n.ID, Version: n.Version, Depth: n.Depth})
		for _, dep := range n.Deps {
			out.Edges = append(out.Edges, Edge{From: n.ID, To: dep})
			if _, seen := leafDepth[dep]; !seen && !g.Has(dep) {
				leafDepth[dep] = n.Depth + 1
			}
		}
	}
	for _, name := range g.Frontier() {
		out.Nodes = append(out.Nodes, Node{ID: name, Depth: leafDepth[name], Kind: KindExternal})
	}
	return out
}

// ToDAG rebuilds a graph from its serialization. Only expanded nodes become
// keys; edges from any other node are rejected.
func ToDAG(gj Graph) (*dag.Graph, error) {
	edges := make(map[string][]string)
	for _, e := range gj.Edges {
		edges[e.From] = append(edges[e.From], e.To)
	}

	g := dag.New()
	for _, n := range gj.Nodes {
		if !n.Expanded() {
			continue
		}
		if err := g.AddNode(dag.Node{ID: n.ID, Version: n.Version, Depth: n.Depth, Deps: edges[n.ID]}); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for from := range edges {
		if !g.Has(from) {
			return nil, fmt.Errorf("edge from %s: not an expanded node", from)
		}
	}
	return g, nil
}

// MarkUnresolved sets [KindUnresolved] on every non-expanded node for which
// known returns false, and returns their names in node order.
func (g *Graph) MarkUnresolved(known func(string) bool) []string {
	var out []string
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Expanded() || known(n.ID) {
			continue
		}
		n.Kind = KindUnresolved
		out = append(out, n.ID)
	}
	return out
}

// Describe fills node descriptions from describe.
func (g *Graph) Describe(describe func(string) string) {
	for i := range g.Nodes {
		g.Nodes[i].Description = describe(g.Nodes[i].ID)
	}
}

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	i := slices.IndexFunc(g.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return g.Nodes[i], true
}
