package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the node was
	// already expanded. Each package is expanded at most once.
	ErrDuplicateNodeID = errors.New("duplicate node ID")
)

// Node is an expanded package: a package whose dependencies were looked up
// and recorded during resolution.
type Node struct {
	ID      string   // Package name
	Version string   // Version taken from the index (may be empty)
	Depth   int      // Expansion depth, 0 for the root
	Deps    []string // Dependency names in declaration order
}

// Graph is a directed dependency graph keyed by package name.
//
// Only expanded packages are keys. Dependency names may reference packages
// that are not keys: external packages missing from the index, or packages
// that sit beyond the depth limit. Both are valid and act as dead ends for
// every traversal in this package.
//
// Keys remember insertion order, which all algorithms use as their iteration
// order so results are deterministic.
//
// The zero value is not usable - use New. A Graph is not safe for concurrent
// mutation, but a fully built Graph may be read from many goroutines.
type Graph struct {
	nodes map[string]*Node
	keys  []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode records an expanded package. Duplicate dependency names are dropped,
// keeping the first occurrence.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	n.Deps = dedupe(n.Deps)
	g.nodes[n.ID] = &n
	g.keys = append(g.keys, n.ID)
	return nil
}

// Keys returns expanded package names in insertion order.
func (g *Graph) Keys() []string { return slices.Clone(g.keys) }

// Len returns the number of expanded packages.
func (g *Graph) Len() int { return len(g.keys) }

// Has reports whether name was expanded.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Node returns the expanded node for name.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Deps returns the dependency names of name, or nil if name is not a key.
// The returned slice must not be modified.
func (g *Graph) Deps(name string) []string {
	if n, ok := g.nodes[name]; ok {
		return n.Deps
	}
	return nil
}

// EdgeCount returns the total number of recorded edges, including edges to
// names that are not keys.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.Deps)
	}
	return count
}

// Frontier returns dependency names that are not keys, in first-seen order.
// These are either external packages or packages cut off by the depth limit.
func (g *Graph) Frontier() []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range g.keys {
		for _, d := range g.nodes[k].Deps {
			if g.Has(d) || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// Dependents returns the keys that list name as a dependency, in key order.
func (g *Graph) Dependents(name string) []string {
	var out []string
	for _, k := range g.keys {
		if slices.Contains(g.nodes[k].Deps, name) {
			out = append(out, k)
		}
	}
	return out
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
