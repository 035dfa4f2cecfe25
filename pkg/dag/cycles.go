package dag

import "slices"

// FindCycle returns the first dependency cycle found in g.
//
// FindCycle runs a depth-first search from every key, in insertion order,
// that has not already been fully explored. The current root-to-node path is
// kept as a stack: a node is pushed before its dependencies are visited and
// popped afterwards, so sibling branches never observe each other's path.
//
// When the search reaches a node that is already on the path, the cycle is the
// path suffix starting at that node's position followed by the node again, so
// the first and last elements are equal:
//
//	A -> C -> E -> A   yields   [A C E A]
//
// A node whose subtree was explored without finding a cycle is marked done and
// never explored again. Names that are not keys have no outgoing edges and
// cannot be part of a cycle.
//
// FindCycle returns (nil, false) when g is acyclic.
func FindCycle(g *Graph) ([]string, bool) {
	done := make(map[string]bool, g.Len())
	onPath := make(map[string]int)
	var path []string

	var visit func(node string) []string
	visit = func(node string) []string {
		if i, ok := onPath[node]; ok {
			return append(slices.Clone(path[i:]), node)
		}
		if done[node] || !g.Has(node) {
			return nil
		}

		onPath[node] = len(path)
		path = append(path, node)
		for _, dep := range g.Deps(node) {
			if cycle := visit(dep); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		delete(onPath, node)

		done[node] = true
		return nil
	}

	for _, k := range g.keys {
		if done[k] {
			continue
		}
		if cycle := visit(k); cycle != nil {
			return cycle, true
		}
	}
	return nil, false
}
