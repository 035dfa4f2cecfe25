package dag

import "slices"

// TopoSort orders the keys of g with Kahn's algorithm.
//
// Only edges between keys take part. The in-degree of a node is the number of
// keys that depend on it, so the queue is seeded with the nodes nothing depends
// on (typically the root), in key order. Each dequeued node is appended to the
// order and releases its own dependencies, in declaration order; a dependency
// becomes ready once every one of its dependents has been emitted.
//
// The resulting order therefore lists dependents before their dependencies:
//
//	A -> B, A -> C, B -> D, C -> D   yields   [A B C D]
//
// Use [InstallOrder] for the reverse, dependencies-first direction.
//
// hasCycle is true exactly when some keys could not be ordered because they
// sit on, or below, a cycle. In that case order is the partial prefix.
func TopoSort(g *Graph) (order []string, hasCycle bool) {
	order = make([]string, 0, g.Len())
	if g.Len() == 0 {
		return order, false
	}

	inDegree := make(map[string]int, g.Len())
	for _, k := range g.keys {
		for _, dep := range g.Deps(k) {
			if g.Has(dep) {
				inDegree[dep]++
			}
		}
	}

	queue := make([]string, 0, g.Len())
	for _, k := range g.keys {
		if inDegree[k] == 0 {
			queue = append(queue, k)
		}
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dep := range g.Deps(node) {
			if !g.Has(dep) {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	return order, len(order) != g.Len()
}

// InstallOrder returns the keys of g with dependencies before the packages
// that need them. It is the reverse of [TopoSort].
func InstallOrder(g *Graph) (order []string, hasCycle bool) {
	order, hasCycle = TopoSort(g)
	slices.Reverse(order)
	return order, hasCycle
}
