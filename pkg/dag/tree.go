package dag

import "strings"

// LineKind classifies a rendered tree line.
type LineKind int

const (
	// LineNode is an expanded package; its dependencies follow one level deeper.
	LineNode LineKind = iota
	// LineCycle is a package already on the current path. It is not expanded again.
	LineCycle
	// LineExternal is a name that is not a key: unresolved or beyond the depth limit.
	LineExternal
)

// Line is one row of an indented dependency tree.
type Line struct {
	Depth int
	Name  string
	Kind  LineKind
}

// String renders the line with two spaces of indentation per level and a
// " (cycle)" marker for repeated nodes.
func (l Line) String() string {
	s := strings.Repeat("  ", l.Depth) + l.Name
	if l.Kind == LineCycle {
		s += " (cycle)"
	}
	return s
}

// Tree renders the dependency tree of g below root.
//
// Every path from root is followed, so a package reachable through two
// branches appears under both. A package that is already on the current path
// is emitted once as [LineCycle] and not expanded. The path is tracked with
// push/pop discipline, the same way [FindCycle] does.
//
// If root is not a key, the tree is the single [LineExternal] root line.
func Tree(g *Graph, root string) []Line {
	var lines []Line
	onPath := make(map[string]bool)

	var walk func(name string, depth int)
	walk = func(name string, depth int) {
		switch {
		case onPath[name]:
			lines = append(lines, Line{Depth: depth, Name: name, Kind: LineCycle})
			return
		case !g.Has(name):
			lines = append(lines, Line{Depth: depth, Name: name, Kind: LineExternal})
			return
		}

		lines = append(lines, Line{Depth: depth, Name: name, Kind: LineNode})
		onPath[name] = true
		for _, dep := range g.Deps(name) {
			walk(dep, depth+1)
		}
		delete(onPath, name)
	}

	walk(root, 0)
	return lines
}
