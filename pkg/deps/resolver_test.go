package deps

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/pkggraph/pkg/dag"
)

func newTestIndex(pkgs ...Package) *Index {
	idx := NewIndex()
	for _, p := range pkgs {
		idx.Add(p)
	}
	return idx
}

// scenarioIndex is {A:[B,C], B:[D], C:[D,E], D:[], E:[A]}.
func scenarioIndex() *Index {
	return newTestIndex(
		Package{Name: "A", Version: "1.0", Dependencies: []string{"B", "C"}},
		Package{Name: "B", Version: "1.0", Dependencies: []string{"D"}},
		Package{Name: "C", Version: "1.0", Dependencies: []string{"D", "E"}},
		Package{Name: "D", Version: "1.0"},
		Package{Name: "E", Version: "1.0", Dependencies: []string{"A"}},
	)
}

func TestBuildGraphScenario(t *testing.T) {
	g := BuildGraph(scenarioIndex(), "A", Options{MaxDepth: 3})

	want := []string{"A", "B", "C", "D", "E"}
	if got := g.Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := g.Deps("E"); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Deps(E) = %v, want [A]", got)
	}

	cycle, ok := dag.FindCycle(g)
	if !ok {
		t.Fatal("FindCycle() found no cycle")
	}
	if want := []string{"A", "C", "E", "A"}; !slices.Equal(cycle, want) {
		t.Errorf("FindCycle() = %v, want %v", cycle, want)
	}
}

func TestBuildGraphDepthLimit(t *testing.T) {
	g := BuildGraph(scenarioIndex(), "A", Options{MaxDepth: 1})

	if got := g.Keys(); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Keys() = %v, want [A]", got)
	}
	if g.Has("D") {
		t.Error("D expanded beyond depth limit")
	}

	g = BuildGraph(scenarioIndex(), "A", Options{MaxDepth: 2})
	if g.Has("D") {
		t.Error("D (depth 2) expanded with MaxDepth 2")
	}
	if !slices.Contains(g.Deps("B"), "D") {
		t.Error("D should still appear as a dependency of B")
	}
}

func TestBuildGraphDepthsWithinLimit(t *testing.T) {
	idx := newTestIndex(
		Package{Name: "r", Dependencies: []string{"a"}},
		Package{Name: "a", Dependencies: []string{"b"}},
		Package{Name: "b", Dependencies: []string{"c"}},
		Package{Name: "c", Dependencies: []string{"d"}},
		Package{Name: "d"},
	)
	for depth := 1; depth <= 6; depth++ {
		g := BuildGraph(idx, "r", Options{MaxDepth: depth})
		for _, k := range g.Keys() {
			n, _ := g.Node(k)
			if n.Depth >= depth {
				t.Errorf("depth %d: key %s at depth %d", depth, k, n.Depth)
			}
		}
		if want := min(depth, 5); g.Len() != want {
			t.Errorf("depth %d: Len() = %d, want %d", depth, g.Len(), want)
		}
	}
}

func TestBuildGraphShallowestWins(t *testing.T) {
	// x is reachable at depth 1 (directly) and depth 2 (via a).
	idx := newTestIndex(
		Package{Name: "r", Dependencies: []string{"a", "x"}},
		Package{Name: "a", Dependencies: []string{"x"}},
		Package{Name: "x", Dependencies: []string{"y"}},
		Package{Name: "y"},
	)
	g := BuildGraph(idx, "r", Options{MaxDepth: 2})
	n, ok := g.Node("x")
	if !ok {
		t.Fatal("x not expanded")
	}
	if n.Depth != 1 {
		t.Errorf("x depth = %d, want 1", n.Depth)
	}
	if g.Has("y") {
		t.Error("y (depth 2) should not be expanded")
	}
}

func TestBuildGraphUnresolved(t *testing.T) {
	idx := newTestIndex(
		Package{Name: "curl", Dependencies: []string{"libcurl", "libssl"}},
		Package{Name: "libcurl", Dependencies: []string{"libssl"}},
	)
	g := BuildGraph(idx, "curl", Options{MaxDepth: 3})

	if !slices.Contains(g.Deps("curl"), "libssl") {
		t.Errorf("Deps(curl) = %v, want libssl recorded", g.Deps("curl"))
	}
	if g.Has("libssl") {
		t.Error("unresolved libssl must not be expanded")
	}
	if got := g.Frontier(); !slices.Equal(got, []string{"libssl"}) {
		t.Errorf("Frontier() = %v, want [libssl]", got)
	}
	if _, ok := dag.FindCycle(g); ok {
		t.Error("unresolved leaf produced a cycle")
	}
	order, hasCycle := dag.TopoSort(g)
	if hasCycle || !slices.Equal(order, []string{"curl", "libcurl"}) {
		t.Errorf("TopoSort() = %v, %v", order, hasCycle)
	}
}

func TestBuildGraphIdempotent(t *testing.T) {
	idx := scenarioIndex()
	g1 := BuildGraph(idx, "A", Options{MaxDepth: 3})
	g2 := BuildGraph(idx, "A", Options{MaxDepth: 3})

	if !slices.Equal(g1.Keys(), g2.Keys()) {
		t.Fatalf("keys differ: %v vs %v", g1.Keys(), g2.Keys())
	}
	for _, k := range g1.Keys() {
		if !slices.Equal(g1.Deps(k), g2.Deps(k)) {
			t.Errorf("Deps(%s) differ: %v vs %v", k, g1.Deps(k), g2.Deps(k))
		}
	}
}

func TestBuildGraphEmptyCases(t *testing.T) {
	idx := scenarioIndex()
	if g := BuildGraph(idx, "A", Options{MaxDepth: 0}); g.Len() != 0 {
		t.Errorf("MaxDepth 0: Len() = %d, want 0", g.Len())
	}
	if g := BuildGraph(idx, "A", Options{MaxDepth: -1}); g.Len() != 0 {
		t.Errorf("MaxDepth -1: Len() = %d, want 0", g.Len())
	}
	if g := BuildGraph(idx, "missing", Options{MaxDepth: 3}); g.Len() != 0 {
		t.Errorf("missing root: Len() = %d, want 0", g.Len())
	}
}

func TestBuildGraphVersionMismatch(t *testing.T) {
	idx := scenarioIndex()

	var notices []Notice
	g := BuildGraph(idx, "A", Options{
		Version:  Exact("0.9"),
		MaxDepth: 2,
		Notify:   func(n Notice) { notices = append(notices, n) },
	})

	if len(notices) != 1 {
		t.Fatalf("got %d notices, want 1", len(notices))
	}
	if notices[0].Requested != "0.9" || notices[0].Actual != "1.0" || notices[0].Relation != RelationOlder {
		t.Errorf("notice = %+v", notices[0])
	}
	root, _ := g.Node("A")
	if root.Version != "1.0" {
		t.Errorf("root version = %q, want index version", root.Version)
	}

	notices = nil
	BuildGraph(idx, "A", Options{Version: Latest, MaxDepth: 2, Notify: func(n Notice) { notices = append(notices, n) }})
	if len(notices) != 0 {
		t.Errorf("Latest produced notices: %v", notices)
	}
}

func TestDirectDependencies(t *testing.T) {
	idx := scenarioIndex()

	got, err := DirectDependencies(idx, "C", Latest, nil)
	if err != nil {
		t.Fatalf("DirectDependencies(C) error: %v", err)
	}
	if !slices.Equal(got, []string{"D", "E"}) {
		t.Errorf("DirectDependencies(C) = %v", got)
	}

	got, err = DirectDependencies(idx, "D", Latest, nil)
	if err != nil {
		t.Fatalf("DirectDependencies(D) error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("DirectDependencies(D) = %#v, want empty non-nil slice", got)
	}

	_, err = DirectDependencies(idx, "libssl", Latest, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DirectDependencies(libssl) error = %v, want ErrNotFound", err)
	}
}

func TestDirectDependenciesNotice(t *testing.T) {
	var got []Notice
	_, err := DirectDependencies(scenarioIndex(), "B", Exact("2.0"), func(n Notice) { got = append(got, n) })
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Relation != RelationNewer {
		t.Errorf("notices = %+v", got)
	}
}

func TestDirectDependenciesReturnsCopy(t *testing.T) {
	idx := scenarioIndex()
	got, _ := DirectDependencies(idx, "A", Latest, nil)
	got[0] = "mutated"
	again, _ := DirectDependencies(idx, "A", Latest, nil)
	if again[0] != "B" {
		t.Error("DirectDependencies exposed index storage")
	}
}
