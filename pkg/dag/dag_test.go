package dag

import (
	"errors"
	"slices"
	"testing"
)

// build creates a graph from name/deps pairs in the given order.
func build(t *testing.T, nodes ...Node) *Graph {
	t.Helper()
	g := New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s) error: %v", n.ID, err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: "a", Deps: []string{"b"}}); err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}
	if !g.Has("a") {
		t.Error("Has(a) = false, want true")
	}
	if g.Has("b") {
		t.Error("Has(b) = true, want false (b was never expanded)")
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddNodeDedupesDeps(t *testing.T) {
	g := build(t, Node{ID: "a", Deps: []string{"b", "c", "b", "d", "c"}})
	want := []string{"b", "c", "d"}
	if got := g.Deps("a"); !slices.Equal(got, want) {
		t.Errorf("Deps(a) = %v, want %v", got, want)
	}
}

func TestKeysInsertionOrder(t *testing.T) {
	g := build(t,
		Node{ID: "zlib"},
		Node{ID: "musl"},
		Node{ID: "busybox"},
	)
	want := []string{"zlib", "musl", "busybox"}
	if got := g.Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestNode(t *testing.T) {
	g := build(t, Node{ID: "curl", Version: "8.5.0-r0", Depth: 1, Deps: []string{"libcurl"}})

	n, ok := g.Node("curl")
	if !ok {
		t.Fatal("Node(curl) not found")
	}
	if n.Version != "8.5.0-r0" || n.Depth != 1 {
		t.Errorf("Node(curl) = %+v", n)
	}
	if _, ok := g.Node("missing"); ok {
		t.Error("Node(missing) found, want not found")
	}
	if deps := g.Deps("missing"); deps != nil {
		t.Errorf("Deps(missing) = %v, want nil", deps)
	}
}

func TestEdgeCountAndFrontier(t *testing.T) {
	g := build(t,
		Node{ID: "app", Deps: []string{"lib", "libssl"}},
		Node{ID: "lib", Deps: []string{"libssl", "zlib"}},
	)
	if got := g.EdgeCount(); got != 4 {
		t.Errorf("EdgeCount() = %d, want 4", got)
	}
	want := []string{"libssl", "zlib"}
	if got := g.Frontier(); !slices.Equal(got, want) {
		t.Errorf("Frontier() = %v, want %v", got, want)
	}
}

func TestDependents(t *testing.T) {
	g := build(t,
		Node{ID: "a", Deps: []string{"c"}},
		Node{ID: "b", Deps: []string{"c"}},
		Node{ID: "c"},
	)
	want := []string{"a", "b"}
	if got := g.Dependents("c"); !slices.Equal(got, want) {
		t.Errorf("Dependents(c) = %v, want %v", got, want)
	}
	if got := g.Dependents("a"); got != nil {
		t.Errorf("Dependents(a) = %v, want nil", got)
	}
}
