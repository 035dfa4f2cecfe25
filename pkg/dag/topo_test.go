package dag

import (
	"slices"
	"testing"
)

func TestTopoSort(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []Node
		want      []string
		wantCycle bool
	}{
		{
			name:  "empty",
			nodes: nil,
			want:  []string{},
		},
		{
			name:  "single",
			nodes: []Node{{ID: "a"}},
			want:  []string{"a"},
		},
		{
			name: "chain",
			nodes: []Node{
				{ID: "a", Deps: []string{"b"}},
				{ID: "b", Deps: []string{"c"}},
				{ID: "c"},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "diamond",
			nodes: []Node{
				{ID: "a", Deps: []string{"b", "c"}},
				{ID: "b", Deps: []string{"d"}},
				{ID: "c", Deps: []string{"d"}},
				{ID: "d"},
			},
			want: []string{"a", "b", "c", "d"},
		},
		{
			name: "shared dependency waits for all dependents",
			nodes: []Node{
				{ID: "a", Deps: []string{"d", "b"}},
				{ID: "b", Deps: []string{"d"}},
				{ID: "d"},
			},
			want: []string{"a", "b", "d"},
		},
		{
			name: "unresolved names ignored",
			nodes: []Node{
				{ID: "curl", Deps: []string{"libssl", "zlib"}},
				{ID: "zlib", Deps: []string{"musl"}},
			},
			want: []string{"curl", "zlib"},
		},
		{
			name: "cycle leaves order incomplete",
			nodes: []Node{
				{ID: "A", Deps: []string{"B", "C"}},
				{ID: "B", Deps: []string{"D"}},
				{ID: "C", Deps: []string{"D", "E"}},
				{ID: "D"},
				{ID: "E", Deps: []string{"A"}},
			},
			want:      []string{},
			wantCycle: true,
		},
		{
			name: "cycle below acyclic prefix",
			nodes: []Node{
				{ID: "root", Deps: []string{"x"}},
				{ID: "x", Deps: []string{"y"}},
				{ID: "y", Deps: []string{"x"}},
			},
			want:      []string{"root"},
			wantCycle: true,
		},
		{
			name:      "self loop",
			nodes:     []Node{{ID: "a", Deps: []string{"a"}}},
			want:      []string{},
			wantCycle: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes...)
			order, hasCycle := TopoSort(g)
			if !slices.Equal(order, tt.want) {
				t.Errorf("order = %v, want %v", order, tt.want)
			}
			if hasCycle != tt.wantCycle {
				t.Errorf("hasCycle = %v, want %v", hasCycle, tt.wantCycle)
			}
			if (len(order) == g.Len()) == hasCycle {
				t.Errorf("len(order)=%d, Len()=%d inconsistent with hasCycle=%v", len(order), g.Len(), hasCycle)
			}
		})
	}
}

func TestTopoSortDirection(t *testing.T) {
	// Every dependency comes after each of its dependents.
	g := build(t,
		Node{ID: "app", Deps: []string{"http", "log"}},
		Node{ID: "http", Deps: []string{"tls", "log"}},
		Node{ID: "tls", Deps: []string{"crypto"}},
		Node{ID: "log"},
		Node{ID: "crypto"},
	)
	order, hasCycle := TopoSort(g)
	if hasCycle {
		t.Fatalf("hasCycle = true for acyclic graph, order %v", order)
	}
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	for _, k := range g.Keys() {
		for _, dep := range g.Deps(k) {
			if g.Has(dep) && pos[k] > pos[dep] {
				t.Errorf("%s (pos %d) should precede its dependency %s (pos %d)", k, pos[k], dep, pos[dep])
			}
		}
	}
}

func TestInstallOrder(t *testing.T) {
	g := build(t,
		Node{ID: "a", Deps: []string{"b"}},
		Node{ID: "b", Deps: []string{"c"}},
		Node{ID: "c"},
	)
	order, hasCycle := InstallOrder(g)
	if hasCycle {
		t.Error("hasCycle = true, want false")
	}
	if want := []string{"c", "b", "a"}; !slices.Equal(order, want) {
		t.Errorf("InstallOrder() = %v, want %v", order, want)
	}
}
