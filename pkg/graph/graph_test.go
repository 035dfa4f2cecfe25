package graph

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/pkggraph/pkg/dag"
	"github.com/matzehuels/pkggraph/pkg/deps"
)

func buildDAG(t *testing.T, nodes ...dag.Node) *dag.Graph {
	t.Helper()
	g := dag.New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	return g
}

func curlDAG(t *testing.T) *dag.Graph {
	return buildDAG(t,
		dag.Node{ID: "curl", Version: "8.5.0-r0", Depth: 0, Deps: []string{"libcurl", "zlib"}},
		dag.Node{ID: "libcurl", Version: "8.5.0-r0", Depth: 1, Deps: []string{"zlib", "libssl3", "brotli"}},
	)
}

func TestFromDAG(t *testing.T) {
	tests := []struct {
		name      string
		build     func(t *testing.T) *dag.Graph
		wantNodes []string
		wantEdges int
	}{
		{
			name:      "Empty",
			build:     func(t *testing.T) *dag.Graph { return dag.New() },
			wantNodes: []string{},
			wantEdges: 0,
		},
		{
			name:      "KeysThenFrontier",
			build:     curlDAG,
			wantNodes: []string{"curl", "libcurl", "zlib", "libssl3", "brotli"},
			wantEdges: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := FromDAG(tt.build(t))
			var ids []string
			for _, n := range g.Nodes {
				ids = append(ids, n.ID)
			}
			if !slices.Equal(ids, tt.wantNodes) {
				t.Errorf("nodes = %v, want %v", ids, tt.wantNodes)
			}
			if len(g.Edges) != tt.wantEdges {
				t.Errorf("edges = %d, want %d", len(g.Edges), tt.wantEdges)
			}
		})
	}
}

func TestFromDAGLeafDepth(t *testing.T) {
	g := FromDAG(curlDAG(t))

	zlib, _ := g.Node("zlib")
	if zlib.Kind != KindExternal || zlib.Depth != 1 {
		t.Errorf("zlib = %+v, want external at depth 1", zlib)
	}
	ssl, _ := g.Node("libssl3")
	if ssl.Depth != 2 {
		t.Errorf("libssl3 depth = %d, want 2", ssl.Depth)
	}
	curl, _ := g.Node("curl")
	if !curl.Expanded() || curl.Version != "8.5.0-r0" {
		t.Errorf("curl = %+v", curl)
	}
}

func TestToDAGRoundTrip(t *testing.T) {
	orig := curlDAG(t)
	back, err := ToDAG(FromDAG(orig))
	if err != nil {
		t.Fatalf("ToDAG error: %v", err)
	}
	if !slices.Equal(back.Keys(), orig.Keys()) {
		t.Errorf("keys = %v, want %v", back.Keys(), orig.Keys())
	}
	for _, k := range orig.Keys() {
		if !slices.Equal(back.Deps(k), orig.Deps(k)) {
			t.Errorf("Deps(%s) = %v, want %v", k, back.Deps(k), orig.Deps(k))
		}
	}
	n, _ := back.Node("libcurl")
	if n.Depth != 1 || n.Version != "8.5.0-r0" {
		t.Errorf("libcurl = %+v", n)
	}
}

func TestToDAGRejectsEdgeFromLeaf(t *testing.T) {
	gj := Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b", Kind: KindExternal}},
		Edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
	}
	if _, err := ToDAG(gj); err == nil {
		t.Error("ToDAG should reject edges from non-expanded nodes")
	}
}

func TestMarkUnresolvedAndDescribe(t *testing.T) {
	g := FromDAG(curlDAG(t))
	known := map[string]string{"curl": "URL tool", "libcurl": "library", "zlib": "compression"}

	unresolved := g.MarkUnresolved(func(name string) bool { _, ok := known[name]; return ok })
	if !slices.Equal(unresolved, []string{"libssl3", "brotli"}) {
		t.Errorf("unresolved = %v", unresolved)
	}
	if z, _ := g.Node("zlib"); z.Kind != KindExternal {
		t.Errorf("zlib kind = %q, want external", z.Kind)
	}

	g.Describe(func(name string) string { return known[name] })
	if c, _ := g.Node("curl"); c.Description != "URL tool" {
		t.Errorf("curl description = %q", c.Description)
	}
}

func sampleReport() *Report {
	return &Report{
		ID:            "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Package:       "curl",
		Requested:     "latest",
		Version:       "8.5.0-r0",
		MaxDepth:      3,
		Repositories:  []string{"https://dl-cdn.alpinelinux.org/alpine/v3.19/main/x86_64"},
		Order:         []string{"curl", "libcurl"},
		InstallOrder:  []string{"libcurl", "curl"},
		OrderComplete: true,
		Notices:       []deps.Notice{{Package: "curl", Requested: "8.4", Actual: "8.5.0-r0", Relation: deps.RelationOlder}},
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestReportFile(t *testing.T) {
	r := sampleReport()
	r.Graph = FromDAG(curlDAG(t))
	path := filepath.Join(t.TempDir(), "report.json")

	if err := WriteReportFile(r, path); err != nil {
		t.Fatalf("WriteReportFile error: %v", err)
	}
	got, err := ReadReportFile(path)
	if err != nil {
		t.Fatalf("ReadReportFile error: %v", err)
	}
	if got.ID != r.ID || got.Package != "curl" || !got.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("report = %+v", got)
	}
	if len(got.Notices) != 1 || got.Notices[0].Relation != deps.RelationOlder {
		t.Errorf("notices = %+v", got.Notices)
	}
	if len(got.Graph.Nodes) != len(r.Graph.Nodes) {
		t.Errorf("graph nodes = %d, want %d", len(got.Graph.Nodes), len(r.Graph.Nodes))
	}
}

func TestReadReportErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid json", "{not json"},
		{"duplicate node", `{"graph":{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}}`},
		{"edge from unknown", `{"graph":{"nodes":[{"id":"a"}],"edges":[{"from":"x","to":"a"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadReport(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadReport should fail")
			}
		})
	}
}

func TestMarshalReportIsIndented(t *testing.T) {
	data, err := MarshalReport(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("\n  \"package\": \"curl\"")) {
		t.Errorf("output not indented:\n%s", data)
	}
	r, err := UnmarshalReport(data)
	if err != nil {
		t.Fatal(err)
	}
	if !r.OrderComplete || r.HasCycle() {
		t.Errorf("OrderComplete = %v, HasCycle = %v", r.OrderComplete, r.HasCycle())
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b || len(a) != 36 {
		t.Errorf("NewID() = %q, %q", a, b)
	}
}
