package graph_test

import (
	"fmt"

	"github.com/matzehuels/pkggraph/pkg/dag"
	"github.com/matzehuels/pkggraph/pkg/graph"
)

func ExampleFromDAG() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "curl", Version: "8.5.0-r0", Deps: []string{"libcurl"}})
	_ = g.AddNode(dag.Node{ID: "libcurl", Depth: 1, Deps: []string{"libssl3"}})

	out := graph.FromDAG(g)
	out.MarkUnresolved(func(string) bool { return false })

	for _, n := range out.Nodes {
		fmt.Printf("%s depth=%d kind=%q\n", n.ID, n.Depth, n.Kind)
	}
	// Output:
	// curl depth=0 kind=""
	// libcurl depth=1 kind=""
	// libssl3 depth=2 kind="unresolved"
}
