package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pkggraph/pkg/dag"
	"github.com/matzehuels/pkggraph/pkg/graph"
)

// WriteText writes the full text report.
func WriteText(w io.Writer, r *graph.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s %s (depth %d)\n", r.Package, r.Version, r.MaxDepth)
	fmt.Fprintf(bw, "%d packages, %d edges, %d unresolved\n", r.Stats.Nodes, r.Stats.Edges, r.Stats.Unresolved)
	for _, n := range r.Notices {
		fmt.Fprintf(bw, "note: %s\n", n)
	}
	for _, name := range r.Unresolved {
		if by := r.RequiredBy[name]; len(by) > 0 {
			fmt.Fprintf(bw, "unresolved: %s (required by %s)\n", name, strings.Join(by, ", "))
		}
	}
	fmt.Fprintln(bw)

	if err := WriteTree(bw, r); err != nil {
		return err
	}
	fmt.Fprintln(bw)

	if r.HasCycle() {
		fmt.Fprintf(bw, "cycle: %s\n", strings.Join(r.Cycle, " -> "))
	}
	WriteOrder(bw, r)
	return bw.Flush()
}

// TreeLines renders the report's dependency tree, one string per line.
func TreeLines(r *graph.Report) ([]string, error) {
	g, err := graph.ToDAG(r.Graph)
	if err != nil {
		return nil, err
	}
	unresolved := make(map[string]bool, len(r.Unresolved))
	for _, name := range r.Unresolved {
		unresolved[name] = true
	}

	lines := dag.Tree(g, r.Package)
	out := make([]string, len(lines))
	for i, l := range lines {
		s := l.String()
		if l.Kind == dag.LineExternal && unresolved[l.Name] {
			s += " (unresolved)"
		}
		out[i] = s
	}
	return out, nil
}

// WriteTree writes the dependency tree of the report's root package.
func WriteTree(w io.Writer, r *graph.Report) error {
	lines, err := TreeLines(r)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// WriteOrder writes the load order, noting when a cycle left it partial.
func WriteOrder(w io.Writer, r *graph.Report) {
	fmt.Fprintf(w, "load order: %s\n", strings.Join(r.Order, " "))
	if !r.OrderComplete {
		fmt.Fprintf(w, "load order incomplete: %d of %d packages are in or behind a cycle\n",
			r.Stats.Nodes-len(r.Order), r.Stats.Nodes)
	}
}

// Export writes the report to path, as JSON for a ".json" extension and as
// text otherwise.
func Export(r *graph.Report, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return graph.WriteReportFile(r, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteText(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
