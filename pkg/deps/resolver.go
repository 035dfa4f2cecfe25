package deps

import (
	"errors"
	"fmt"

	"github.com/matzehuels/pkggraph/pkg/dag"
)

// ErrNotFound is returned when a package is not in the index.
var ErrNotFound = errors.New("package not found")

// Options configures graph construction.
type Options struct {
	Version  Version      // Version requested for the root (default: Latest)
	MaxDepth int          // Expansion levels; the root is depth 0. Values <= 0 expand nothing.
	Notify   func(Notice) // Version mismatch callback (optional)
}

func (o Options) notify(n Notice) {
	if o.Notify != nil {
		o.Notify(n)
	}
}

// DirectDependencies returns the dependencies of name as recorded in idx.
//
// The result is never nil for a package that exists, even one without
// dependencies. If name is missing the error wraps [ErrNotFound]. When v asks
// for a version other than the indexed one, notify receives a [Notice] and the
// indexed record is used anyway.
func DirectDependencies(idx *Index, name string, v Version, notify func(Notice)) ([]string, error) {
	pkg, ok := idx.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if n, mismatch := checkVersion(pkg, v); mismatch && notify != nil {
		notify(n)
	}
	out := make([]string, len(pkg.Dependencies))
	copy(out, pkg.Dependencies)
	return out, nil
}

type job struct {
	name    string
	version string
	depth   int
}

// BuildGraph resolves the dependency graph of root by breadth-first traversal.
//
// A package at depth d is expanded (added as a graph key with its
// dependencies) only when d < opts.MaxDepth, so the graph covers at most
// MaxDepth levels below the root. Each name is expanded at most once; when it
// is reachable by several paths the shallowest, first-discovered one wins.
//
// Every dependency of an expanded package is recorded as an edge. Names found
// in the index are queued at depth+1; names missing from the index stay as
// unresolved leaves and are never expanded.
//
// BuildGraph does not fail. A root missing from the index yields an empty
// graph; callers check [DirectDependencies] first and treat [ErrNotFound] as
// fatal. The result depends only on idx, root and opts, so repeated calls
// return identical graphs.
func BuildGraph(idx *Index, root string, opts Options) *dag.Graph {
	g := dag.New()
	if opts.MaxDepth <= 0 {
		return g
	}
	pkg, ok := idx.Lookup(root)
	if !ok {
		return g
	}
	if n, mismatch := checkVersion(pkg, opts.Version); mismatch {
		opts.notify(n)
	}

	visited := map[string]bool{root: true}
	queue := []job{{name: root, version: pkg.Version}}

	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		if j.depth >= opts.MaxDepth {
			continue
		}

		pkg, _ := idx.Lookup(j.name)
		_ = g.AddNode(dag.Node{
			ID:      j.name,
			Version: j.version,
			Depth:   j.depth,
			Deps:    pkg.Dependencies,
		})

		for _, dep := range pkg.Dependencies {
			if visited[dep] {
				continue
			}
			next, ok := idx.Lookup(dep)
			if !ok {
				continue
			}
			visited[dep] = true
			queue = append(queue, job{name: dep, version: next.Version, depth: j.depth + 1})
		}
	}

	return g
}
