// Package deps holds package records and resolves dependency graphs from them.
//
// # Overview
//
// A repository index is loaded once into an [Index] by a [Source]:
//
//   - [apk]: a remote APKINDEX.tar.gz archive
//   - [flatfile]: a local "name: dep dep" text file
//
// The index is then passed explicitly to the resolver. Nothing in this package
// keeps global state, so one index can serve many concurrent resolutions.
//
// # Resolving Dependencies
//
// [BuildGraph] walks the index breadth-first from a root package:
//
//	idx, _ := flatfile.Parse(r)
//	g := deps.BuildGraph(idx, "curl", deps.Options{
//	    Version:  deps.Latest,
//	    MaxDepth: 3,
//	})
//
// The result is a [dag.Graph] ready for cycle detection and ordering. Check
// the root with [DirectDependencies] first: BuildGraph returns an empty graph
// for a missing root rather than an error.
//
// # Versions
//
// [Version] is either [Latest] or an exact string from [Exact]. Versions are
// not resolved: the index carries one version per package, and a request for
// any other version produces a [Notice] while resolution continues with the
// indexed one.
//
// [apk]: github.com/matzehuels/pkggraph/pkg/deps/apk
// [flatfile]: github.com/matzehuels/pkggraph/pkg/deps/flatfile
// [dag.Graph]: github.com/matzehuels/pkggraph/pkg/dag.Graph
package deps
