// Package dag provides the dependency graph built from a package index and
// the algorithms that analyse it.
//
// # Overview
//
// A [Graph] maps each expanded package to the ordered list of names it depends
// on. The graph is produced by the resolver in package deps and is read-only
// afterwards. Despite the package name the graph may contain cycles: finding
// them is one of the things this package is for.
//
// # Analysis
//
//   - [FindCycle]: depth-first search reporting the first cycle as a path whose
//     first and last elements are equal
//   - [TopoSort]: Kahn's algorithm producing a load order, dependents first,
//     plus a flag telling whether a cycle left the order incomplete
//   - [InstallOrder]: the same order reversed, dependencies first
//   - [Tree]: an indented rendering from a root with cycle markers
//
// All functions iterate keys in insertion order, so results are deterministic
// for a deterministic graph.
//
// # Unresolved Names
//
// Dependency names that are not keys are dead ends. They have no outgoing
// edges, cannot take part in a cycle and are ignored when ordering. Use
// [Graph.Frontier] to list them.
//
// # Concurrency
//
// Build a Graph from one goroutine. Once built it can be shared freely; none of
// the analysis functions mutate it.
package dag
