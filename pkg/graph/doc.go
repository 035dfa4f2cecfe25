// Package graph provides serialization types for dependency graphs and
// analysis reports.
//
// This package defines the wire format used for JSON files, API responses,
// caching and the report store.
//
// # Core Types
//
//   - [Graph], [Node], [Edge]: node-link form of a [dag.Graph]
//   - [Report]: one analysis run: graph, cycle, load order, notices
//
// Use [FromDAG] and [ToDAG] to convert between the in-memory graph and its
// serialization. Conversion preserves key order and dependency order, so a
// round trip yields the same traversal results.
//
// # Graph Serialization
//
//	{
//	  "nodes": [
//	    {"id": "curl", "version": "8.5.0-r0", "depth": 0},
//	    {"id": "libcurl", "version": "8.5.0-r0", "depth": 1},
//	    {"id": "libssl3", "depth": 2, "kind": "unresolved"}
//	  ],
//	  "edges": [
//	    {"from": "curl", "to": "libcurl"},
//	    {"from": "libcurl", "to": "libssl3"}
//	  ]
//	}
//
// Nodes without a kind were expanded. "external" nodes are known packages
// beyond the depth limit; "unresolved" nodes are missing from every index.
//
// [dag.Graph]: github.com/matzehuels/pkggraph/pkg/dag.Graph
package graph
