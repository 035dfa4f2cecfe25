// Package io writes analysis reports as text or JSON.
//
// # Text Format
//
// [WriteText] prints a report for humans: a summary line, the dependency
// tree, the first cycle (if any), and the load order.
//
//	curl 8.5.0-r0 (depth 3)
//	3 packages, 4 edges, 1 unresolved
//
//	curl
//	  libcurl
//	    zlib
//	    libssl3 (unresolved)
//	  zlib
//
//	load order: curl libcurl zlib
//
// Tree lines are indented two spaces per level. A package already on the
// current path is printed with " (cycle)" and not expanded again; a name
// missing from every index is printed with " (unresolved)".
//
// # Files
//
// [Export] picks the format from the file extension: ".json" writes the
// report as JSON (see [graph.WriteReport]), anything else writes text.
//
// [graph.WriteReport]: github.com/matzehuels/pkggraph/pkg/graph.WriteReport
package io
