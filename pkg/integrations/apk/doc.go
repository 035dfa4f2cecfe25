// Package apk fetches package indexes from Alpine-style repositories.
//
// A repository publishes its index as APKINDEX.tar.gz: a gzip stream
// (usually a signature member followed by the index member) holding a tar
// archive with an APKINDEX text file. [Client.FetchIndex] downloads the
// archive, caches it, and returns the APKINDEX text. Parsing the text into
// package records lives in [github.com/matzehuels/pkggraph/pkg/deps/apk].
package apk
