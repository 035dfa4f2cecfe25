// Package integrations provides HTTP clients for package repositories.
//
// # Overview
//
// Each repository format has its own subpackage:
//
//   - [apk]: Alpine-style repositories serving APKINDEX.tar.gz
//
// # Client Pattern
//
// Repository clients embed the shared [Client], which adds response caching,
// retries and default headers:
//
//	client := apk.NewClient(backend, 6*time.Hour)
//	archive, err := client.FetchIndex(ctx, repoURL, false) // false = use cache
//
// Failures map to two sentinel errors: [ErrNotFound] for a missing resource
// and [ErrNetwork] for everything transport-related.
//
// [apk]: github.com/matzehuels/pkggraph/pkg/integrations/apk
package integrations
