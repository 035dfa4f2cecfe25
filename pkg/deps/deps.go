package deps

import (
	"context"
	"slices"
)

// Package is a package record from a repository index.
//
// A Package is immutable once added to an [Index]: callers must not modify
// Dependencies in place.
type Package struct {
	Name         string   `json:"name"`                   // Unique key within an index
	Version      string   `json:"version"`                // Version string as published (may be empty)
	Dependencies []string `json:"dependencies,omitempty"` // Dependency names, no duplicates, declaration order
	Description  string   `json:"description,omitempty"`  // One-line summary
}

// Index maps package names to records.
//
// An Index is built once by a [Source] and then only read. It is safe for
// concurrent readers.
type Index struct {
	pkgs  map[string]*Package
	names []string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{pkgs: make(map[string]*Package)}
}

// Add inserts pkg unless a record with the same name already exists, in which
// case the existing record is kept and Add returns false. Duplicate dependency
// names are dropped, keeping the first occurrence.
func (idx *Index) Add(pkg Package) bool {
	if pkg.Name == "" {
		return false
	}
	if _, exists := idx.pkgs[pkg.Name]; exists {
		return false
	}
	pkg.Dependencies = uniq(pkg.Dependencies)
	idx.pkgs[pkg.Name] = &pkg
	idx.names = append(idx.names, pkg.Name)
	return true
}

// Lookup returns the record for name.
func (idx *Index) Lookup(name string) (Package, bool) {
	p, ok := idx.pkgs[name]
	if !ok {
		return Package{}, false
	}
	return *p, true
}

// Contains reports whether name is in the index.
func (idx *Index) Contains(name string) bool {
	_, ok := idx.pkgs[name]
	return ok
}

// Len returns the number of records.
func (idx *Index) Len() int { return len(idx.names) }

// Names returns package names in insertion order.
func (idx *Index) Names() []string { return slices.Clone(idx.names) }

// Merge combines indexes in order. When a name appears in more than one
// index, the record from the earliest index wins.
func Merge(indexes ...*Index) *Index {
	out := NewIndex()
	for _, idx := range indexes {
		if idx == nil {
			continue
		}
		for _, name := range idx.names {
			out.Add(*idx.pkgs[name])
		}
	}
	return out
}

// Source produces an [Index] from a repository: a remote archive, a local
// file, or anything else that yields package records.
type Source interface {
	// Load reads the whole index. If refresh is true, cached data is bypassed.
	Load(ctx context.Context, refresh bool) (*Index, error)
	// Name describes the source for logs and reports (usually its URL or path).
	Name() string
}

func uniq(names []string) []string {
	if len(names) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
