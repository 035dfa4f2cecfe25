// Package apk parses APKINDEX files into a package index.
//
// An APKINDEX is a sequence of records separated by blank lines. Each line of
// a record is "K:value" with a single-letter key:
//
//	P:curl
//	V:8.5.0-r0
//	T:URL retrieval utility and library
//	D:ca-certificates so:libc.musl-x86_64.so.1 so:libcurl.so.4 libcurl>=8.5.0
//
// Only P (name), V (version), D (dependencies) and T (description) are read.
// In D, shared-library requirements ("so:") and conflicts ("!") are dropped,
// and version constraints are stripped from the remaining names.
package apk

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkggraph/pkg/deps"
	apkrepo "github.com/matzehuels/pkggraph/pkg/integrations/apk"
)

// Stats summarises a parse.
type Stats struct {
	Records   int // records with a name, including duplicates
	Malformed int // records without a P line
}

// Parse reads APKINDEX text from r. The first record for a name wins.
func Parse(r io.Reader) (*deps.Index, Stats, error) {
	idx := deps.NewIndex()
	var stats Stats

	var cur deps.Package
	inRecord := false
	flush := func() {
		if !inRecord {
			return
		}
		if cur.Name == "" {
			stats.Malformed++
		} else {
			stats.Records++
			idx.Add(cur)
		}
		cur = deps.Package{}
		inRecord = false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		inRecord = true

		key, value, ok := strings.Cut(line, ":")
		if !ok || len(key) != 1 {
			continue
		}
		switch key {
		case "P":
			cur.Name = strings.TrimSpace(value)
		case "V":
			cur.Version = strings.TrimSpace(value)
		case "T":
			cur.Description = strings.TrimSpace(value)
		case "D":
			cur.Dependencies = ParseDependencies(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, err
	}
	flush()
	return idx, stats, nil
}

// ParseDependencies converts a D field into package names.
func ParseDependencies(field string) []string {
	var out []string
	for _, spec := range strings.Fields(field) {
		if strings.HasPrefix(spec, "so:") || strings.HasPrefix(spec, "!") {
			continue
		}
		if i := strings.IndexAny(spec, "<>=~"); i >= 0 {
			spec = spec[:i]
		}
		if spec != "" {
			out = append(out, spec)
		}
	}
	return out
}

// Source loads an index from a remote repository. It implements [deps.Source].
type Source struct {
	Repo   string
	Client *apkrepo.Client
	Logger *log.Logger // optional
}

// NewSource creates a source for the repository at repo.
func NewSource(repo string, client *apkrepo.Client, logger *log.Logger) *Source {
	return &Source{Repo: repo, Client: client, Logger: logger}
}

// Name returns the repository URL.
func (s *Source) Name() string { return s.Repo }

// Load fetches and parses the repository index. If refresh is true, the
// cached archive is bypassed.
func (s *Source) Load(ctx context.Context, refresh bool) (*deps.Index, error) {
	text, err := s.Client.FetchIndex(ctx, s.Repo, refresh)
	if err != nil {
		return nil, err
	}
	idx, stats, err := Parse(bytes.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse index %s: %w", s.Repo, err)
	}
	if s.Logger != nil {
		if stats.Malformed > 0 {
			s.Logger.Debug("skipped malformed records", "repo", s.Repo, "count", stats.Malformed)
		}
		s.Logger.Debug("loaded index", "repo", s.Repo, "packages", idx.Len(), "records", stats.Records)
	}
	return idx, nil
}
