// Package flatfile reads a package index from a plain text file.
//
// Each non-blank line that does not start with '#' describes one package:
//
//	# name[@version]: dependency dependency ...
//	curl@8.5.0: libcurl zlib
//	libcurl: zlib libssl3
//	zlib:
//
// Lines without a colon are malformed. They are skipped and reported with
// their line number; the rest of the file still loads.
package flatfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkggraph/pkg/deps"
)

// Malformed is a line that could not be parsed.
type Malformed struct {
	Line int
	Text string
}

func (m Malformed) String() string {
	return fmt.Sprintf("line %d: missing ':' in %q", m.Line, m.Text)
}

// Parse reads an index from r. Duplicate package lines keep the first.
func Parse(r io.Reader) (*deps.Index, []Malformed, error) {
	idx := deps.NewIndex()
	var bad []Malformed

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		head, tail, ok := strings.Cut(line, ":")
		name, version, _ := strings.Cut(strings.TrimSpace(head), "@")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			bad = append(bad, Malformed{Line: lineNo, Text: line})
			continue
		}

		idx.Add(deps.Package{
			Name:         name,
			Version:      strings.TrimSpace(version),
			Dependencies: strings.Fields(tail),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return idx, bad, nil
}

// ParseFile reads an index from the file at path.
func ParseFile(path string) (*deps.Index, []Malformed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Source loads a local index file. It implements [deps.Source].
type Source struct {
	Path   string
	Logger *log.Logger // optional; malformed lines are logged at debug level
}

// NewSource creates a source for the file at path.
func NewSource(path string, logger *log.Logger) *Source {
	return &Source{Path: path, Logger: logger}
}

// Name returns the file path.
func (s *Source) Name() string { return s.Path }

// Load parses the file. Local files are never cached, so refresh is ignored.
func (s *Source) Load(ctx context.Context, _ bool) (*deps.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, bad, err := ParseFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", s.Path, err)
	}
	if s.Logger != nil {
		for _, m := range bad {
			s.Logger.Debug("skipped malformed line", "file", s.Path, "line", m.Line, "text", m.Text)
		}
		s.Logger.Debug("loaded index", "file", s.Path, "packages", idx.Len(), "malformed", len(bad))
	}
	return idx, nil
}
