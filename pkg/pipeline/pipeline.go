// Package pipeline runs the load → resolve → analyse pipeline for pkggraph.
//
// The CLI and the HTTP service both go through this package, so flags, API
// parameters and defaults behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Load: Fetch every repository index concurrently and merge them in
//     repository order (the first repository wins for duplicate names)
//  2. Analyse: Resolve the root package's graph, find a cycle, compute the
//     load order and collect everything into a [graph.Report]
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Package:      "curl",
//	    Repositories: []string{"https://dl-cdn.alpinelinux.org/alpine/v3.19/main"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.Order)
//
// Run the stages separately to analyse several packages against one index:
//
//	idx, err := runner.LoadIndex(ctx, runner.Sources(opts), false)
//	report, err := runner.Analyze(ctx, idx, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkggraph/pkg/cache"
	"github.com/matzehuels/pkggraph/pkg/deps"
	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
	"github.com/matzehuels/pkggraph/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDepth is the number of dependency levels expanded below the root.
	DefaultMaxDepth = 3

	// DefaultMode fetches repositories over HTTP.
	DefaultMode = pkgerrors.ModeOnline

	// TTLIndex is how long downloaded index archives stay cached.
	TTLIndex = 6 * time.Hour

	// TTLReport is how long finished reports stay cached.
	TTLReport = time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one analysis.
// This struct supports JSON serialization for API requests.
type Options struct {
	Package      string   `json:"package"`
	Version      string   `json:"version,omitempty"` // "latest" (default) or an exact version
	MaxDepth     int      `json:"max_depth,omitempty"`
	Repositories []string `json:"repositories,omitempty"` // URLs in online mode, file paths in test mode
	Mode         string   `json:"mode,omitempty"`         // "online" (default) or "test"
	Refresh      bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the finished analysis.
	Report *graph.Report

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit is true when the report came from the cache and no index was loaded.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Packages    int // Packages in the merged index
	LoadTime    time.Duration
	AnalyzeTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForAnalyze checks the fields needed to analyse an already loaded index.
func (o *Options) ValidateForAnalyze() error {
	o.Package = strings.TrimSpace(o.Package)
	if err := pkgerrors.ValidatePackageName(o.Package); err != nil {
		return err
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if err := pkgerrors.ValidateDepth(o.MaxDepth); err != nil {
		return err
	}
	o.Version = deps.ParseVersion(o.Version).String()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForLoad checks the mode and the repository list.
func (o *Options) ValidateForLoad() error {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if err := pkgerrors.ValidateMode(o.Mode); err != nil {
		return err
	}
	if len(o.Repositories) == 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "at least one repository is required")
	}
	o.Repositories = slices.Clone(o.Repositories)
	for i, repo := range o.Repositories {
		repo = strings.TrimSpace(repo)
		o.Repositories[i] = repo
		switch {
		case o.Mode == pkgerrors.ModeOnline:
			if err := pkgerrors.ValidateURL(repo); err != nil {
				return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "repository %q", repo)
			}
		case repo == "":
			return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "repository path cannot be empty")
		}
	}
	return nil
}

// IsOnline returns true if repositories are fetched over HTTP.
func (o *Options) IsOnline() bool {
	return o.Mode == "" || o.Mode == pkgerrors.ModeOnline
}

// ReportKeyOpts returns cache key options for a finished report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		Version:      o.Version,
		MaxDepth:     o.MaxDepth,
		Repositories: o.Repositories,
	}
}
