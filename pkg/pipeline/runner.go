package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pkggraph/pkg/cache"
	"github.com/matzehuels/pkggraph/pkg/dag"
	"github.com/matzehuels/pkggraph/pkg/deps"
	"github.com/matzehuels/pkggraph/pkg/deps/apk"
	"github.com/matzehuels/pkggraph/pkg/deps/flatfile"
	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
	"github.com/matzehuels/pkggraph/pkg/graph"
	"github.com/matzehuels/pkggraph/pkg/integrations"
	apkrepo "github.com/matzehuels/pkggraph/pkg/integrations/apk"
	"github.com/matzehuels/pkggraph/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store indexes or reports. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the repositories and analyses opts.Package.
//
// In online mode the finished report is cached; a cached report is returned
// without touching the network unless opts.Refresh is set. Local index files
// are always read fresh.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	cacheKey := r.Keyer.ReportKey(opts.Package, opts.ReportKeyOpts())
	if opts.IsOnline() && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if report, err := graph.UnmarshalReport(data); err == nil {
				opts.Logger.Debug("report cache hit", "package", opts.Package)
				return &Result{Report: report, CacheHit: true}, nil
			}
		}
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	idx, err := r.LoadIndex(ctx, r.Sources(opts), opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Packages = idx.Len()

	opts.Logger.Info("loaded index",
		"repositories", len(opts.Repositories),
		"packages", idx.Len(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Analyse
	analyzeStart := time.Now()
	report, err := r.Analyze(ctx, idx, opts)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.Stats.AnalyzeTime = time.Since(analyzeStart)

	opts.Logger.Info("analysed dependencies",
		"package", report.Package,
		"nodes", report.Stats.Nodes,
		"edges", report.Stats.Edges,
		"cycle", report.HasCycle(),
		"duration", result.Stats.AnalyzeTime)

	if opts.IsOnline() {
		if data, err := graph.MarshalReport(report); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, TTLReport)
		}
	}

	return result, nil
}

// Sources returns one index source per repository in opts: remote archives in
// online mode, local flat files in test mode. Remote sources share one HTTP
// client backed by the runner's cache.
func (r *Runner) Sources(opts Options) []deps.Source {
	r.applyLogger(&opts)
	sources := make([]deps.Source, 0, len(opts.Repositories))
	if !opts.IsOnline() {
		for _, path := range opts.Repositories {
			sources = append(sources, flatfile.NewSource(path, opts.Logger))
		}
		return sources
	}

	client := apkrepo.NewClient(r.Cache, TTLIndex)
	client.WithKeyer(r.Keyer)
	for _, repo := range opts.Repositories {
		sources = append(sources, apk.NewSource(repo, client, opts.Logger))
	}
	return sources
}

// LoadIndex loads every source concurrently and merges the results in source
// order, so the first source wins for a name present in several. Any failing
// source fails the whole load.
func (r *Runner) LoadIndex(ctx context.Context, sources []deps.Source, refresh bool) (*deps.Index, error) {
	if len(sources) == 0 {
		return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "no repositories to load")
	}

	hooks := observability.Pipeline()
	indexes := make([]*deps.Index, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			hooks.OnLoadStart(gctx, src.Name())

			idx, err := src.Load(gctx, refresh)

			packages := 0
			if idx != nil {
				packages = idx.Len()
			}
			hooks.OnLoadComplete(gctx, src.Name(), packages, time.Since(start), err)
			if err != nil {
				return loadError(src.Name(), err)
			}

			r.Logger.Debug("loaded repository", "repo", src.Name(), "packages", packages, "duration", time.Since(start))
			indexes[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return deps.Merge(indexes...), nil
}

// Analyze resolves opts.Package against idx and builds its report.
//
// A root missing from idx fails with [pkgerrors.ErrCodePackageNotFound].
// Version mismatches, unresolved dependencies and cycles are not errors: they
// are recorded in the report.
func (r *Runner) Analyze(ctx context.Context, idx *deps.Index, opts Options) (*graph.Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnAnalyzeStart(ctx, opts.Package)

	report, err := analyze(idx, opts)

	nodes, hasCycle := 0, false
	if report != nil {
		nodes, hasCycle = report.Stats.Nodes, report.HasCycle()
	}
	hooks.OnAnalyzeComplete(ctx, opts.Package, nodes, hasCycle, time.Since(start), err)

	return report, err
}

func analyze(idx *deps.Index, opts Options) (*graph.Report, error) {
	version := deps.ParseVersion(opts.Version)

	if _, err := deps.DirectDependencies(idx, opts.Package, version, nil); err != nil {
		if errors.Is(err, deps.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, err,
				"package %q is not in any of %d repositories", opts.Package, len(opts.Repositories))
		}
		return nil, err
	}

	var notices []deps.Notice
	g := deps.BuildGraph(idx, opts.Package, deps.Options{
		Version:  version,
		MaxDepth: opts.MaxDepth,
		Notify: func(n deps.Notice) {
			notices = append(notices, n)
			opts.Logger.Warn("version mismatch",
				"package", n.Package,
				"requested", n.Requested,
				"using", n.Actual,
				"relation", n.Relation)
		},
	})

	cycle, _ := dag.FindCycle(g)
	order, hasCycle := dag.TopoSort(g)
	installOrder, _ := dag.InstallOrder(g)
	if hasCycle {
		opts.Logger.Warn("dependency cycle, load order is incomplete",
			"ordered", len(order),
			"packages", g.Len())
	}

	gj := graph.FromDAG(g)
	unresolved := gj.MarkUnresolved(idx.Contains)
	gj.Describe(func(name string) string {
		pkg, _ := idx.Lookup(name)
		return pkg.Description
	})
	var requiredBy map[string][]string
	for _, name := range unresolved {
		if requiredBy == nil {
			requiredBy = make(map[string][]string, len(unresolved))
		}
		requiredBy[name] = g.Dependents(name)
		opts.Logger.Debug("unresolved dependency", "name", name, "required_by", requiredBy[name])
	}

	root, _ := idx.Lookup(opts.Package)
	return &graph.Report{
		ID:           graph.NewID(),
		Package:      opts.Package,
		Requested:    version.String(),
		Version:      root.Version,
		MaxDepth:     opts.MaxDepth,
		Repositories: slices.Clone(opts.Repositories),
		Graph:        gj,
		Stats: graph.Stats{
			Nodes:      g.Len(),
			Edges:      g.EdgeCount(),
			External:   len(g.Frontier()),
			Unresolved: len(unresolved),
		},
		Unresolved:    unresolved,
		RequiredBy:    requiredBy,
		Cycle:         cycle,
		Order:         order,
		InstallOrder:  installOrder,
		OrderComplete: !hasCycle,
		Notices:       notices,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// loadError gives a failed repository load its error code.
func loadError(repo string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, integrations.ErrNotFound):
		return pkgerrors.Wrap(pkgerrors.ErrCodeNotFound, err, "repository %s has no index", repo)
	case errors.Is(err, integrations.ErrNetwork):
		return pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "fetch %s", repo)
	case errors.Is(err, fs.ErrNotExist):
		return pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "index file %s", repo)
	default:
		return fmt.Errorf("load %s: %w", repo, err)
	}
}
