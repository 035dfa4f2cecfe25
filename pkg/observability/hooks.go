// Package observability lets callers watch the pipeline without the pipeline
// depending on a metrics backend.
//
// Instrumented code asks for the current hooks and reports events to them:
//
//	hooks := observability.Pipeline()
//	hooks.OnAnalyzeStart(ctx, pkg)
//	...
//	hooks.OnAnalyzeComplete(ctx, pkg, nodes, hasCycle, time.Since(start), err)
//
// Until something is registered the hooks are [Noop]. A program installs a
// backend once at startup:
//
//	prom := observability.NewPrometheus(prometheus.NewRegistry())
//	observability.Register(prom)
//
// [Prometheus] is the bundled backend.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives index load and analysis events.
type PipelineHooks interface {
	// One pair per repository load.
	OnLoadStart(ctx context.Context, repo string)
	OnLoadComplete(ctx context.Context, repo string, packages int, duration time.Duration, err error)

	// One pair per analysed root package.
	OnAnalyzeStart(ctx context.Context, pkg string)
	OnAnalyzeComplete(ctx context.Context, pkg string, nodeCount int, hasCycle bool, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType names the kind of
// entry, e.g. "http" or "report".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives outgoing repository requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError is called when no response arrived at all.
	OnError(ctx context.Context, method, host, path string, err error)
}

// Noop implements every hook interface and does nothing. Embed it to
// implement only some events.
type Noop struct{}

func (Noop) OnLoadStart(context.Context, string)                                        {}
func (Noop) OnLoadComplete(context.Context, string, int, time.Duration, error)          {}
func (Noop) OnAnalyzeStart(context.Context, string)                                     {}
func (Noop) OnAnalyzeComplete(context.Context, string, int, bool, time.Duration, error) {}
func (Noop) OnCacheHit(context.Context, string)                                         {}
func (Noop) OnCacheMiss(context.Context, string)                                        {}
func (Noop) OnCacheSet(context.Context, string, int)                                    {}
func (Noop) OnRequest(context.Context, string, string, string)                          {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration)     {}
func (Noop) OnError(context.Context, string, string, string, error)                     {}

var (
	_ PipelineHooks = Noop{}
	_ CacheHooks    = Noop{}
	_ HTTPHooks     = Noop{}
)

var registry = struct {
	sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}{pipeline: Noop{}, cache: Noop{}, http: Noop{}}

// Register installs h for every hook interface it implements and reports
// how many that was. Later registrations replace earlier ones.
func Register(h any) int {
	registry.Lock()
	defer registry.Unlock()

	n := 0
	if p, ok := h.(PipelineHooks); ok {
		registry.pipeline = p
		n++
	}
	if c, ok := h.(CacheHooks); ok {
		registry.cache = c
		n++
	}
	if x, ok := h.(HTTPHooks); ok {
		registry.http = x
		n++
	}
	return n
}

// Reset puts [Noop] back in place of every registered hook.
func Reset() {
	registry.Lock()
	defer registry.Unlock()
	registry.pipeline, registry.cache, registry.http = Noop{}, Noop{}, Noop{}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.pipeline
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.cache
}

// HTTP returns the registered HTTP client hooks.
func HTTP() HTTPHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.http
}
