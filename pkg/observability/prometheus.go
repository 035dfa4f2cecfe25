package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	gatherer prometheus.Gatherer

	loadsTotal      *prometheus.CounterVec
	loadDuration    *prometheus.HistogramVec
	indexPackages   *prometheus.GaugeVec
	analysesTotal   *prometheus.CounterVec
	analyzeDuration prometheus.Histogram
	graphNodes      prometheus.Histogram
	cacheOps        *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpErrors      *prometheus.CounterVec
	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	p := &Prometheus{
		gatherer: reg,
		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pkggraph_index_loads_total",
			Help: "Repository index loads by outcome.",
		}, []string{"repo", "result"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pkggraph_index_load_duration_seconds",
			Help:    "Time taken to load a repository index.",
			Buckets: prometheus.DefBuckets,
		}, []string{"repo"}),
		indexPackages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pkggraph_index_packages",
			Help: "Number of packages in the last loaded index.",
		}, []string{"repo"}),
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pkggraph_analyses_total",
			Help: "Dependency analyses by outcome.",
		}, []string{"result"}),
		analyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pkggraph_analyze_duration_seconds",
			Help:    "Time taken to resolve and analyse a package.",
			Buckets: prometheus.DefBuckets,
		}),
		graphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pkggraph_graph_nodes",
			Help:    "Expanded packages per analysis.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pkggraph_cache_operations_total",
			Help: "Cache operations by key type and outcome.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pkggraph_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{"key_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pkggraph_http_client_requests_total",
			Help: "Outgoing HTTP requests by host and status code.",
		}, []string{"host", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pkggraph_http_client_duration_seconds",
			Help:    "Outgoing HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pkggraph_http_client_errors_total",
			Help: "Outgoing HTTP requests that failed without a response.",
		}, []string{"host"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pkggraph_api_requests_total",
			Help: "Requests served by the HTTP service by route and status code.",
		}, []string{"route", "code"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pkggraph_api_request_duration_seconds",
			Help:    "HTTP service latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(
		p.loadsTotal, p.loadDuration, p.indexPackages,
		p.analysesTotal, p.analyzeDuration, p.graphNodes,
		p.cacheOps, p.cacheBytes,
		p.httpRequests, p.httpDuration, p.httpErrors,
		p.apiRequests, p.apiDuration,
	)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

// Register installs p as the pipeline, cache and HTTP hooks.
func (p *Prometheus) Register() {
	Register(p)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnLoadStart(context.Context, string) {}

func (p *Prometheus) OnLoadComplete(_ context.Context, repo string, packages int, d time.Duration, err error) {
	p.loadsTotal.WithLabelValues(repo, result(err)).Inc()
	p.loadDuration.WithLabelValues(repo).Observe(d.Seconds())
	if err == nil {
		p.indexPackages.WithLabelValues(repo).Set(float64(packages))
	}
}

func (p *Prometheus) OnAnalyzeStart(context.Context, string) {}

func (p *Prometheus) OnAnalyzeComplete(_ context.Context, _ string, nodes int, hasCycle bool, d time.Duration, err error) {
	outcome := result(err)
	if err == nil && hasCycle {
		outcome = "cycle"
	}
	p.analysesTotal.WithLabelValues(outcome).Inc()
	p.analyzeDuration.Observe(d.Seconds())
	if err == nil {
		p.graphNodes.Observe(float64(nodes))
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	p.httpRequests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, _, host, _ string, _ error) {
	p.httpErrors.WithLabelValues(host).Inc()
}

// ObserveRequest records one request served by the HTTP service.
func (p *Prometheus) ObserveRequest(route string, code int, d time.Duration) {
	p.apiRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	p.apiDuration.WithLabelValues(route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
