package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheus(prometheus.NewRegistry())

	p.OnLoadComplete(ctx, "main", 120, time.Second, nil)
	p.OnLoadComplete(ctx, "main", 0, time.Second, errors.New("boom"))
	p.OnAnalyzeComplete(ctx, "curl", 8, false, time.Millisecond, nil)
	p.OnAnalyzeComplete(ctx, "A", 5, true, time.Millisecond, nil)
	p.OnCacheHit(ctx, "index")
	p.OnCacheMiss(ctx, "index")
	p.OnCacheSet(ctx, "index", 512)
	p.OnResponse(ctx, "GET", "example.org", "/", 200, time.Millisecond)
	p.OnError(ctx, "GET", "example.org", "/", errors.New("reset"))
	p.ObserveRequest("/v1/packages/{name}", 404, time.Millisecond)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"load ok", testutil.ToFloat64(p.loadsTotal.WithLabelValues("main", "ok")), 1},
		{"load error", testutil.ToFloat64(p.loadsTotal.WithLabelValues("main", "error")), 1},
		{"index size kept from last success", testutil.ToFloat64(p.indexPackages.WithLabelValues("main")), 120},
		{"analysis ok", testutil.ToFloat64(p.analysesTotal.WithLabelValues("ok")), 1},
		{"analysis cycle", testutil.ToFloat64(p.analysesTotal.WithLabelValues("cycle")), 1},
		{"cache hit", testutil.ToFloat64(p.cacheOps.WithLabelValues("index", "hit")), 1},
		{"cache bytes", testutil.ToFloat64(p.cacheBytes.WithLabelValues("index")), 512},
		{"http 200", testutil.ToFloat64(p.httpRequests.WithLabelValues("example.org", "200")), 1},
		{"http errors", testutil.ToFloat64(p.httpErrors.WithLabelValues("example.org")), 1},
		{"api requests", testutil.ToFloat64(p.apiRequests.WithLabelValues("/v1/packages/{name}", "404")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestPrometheusHandler(t *testing.T) {
	p := NewPrometheus(prometheus.NewRegistry())
	p.OnAnalyzeComplete(context.Background(), "curl", 3, false, time.Millisecond, nil)

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `pkggraph_analyses_total{result="ok"} 1`) {
		t.Errorf("metrics output missing analyses counter:\n%s", body)
	}
}

func TestPrometheusRegister(t *testing.T) {
	defer Reset()
	p := NewPrometheus(prometheus.NewRegistry())
	p.Register()
	if Pipeline() != PipelineHooks(p) || Cache() != CacheHooks(p) || HTTP() != HTTPHooks(p) {
		t.Error("Register did not install all hooks")
	}
}
