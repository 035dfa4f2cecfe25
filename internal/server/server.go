// Package server exposes dependency analysis over HTTP.
//
// # Routes
//
//	GET    /healthz                    liveness and index status
//	GET    /metrics                    Prometheus metrics (when enabled)
//	GET    /v1/packages/{name}         index record and direct dependencies
//	GET    /v1/packages/{name}/graph   full report (?depth=&version=&refresh=)
//	POST   /v1/index/refresh           reload every repository
//	GET    /v1/reports                 saved reports (?package=&limit=)
//	GET    /v1/reports/{id}            one saved report
//	DELETE /v1/reports/{id}            delete a saved report
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with the
// status given by [errors.HTTPStatus].
//
// The merged repository index is loaded on first use and kept as a read-only
// snapshot that concurrent requests share. It is reloaded once it is older
// than Config.IndexTTL; concurrent reloads are collapsed into one.
//
// [errors.HTTPStatus]: github.com/matzehuels/pkggraph/pkg/errors.HTTPStatus
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/pkggraph/pkg/buildinfo"
	"github.com/matzehuels/pkggraph/pkg/deps"
	"github.com/matzehuels/pkggraph/pkg/observability"
	"github.com/matzehuels/pkggraph/pkg/pipeline"
	"github.com/matzehuels/pkggraph/pkg/storage"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Repositories []string // URLs in online mode, file paths in test mode
	Mode         string   // online (default) or test
	MaxDepth     int      // depth when a request gives none (default pipeline.DefaultMaxDepth)
	IndexTTL     time.Duration

	Runner  *pipeline.Runner          // default: uncached runner
	Store   storage.Store             // default: in-memory store
	Metrics *observability.Prometheus // optional; enables /metrics
	Logger  *log.Logger
}

// Server answers analysis requests against a shared index snapshot.
type Server struct {
	runner   *pipeline.Runner
	store    storage.Store
	metrics  *observability.Prometheus
	logger   *log.Logger
	base     pipeline.Options
	indexTTL time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	index   *snapshot
	started uint64 // loads started so far, guarded by mu
	loads   singleflight.Group

	loadIndex func(ctx context.Context, refresh bool) (*deps.Index, error)
}

// snapshot is a loaded index, when it was loaded and the sequence number of
// the load that produced it.
type snapshot struct {
	idx      *deps.Index
	loadedAt time.Time
	seq      uint64
}

// New creates a server. It does not load the index; the first request does.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewMemoryStore()
	}
	if cfg.IndexTTL <= 0 {
		cfg.IndexTTL = pipeline.TTLIndex
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = pipeline.DefaultMaxDepth
	}

	base := pipeline.Options{
		Repositories: cfg.Repositories,
		Mode:         cfg.Mode,
		MaxDepth:     cfg.MaxDepth,
		Logger:       cfg.Logger,
	}
	if err := base.ValidateForLoad(); err != nil {
		return nil, err
	}

	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		base:     base,
		indexTTL: cfg.IndexTTL,
		now:      time.Now,
	}
	s.loadIndex = func(ctx context.Context, refresh bool) (*deps.Index, error) {
		return s.runner.LoadIndex(ctx, s.runner.Sources(s.base), refresh)
	}
	return s, nil
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "version", buildinfo.Short(),
			"repositories", len(s.base.Repositories), "mode", s.base.Mode)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Index returns the current index snapshot, loading it if there is none, it
// is older than the TTL, or refresh is set.
func (s *Server) Index(ctx context.Context, refresh bool) (*deps.Index, error) {
	if !refresh {
		s.mu.RLock()
		snap := s.index
		s.mu.RUnlock()
		if snap != nil && s.now().Sub(snap.loadedAt) < s.indexTTL {
			return snap.idx, nil
		}
	}

	key := "load"
	if refresh {
		key = "refresh"
	}
	ch := s.loads.DoChan(key, func() (any, error) {
		s.mu.Lock()
		s.started++
		seq := s.started
		s.mu.Unlock()

		// The load outlives the request that started it.
		idx, err := s.loadIndex(context.WithoutCancel(ctx), refresh)
		if err != nil {
			return nil, err
		}
		return s.install(idx, seq, refresh), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*deps.Index), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// install sets idx as the snapshot unless a load that started later has
// already installed its own result, and returns the index now current.
func (s *Server) install(idx *deps.Index, seq uint64, refresh bool) *deps.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil && s.index.seq > seq {
		s.logger.Debug("discarding superseded index load", "packages", idx.Len())
		return s.index.idx
	}
	s.index = &snapshot{idx: idx, loadedAt: s.now(), seq: seq}
	s.logger.Info("index loaded", "packages", idx.Len(), "refresh", refresh)
	return idx
}

// loaded reports the current snapshot without loading.
func (s *Server) loaded() (*snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, s.index != nil
}
