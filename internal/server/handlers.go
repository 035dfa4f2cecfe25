package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pkggraph/pkg/buildinfo"
	"github.com/matzehuels/pkggraph/pkg/deps"
	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
	"github.com/matzehuels/pkggraph/pkg/storage"
)

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/packages/{name}", s.handlePackage)
		r.Get("/packages/{name}/graph", s.handleGraph)
		r.Post("/index/refresh", s.handleRefresh)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Delete("/reports/{id}", s.handleDeleteReport)
	})

	return r
}

// =============================================================================
// Responses
// =============================================================================

type healthResponse struct {
	Status      string     `json:"status"`
	Version     string     `json:"version"`
	IndexLoaded bool       `json:"index_loaded"`
	Packages    int        `json:"packages"`
	LoadedAt    *time.Time `json:"loaded_at,omitempty"`
}

type dependency struct {
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"` // present in the index
}

type packageResponse struct {
	Name         string        `json:"name"`
	Version      string        `json:"version"`
	Description  string        `json:"description,omitempty"`
	Dependencies []dependency  `json:"dependencies"`
	Notices      []deps.Notice `json:"notices,omitempty"`
}

type refreshResponse struct {
	Packages int       `json:"packages"`
	LoadedAt time.Time `json:"loaded_at"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: buildinfo.Version}
	if snap, ok := s.loaded(); ok {
		resp.IndexLoaded = true
		resp.Packages = snap.idx.Len()
		resp.LoadedAt = &snap.loadedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := pkgerrors.ValidatePackageName(name); err != nil {
		s.writeError(w, r, err)
		return
	}

	idx, err := s.Index(r.Context(), false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var notices []deps.Notice
	version := deps.ParseVersion(r.URL.Query().Get("version"))
	direct, err := deps.DirectDependencies(idx, name, version, func(n deps.Notice) {
		notices = append(notices, n)
	})
	if errors.Is(err, deps.ErrNotFound) {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, err, "package %q is not in the index", name))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pkg, _ := idx.Lookup(name)
	resp := packageResponse{
		Name:         pkg.Name,
		Version:      pkg.Version,
		Description:  pkg.Description,
		Dependencies: make([]dependency, len(direct)),
		Notices:      notices,
	}
	for i, d := range direct {
		resp.Dependencies[i] = dependency{Name: d, Resolved: idx.Contains(d)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := s.base
	opts.Package = chi.URLParam(r, "name")
	opts.Version = q.Get("version")
	if v := q.Get("depth"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, pkgerrors.New(pkgerrors.ErrCodeInvalidDepth, "depth must be an integer, got %q", v))
			return
		}
		if err := pkgerrors.ValidateDepth(depth); err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.MaxDepth = depth
	}
	if err := opts.ValidateForAnalyze(); err != nil {
		s.writeError(w, r, err)
		return
	}

	idx, err := s.Index(r.Context(), q.Get("refresh") == "true")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.runner.Analyze(r.Context(), idx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), report); err != nil {
		s.logger.Warn("save report failed", "id", report.ID, "error", err)
	} else {
		w.Header().Set("Location", "/v1/reports/"+report.ID)
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	idx, err := s.Index(r.Context(), true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := refreshResponse{Packages: idx.Len(), LoadedAt: s.now().UTC()}
	if snap, ok := s.loaded(); ok {
		resp.LoadedAt = snap.loadedAt.UTC()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := storage.ListOptions{Package: q.Get("package")}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			s.writeError(w, r, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "limit must be a positive integer, got %q", v))
			return
		}
		opts.Limit = limit
	}

	reports, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": nonNil(reports)})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
