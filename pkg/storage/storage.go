// Package storage keeps finished analysis reports.
//
// Reports are stored whole, keyed by [graph.Report.ID], with implementations
// for different backends:
//   - memory: In-memory storage for the HTTP service and tests
//   - file: One JSON file per report for CLI use
//   - mongo: A MongoDB collection for shared deployments
//
// # Usage
//
//	store, err := storage.Open(ctx, storage.Config{Backend: storage.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.Save(ctx, report); err != nil {
//	    return err
//	}
//	recent, err := store.List(ctx, storage.ListOptions{Package: "curl", Limit: 10})
package storage

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/matzehuels/pkggraph/pkg/graph"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("report not found")

	// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store is the interface for report storage backends.
type Store interface {
	// Save stores a report, replacing any report with the same ID.
	// A report without an ID is given a fresh one.
	Save(ctx context.Context, r *graph.Report) error

	// Get retrieves a report by ID.
	// Returns an error wrapping ErrNotFound if the report doesn't exist.
	Get(ctx context.Context, id string) (*graph.Report, error)

	// List returns reports newest first.
	List(ctx context.Context, opts ListOptions) ([]*graph.Report, error)

	// Delete removes a report. Deleting a missing report is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}

// ListOptions filters [Store.List].
type ListOptions struct {
	Package string // Only reports for this root package (empty: all)
	Limit   int    // Maximum number of reports (0: DefaultListLimit)
}

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

func (o ListOptions) match(r *graph.Report) bool {
	return o.Package == "" || r.Package == o.Package
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string // memory, file (default) or mongo
	Dir      string // file: report directory (default: <user config dir>/pkggraph/reports)
	MongoURI string // mongo: connection string
	Database string // mongo: database name (default: DefaultDatabase)
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		s = NewMemoryStore()
	case BackendFile, "":
		s, err = NewFileStore(cfg.Dir)
	case BackendMongo:
		s, err = NewMongoStore(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.Database})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultDir returns the default directory for stored reports.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "pkggraph", "reports"), nil
}

// prepare assigns an ID and timestamp to a report about to be saved.
func prepare(r *graph.Report) {
	if r.ID == "" {
		r.ID = graph.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

// newestFirst sorts reports by creation time, newest first, then by ID.
func newestFirst(reports []*graph.Report) {
	slices.SortFunc(reports, func(a, b *graph.Report) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
