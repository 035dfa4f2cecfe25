package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/pkggraph/pkg/graph"
)

// MemoryStore keeps reports in memory. Stored reports are copies, so callers
// may keep modifying the reports they pass in or get back.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, r *graph.Report) error {
	prepare(r)
	data, err := graph.MarshalReport(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = data
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*graph.Report, error) {
	s.mu.RLock()
	data, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return graph.UnmarshalReport(data)
}

func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]*graph.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*graph.Report
	for _, data := range s.reports {
		r, err := graph.UnmarshalReport(data)
		if err != nil {
			return nil, err
		}
		if opts.match(r) {
			out = append(out, r)
		}
	}
	newestFirst(out)
	if len(out) > opts.limit() {
		out = out[:opts.limit()]
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
