package graph

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pkggraph/pkg/deps"
)

// Report is the result of analysing one root package.
// Used for CLI output, API responses, caching and storage.
type Report struct {
	ID           string   `json:"id" bson:"_id"`
	Package      string   `json:"package" bson:"package"`
	Requested    string   `json:"requested" bson:"requested"`                  // "latest" or the exact version asked for
	Version      string   `json:"version" bson:"version"`                      // Version found in the index
	MaxDepth     int      `json:"max_depth" bson:"max_depth"`
	Repositories []string `json:"repositories" bson:"repositories"`

	Graph      Graph    `json:"graph" bson:"graph"`
	Stats      Stats    `json:"stats" bson:"stats"`
	Unresolved []string `json:"unresolved,omitempty" bson:"unresolved,omitempty"`
	// RequiredBy maps each unresolved name to the packages that depend on it.
	RequiredBy map[string][]string `json:"required_by,omitempty" bson:"required_by,omitempty"`

	// Cycle is the first cycle found, first and last element equal.
	Cycle []string `json:"cycle,omitempty" bson:"cycle,omitempty"`
	// Order lists packages dependents-first; InstallOrder is its reverse.
	// Both are partial when OrderComplete is false.
	Order         []string `json:"order" bson:"order"`
	InstallOrder  []string `json:"install_order" bson:"install_order"`
	OrderComplete bool     `json:"order_complete" bson:"order_complete"`

	Notices   []deps.Notice `json:"notices,omitempty" bson:"notices,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

// Stats summarises a report's graph.
type Stats struct {
	Nodes      int `json:"nodes" bson:"nodes"`           // Expanded packages
	Edges      int `json:"edges" bson:"edges"`           // Dependency references from expanded packages
	External   int `json:"external" bson:"external"`     // Referenced but not expanded
	Unresolved int `json:"unresolved" bson:"unresolved"` // Referenced but missing from every index
}

// NewID returns a fresh report ID.
func NewID() string { return uuid.NewString() }

// HasCycle reports whether the analysed graph contains a cycle.
func (r *Report) HasCycle() bool { return len(r.Cycle) > 0 }
