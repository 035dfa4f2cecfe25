package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys. All callers that share a cache must share a Keyer
// so that keys line up.
type Keyer interface {
	// HTTPKey is the key for a raw HTTP response body.
	HTTPKey(namespace, key string) string
	// ReportKey is the key for a finished analysis report.
	ReportKey(pkg string, opts ReportKeyOpts) string
}

// ReportKeyOpts holds the analysis inputs that change a report.
type ReportKeyOpts struct {
	Version      string   `json:"version"`
	MaxDepth     int      `json:"max_depth"`
	Repositories []string `json:"repositories"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// ReportKey returns "report:<sha256>" over the package and options.
func (DefaultKeyer) ReportKey(pkg string, opts ReportKeyOpts) string {
	return "report:" + digest(pkg, opts)
}

// digest is the hex SHA-256 of the JSON encoding of parts.
func digest(parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
