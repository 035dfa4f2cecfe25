package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Report Serialization API
// =============================================================================

// MarshalReport converts a report to indented JSON bytes.
func MarshalReport(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteReport(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalReport decodes JSON bytes into a report.
func UnmarshalReport(data []byte) (*Report, error) {
	return ReadReport(bytes.NewReader(data))
}

// WriteReport writes a report as JSON to an io.Writer.
func WriteReport(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteReportFile writes a report to a JSON file.
// The file is created with 0644 permissions.
func WriteReportFile(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteReport(r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadReport decodes a JSON report from an io.Reader.
// The embedded graph is validated with [ToDAG].
func ReadReport(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := ToDAG(r.Graph); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return &r, nil
}

// ReadReportFile reads a JSON report file.
func ReadReportFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadReport(f)
}
