// SPDX-License-Identifier: MIT

// Package output writes the run artifacts: the diagnostic record of canonical
// buckets, the expanded full-circle table and an optional metrics textfile.
//
// The encoding is chosen from the file extension: ".json" or ".yaml"/".yml".
// Identical table state always produces identical bytes.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/phasegate/phasetable"
	"github.com/katalvlaran/phasegate/unitary"
)

// ErrUnknownFormat is returned for a path whose extension is neither JSON
// nor YAML.
var ErrUnknownFormat = errors.New("output: unknown file format")

// ErrBucketMismatch is returned by LoadTable for a diagnostic element whose
// bucket field differs from its index.
var ErrBucketMismatch = errors.New("output: bucket does not match element index")

// Format is an artifact encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatOf picks the encoding from the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}

	return "", fmt.Errorf("output: %q: %w", path, ErrUnknownFormat)
}

// DiagnosticEntry is one found bucket in the diagnostic record.
type DiagnosticEntry struct {
	Bucket  int     `json:"bucket" yaml:"bucket"`
	Phase   float64 `json:"phase" yaml:"phase"`
	Degrees float64 `json:"degrees" yaml:"degrees"`
	Gates   string  `json:"gates" yaml:"gates"`
	Matrix  string  `json:"matrix" yaml:"matrix"`
	Error   float64 `json:"error" yaml:"error"`
}

// Diagnostics renders tab as a slice of length PhaseCount; missing buckets
// are nil and encode as null.
func Diagnostics(tab *phasetable.Table) []*DiagnosticEntry {
	out := make([]*DiagnosticEntry, tab.PhaseCount())
	for _, e := range tab.Entries() {
		out[e.Bucket] = &DiagnosticEntry{
			Bucket:  e.Bucket,
			Phase:   e.Phase,
			Degrees: e.Phase * 180 / math.Pi,
			Gates:   e.Gates,
			Matrix:  e.Matrix.Short(),
			Error:   e.Error,
		}
	}

	return out
}

// WriteDiagnostics writes the diagnostic record of tab to path.
func WriteDiagnostics(path string, tab *phasetable.Table) error {
	return write(path, Diagnostics(tab))
}

// WriteTable writes the expanded table to path.
func WriteTable(path string, full []string) error {
	return write(path, full)
}

// WriteMetrics writes every metric of g to path in the Prometheus text
// exposition format.
func WriteMetrics(path string, g prometheus.Gatherer) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("output: write metrics %q: %w", path, err)
	}

	return nil
}

// ReadDiagnostics loads a diagnostic record written by WriteDiagnostics.
func ReadDiagnostics(path string) ([]*DiagnosticEntry, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("output: read %q: %w", path, err)
	}
	var out []*DiagnosticEntry
	switch f {
	case JSON:
		err = json.Unmarshal(data, &out)
	case YAML:
		err = yaml.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, fmt.Errorf("output: decode %q: %w", path, err)
	}

	return out, nil
}

// LoadTable rebuilds a table from a diagnostic record. The record holds
// PhaseCount elements, so the table has 8·len(record) points. Matrices are
// recomputed by replaying each gate string. Element i must be null or carry
// bucket i (ErrBucketMismatch).
func LoadTable(path string) (*phasetable.Table, error) {
	record, err := ReadDiagnostics(path)
	if err != nil {
		return nil, err
	}
	entries := make([]phasetable.Entry, 0, len(record))
	for i, d := range record {
		if d == nil {
			continue
		}
		if d.Bucket != i {
			return nil, fmt.Errorf("output: %q element %d has bucket %d: %w", path, i, d.Bucket, ErrBucketMismatch)
		}
		m, err := unitary.Replay(d.Gates)
		if err != nil {
			return nil, fmt.Errorf("output: %q element %d: %w", path, i, err)
		}
		entries = append(entries, phasetable.Entry{
			Bucket: d.Bucket,
			Phase:  d.Phase,
			Gates:  d.Gates,
			Matrix: m,
			Error:  d.Error,
		})
	}

	return phasetable.FromEntries(8*len(record), entries)
}

func write(path string, v any) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := encode(f, v)
	if err != nil {
		return fmt.Errorf("output: encode %q: %w", path, err)
	}
	if err = ensureDir(path); err != nil {
		return err
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("output: write %q: %w", path, err)
	}

	return nil
}

func encode(f Format, v any) ([]byte, error) {
	if f == YAML {
		var sb strings.Builder
		enc := yaml.NewEncoder(&sb)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return []byte(sb.String()), nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: create %q: %w", dir, err)
	}

	return nil
}
