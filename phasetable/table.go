// SPDX-License-Identifier: MIT

// Package phasetable owns the canonical bucket table and expands it to the
// full circle.
//
// The circle is quantized into Points slots of 2π/Points radians. Only the
// first eighth, PhaseCount = Points/8 buckets, is filled by search; slot
// b + k·PhaseCount is derived from bucket b by appending Corrections[k], an
// exact phase gate worth k·π/4.
//
// Fill policy: the first candidate for a bucket wins unless a later one has
// an off-diagonal error smaller by more than ReplaceMargin (25 %). Since
// search runs in non-decreasing length order this favors short sequences.
//
// A Table has a single writer (the search). Once the search returns it is
// read-only; no locking is done.
package phasetable

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/phasegate/search"
	"github.com/katalvlaran/phasegate/sequence"
	"github.com/katalvlaran/phasegate/unitary"
)

var (
	// ErrPointsNotDivisible is the fatal configuration error for a point
	// count that is not a multiple of 8.
	ErrPointsNotDivisible = errors.New("phasetable: points must be divisible by 8")

	// ErrBadPoints is returned for a non-positive point count.
	ErrBadPoints = errors.New("phasetable: points must be > 0")

	// ErrBucketOutOfRange is returned by FromEntries for a bucket outside
	// [0, PhaseCount).
	ErrBucketOutOfRange = errors.New("phasetable: bucket out of range")
)

// NotFound fills every output slot whose bucket was never found.
const NotFound = "NOT_FOUND"

// ReplaceMargin: a stored entry is replaced only when
// stored.Error > ReplaceMargin × candidate.Error.
const ReplaceMargin = 1.25

// Corrections[k] shifts the relative phase by exactly k·π/4.
// Corrections[0] is the empty string.
var Corrections = sequence.PhaseRuns

var correctionMatrix = func() (out [8]unitary.Mat2) {
	for k, g := range Corrections {
		out[k] = unitary.MustReplay(g)
	}
	return out
}()

// Entry is the accepted sequence for one canonical bucket.
type Entry struct {
	Bucket int
	Phase  float64 // radians in [0, 2π)
	Gates  string
	Matrix unitary.Mat2
	Error  float64
}

// Table is the canonical bucket table. It implements search.Sink.
type Table struct {
	points     int
	phaseCount int
	entries    []Entry
	ok         []bool
	found      int

	candidates   int64
	replacements int64
	rejected     int64
}

var _ search.Sink = (*Table)(nil)

// New creates an empty table for points slots.
// Errors: ErrBadPoints, ErrPointsNotDivisible.
func New(points int) (*Table, error) {
	if points <= 0 {
		return nil, fmt.Errorf("phasetable: New(%d): %w", points, ErrBadPoints)
	}
	if points%8 != 0 {
		return nil, fmt.Errorf("phasetable: New(%d): %w", points, ErrPointsNotDivisible)
	}
	pc := points / 8

	return &Table{
		points:     points,
		phaseCount: pc,
		entries:    make([]Entry, pc),
		ok:         make([]bool, pc),
	}, nil
}

// FromEntries builds a table directly from accepted entries, e.g. a
// diagnostic record read back from disk. Later duplicates of a bucket go
// through the normal replacement policy.
func FromEntries(points int, entries []Entry) (*Table, error) {
	t, err := New(points)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Bucket < 0 || e.Bucket >= t.phaseCount {
			return nil, fmt.Errorf("phasetable: FromEntries bucket %d: %w", e.Bucket, ErrBucketOutOfRange)
		}
		t.accept(e)
	}

	return t, nil
}

// Points returns the number of slots on the full circle.
func (t *Table) Points() int { return t.points }

// PhaseCount returns the number of canonical buckets (Points/8).
func (t *Table) PhaseCount() int { return t.phaseCount }

// Found returns how many buckets hold an entry.
func (t *Table) Found() int { return t.found }

// Complete reports whether every canonical bucket is found.
func (t *Table) Complete() bool { return t.found == t.phaseCount }

// Candidates returns how many candidates were offered.
func (t *Table) Candidates() int64 { return t.candidates }

// Replacements returns how many stored entries were replaced.
func (t *Table) Replacements() int64 { return t.replacements }

// Rejected returns how many candidates lost to a stored entry.
func (t *Table) Rejected() int64 { return t.rejected }

// Entry returns bucket b's entry and whether it is found.
func (t *Table) Entry(b int) (Entry, bool) {
	return t.entries[b], t.ok[b]
}

// Entries returns the found entries in bucket order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, t.found)
	for b, ok := range t.ok {
		if ok {
			out = append(out, t.entries[b])
		}
	}

	return out
}

// Missing returns the buckets that are not found, ascending.
func (t *Table) Missing() []int {
	var out []int
	for b, ok := range t.ok {
		if !ok {
			out = append(out, b)
		}
	}

	return out
}

// MissingAngles returns the angle in degrees of every missing bucket.
func (t *Table) MissingAngles() []float64 {
	missing := t.Missing()
	out := make([]float64, len(missing))
	for i, b := range missing {
		out[i] = t.SlotDegrees(b)
	}

	return out
}

// SlotDegrees returns the angle of slot s in degrees.
func (t *Table) SlotDegrees(s int) float64 {
	return float64(s) * 360 / float64(t.points)
}

// Slot returns round(φ·Points/2π) mod Points.
func (t *Table) Slot(phi float64) int {
	s := int(math.Round(unitary.NormalizePhase(phi) * float64(t.points) / unitary.TwoPi))
	return s % t.points
}

// OnCandidate applies the fill policy to c.
// Stage 1: slot = Slot(φ); bucket = slot mod PhaseCount; k0 = slot / PhaseCount.
// Stage 2: for k0 != 0 append Corrections[(8−k0) mod 8] so the stored entry
// realizes an angle in the canonical eighth (exact; error unchanged).
// Stage 3: store if empty, replace if stored.Error > ReplaceMargin·Error.
// Complexity: O(len(c.Gates)).
func (t *Table) OnCandidate(c search.Candidate) {
	t.candidates++
	slot := t.Slot(c.Phase)
	e := Entry{
		Bucket: slot % t.phaseCount,
		Phase:  c.Phase,
		Gates:  c.Gates,
		Matrix: c.Matrix,
		Error:  c.Error,
	}
	if k0 := slot / t.phaseCount; k0 != 0 {
		kc := (8 - k0) % 8
		e.Gates = sequence.Fold(c.Gates + Corrections[kc])
		e.Matrix = correctionMatrix[kc].Mul(c.Matrix)
		e.Phase = unitary.NormalizePhase(c.Phase + float64(kc)*math.Pi/4)
	}
	t.accept(e)
}

func (t *Table) accept(e Entry) {
	b := e.Bucket
	if !t.ok[b] {
		t.entries[b] = e
		t.ok[b] = true
		t.found++
		return
	}
	if t.entries[b].Error > ReplaceMargin*e.Error {
		t.entries[b] = e
		t.replacements++
		return
	}
	t.rejected++
}

// Expand writes the full-circle table. For every found bucket b:
//
//	table[b]                          = gates
//	table[(b + k·PhaseCount) % Points] = Fold(gates + Corrections[k]), k = 1..7
//
// Folding merges a trailing phase gate of a canonicalized entry with the
// appended correction, so no derived string carries a cancelling pair.
// Slots of missing buckets hold NotFound.
// Complexity: O(Points).
func (t *Table) Expand() []string {
	out := make([]string, t.points)
	for s := range out {
		out[s] = NotFound
	}
	for b, ok := range t.ok {
		if !ok {
			continue
		}
		g := t.entries[b].Gates
		out[b] = g
		for k := 1; k < 8; k++ {
			out[(b+k*t.phaseCount)%t.points] = sequence.Fold(g + Corrections[k])
		}
	}

	return out
}

// CorrectionOf returns the bucket slot s is derived from and the index k
// into Corrections appended to derive it.
func (t *Table) CorrectionOf(s int) (bucket, k int) {
	return s % t.phaseCount, s / t.phaseCount
}
