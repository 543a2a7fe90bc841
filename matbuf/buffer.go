// SPDX-License-Identifier: MIT

// Package matbuf stores one precomputed matrix per sequence index.
//
// Entry i is Block(TrailingBlock(i)) · entry(Predecessor(i)), with the
// identity standing in for Predecessor == −1. Because Predecessor(i) < i,
// filling in increasing index order touches every entry exactly once with
// one 2×2 multiply.
//
// A Buffer has a single writer. Fill must complete (or be abandoned) before
// any reader uses Get from another goroutine; no locking is done.
//
// Memory: Capacity() × 32 bytes (Single) or × 64 bytes (Double). Depth 24 in
// single precision is ~1 GiB.
package matbuf

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/phasegate/sequence"
	"github.com/katalvlaran/phasegate/unitary"
)

var (
	// ErrBadDepth is returned by New for a depth outside [1, MaxDepth].
	ErrBadDepth = errors.New("matbuf: depth must be in [1, MaxDepth]")

	// ErrBadPrecision is returned by ParsePrecision for unknown names.
	ErrBadPrecision = errors.New("matbuf: unknown precision")
)

// Buffer is a fixed-capacity array of matrices indexed by sequence index.
// Exactly one of single/double is allocated.
type Buffer struct {
	depth     int
	capacity  int
	precision Precision
	single    []unitary.Compact
	double    []unitary.Mat2
	filled    int // entries [0, filled) are written
}

// New allocates a buffer holding every index with 1..depth blocks.
// Stage 1 (Validate): depth in [1, MaxDepth].
// Stage 2 (Prepare): capacity = StartIndexForOpCount(depth+1).
// Stage 3 (Finalize): allocate one backing slice for the chosen precision.
// Complexity: O(capacity) memory, zeroed by the runtime.
func New(depth int, opts ...Option) (*Buffer, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, fmt.Errorf("matbuf: New(%d): %w", depth, ErrBadDepth)
	}
	o := gatherOptions(opts)
	b := &Buffer{
		depth:     depth,
		capacity:  sequence.StartIndexForOpCount(depth + 1),
		precision: o.precision,
	}
	if b.precision == Double {
		b.double = make([]unitary.Mat2, b.capacity)
	} else {
		b.single = make([]unitary.Compact, b.capacity)
	}

	return b, nil
}

// Depth returns the maximum block count stored.
func (b *Buffer) Depth() int { return b.depth }

// Capacity returns the number of indices the buffer holds.
func (b *Buffer) Capacity() int { return b.capacity }

// Precision returns the storage precision.
func (b *Buffer) Precision() Precision { return b.precision }

// Filled returns how many leading entries have been written by Fill.
func (b *Buffer) Filled() int { return b.filled }

// Full reports whether Fill has written every entry.
func (b *Buffer) Full() bool { return b.filled == b.capacity }

// Bytes returns the size of the backing storage.
func (b *Buffer) Bytes() int64 {
	if b.precision == Double {
		return int64(b.capacity) * 64
	}

	return int64(b.capacity) * 32
}

// Range returns the half-open index range [lo, hi) of sequences with exactly
// n blocks. n must be in [1, Depth()].
func (b *Buffer) Range(n int) (lo, hi int) {
	return sequence.StartIndexForOpCount(n), sequence.StartIndexForOpCount(n + 1)
}

// Get returns entry i widened to double precision.
// Complexity: O(1).
func (b *Buffer) Get(i int) unitary.Mat2 {
	if b.precision == Double {
		return b.double[i]
	}

	return b.single[i].Expand()
}

// Set stores m at i, narrowing it in single precision.
// Complexity: O(1).
func (b *Buffer) Set(i int, m unitary.Mat2) {
	if b.precision == Double {
		b.double[i] = m
		return
	}
	b.single[i] = m.Compact()
}

// predecessor returns the stored matrix for Predecessor(i), or the identity.
func (b *Buffer) predecessor(i int) unitary.Mat2 {
	p := sequence.Predecessor(i)
	if p < 0 {
		return unitary.Identity
	}

	return b.Get(p)
}

// Fill computes and stores every not-yet-written entry in increasing index
// order, calling visit after each store. It returns true as soon as visit
// returns true, leaving later entries unwritten; a later Fill call resumes
// from the first unwritten index. visit may be nil.
//
// Complexity: O(capacity) multiplies in total across calls.
func (b *Buffer) Fill(visit func(i int, m unitary.Mat2) bool) (complete bool) {
	for i := b.filled; i < b.capacity; i++ {
		// The predecessor is read back from storage, so single precision
		// rounding accumulates the same way on every run.
		m := sequence.TrailingBlock(i).Matrix().Mul(b.predecessor(i))
		b.Set(i, m)
		b.filled = i + 1
		if visit != nil && visit(i, b.Get(i)) {
			return true
		}
	}

	return false
}
