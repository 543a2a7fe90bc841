// SPDX-License-Identifier: MIT

package search

import (
	"errors"

	"github.com/katalvlaran/phasegate/unitary"
)

// ErrBufferNotFilled is returned by MeetInTheMiddle under WithRequireFilled
// when the buffer still has unwritten entries.
var ErrBufferNotFilled = errors.New("search: buffer not fully filled")

// Candidate is one discovered diagonal sequence.
type Candidate struct {
	// Phase is the relative phase of Matrix, in [0, 2π).
	Phase float64

	// Gates is the full gate string, completion included.
	Gates string

	// Matrix is the completed matrix as computed by the search (from buffer
	// storage, so possibly rounded to single precision).
	Matrix unitary.Mat2

	// Error is Matrix.OffDiagonal().
	Error float64
}

// Sink receives candidates. Complete reports full coverage and is polled
// after every accepted candidate; once it returns true the search stops.
type Sink interface {
	OnCandidate(c Candidate)
	Complete() bool
}

// Stage names the pass that produced a Progress event.
type Stage string

const (
	StageExhaustive      Stage = "exhaustive"
	StageMeetInTheMiddle Stage = "meet-in-the-middle"
)

// Stats counts the work done by one pass.
type Stats struct {
	Stage    Stage
	Visited  int64 // buffer entries (exhaustive) or prefixes (meet-in-the-middle) started
	Products int64 // suffix·prefix multiplications (meet-in-the-middle only)
	Tested   int64 // completion tests
	Hits     int64 // diagonal completions reported to the sink
	Complete bool  // the sink reported full coverage
}

// Progress is passed to the progress hook. Done and Total count outer-loop
// steps of the current stage.
type Progress struct {
	Stats
	Done  int64
	Total int64
}

// ProgressFunc observes a running search. It must not mutate the buffer or
// the sink.
type ProgressFunc func(p Progress)

// Completion is a fixed gate suffix tested on every searched matrix.
type Completion struct {
	Gates  string
	Matrix unitary.Mat2
}

// Completions are the three suffixes tried on each matrix: basis change,
// flip, and basis change followed by flip. The bare matrix is never tested:
// every block ends in a phase gate after a basis change, so it is never
// diagonal on its own.
var Completions = [3]Completion{
	{Gates: "H", Matrix: unitary.H},
	{Gates: "X", Matrix: unitary.X},
	{Gates: "HX", Matrix: unitary.X.Mul(unitary.H)},
}
