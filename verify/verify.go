// SPDX-License-Identifier: MIT

// Package verify replays accepted table entries through the matrix algebra
// in double precision, independently of any shortcut the search took.
//
// Verification never fails a run: it returns a Report whose mismatches the
// caller logs for manual triage.
package verify

import (
	"math"

	"github.com/katalvlaran/phasegate/phasetable"
	"github.com/katalvlaran/phasegate/unitary"
)

// Reason classifies a mismatch.
type Reason string

const (
	ReasonReplay      Reason = "replay failed"
	ReasonNotDiagonal Reason = "not diagonal"
	ReasonPhase       Reason = "phase mismatch"
	ReasonMissingSlot Reason = "slot unresolved for a found bucket"
	ReasonOrphanSlot  Reason = "slot resolved for a missing bucket"
)

// Mismatch describes one failed check. Slot is −1 for canonical checks.
type Mismatch struct {
	Bucket   int
	Slot     int
	Gates    string
	Expected float64 // phase, radians
	Actual   float64 // phase, radians
	Residual float64 // off-diagonal magnitude of the replayed matrix
	Reason   Reason
	Err      error
}

// Report is the outcome of one verification pass.
type Report struct {
	Checked    int
	Mismatches []Mismatch
}

// OK reports whether no mismatch was found.
func (r Report) OK() bool { return len(r.Mismatches) == 0 }

// check replays gates and compares against the expected phase.
func check(gates string, expected, eps float64) (m Mismatch, ok bool) {
	m = Mismatch{Gates: gates, Expected: expected, Slot: -1}
	mat, err := unitary.Replay(gates)
	if err != nil {
		m.Reason, m.Err = ReasonReplay, err
		return m, false
	}
	m.Residual = mat.OffDiagonal()
	m.Actual = mat.RelativePhase()
	if !mat.IsDiagonal(eps) {
		m.Reason = ReasonNotDiagonal
		return m, false
	}
	if unitary.PhaseDistance(m.Actual, expected) >= eps {
		m.Reason = ReasonPhase
		return m, false
	}

	return m, true
}

// Canonical replays every found bucket's gate string from the identity and
// checks it is diagonal within eps with the recorded phase within eps.
// Complexity: O(Σ len(gates)).
func Canonical(tab *phasetable.Table, eps float64) Report {
	var r Report
	for _, e := range tab.Entries() {
		r.Checked++
		if m, ok := check(e.Gates, e.Phase, eps); !ok {
			m.Bucket = e.Bucket
			r.Mismatches = append(r.Mismatches, m)
		}
	}

	return r
}

// Expanded checks every slot of an expanded table: slot b + k·PhaseCount of
// a found bucket b must realize entry.Phase + k·π/4, and slots of missing
// buckets must hold phasetable.NotFound.
// Complexity: O(Σ len(full[s])).
func Expanded(tab *phasetable.Table, full []string, eps float64) Report {
	var r Report
	for s, gates := range full {
		b, k := tab.CorrectionOf(s)
		e, found := tab.Entry(b)
		r.Checked++
		switch {
		case !found && gates == phasetable.NotFound:
			continue
		case !found:
			r.Mismatches = append(r.Mismatches, Mismatch{Bucket: b, Slot: s, Gates: gates, Reason: ReasonOrphanSlot})
			continue
		case gates == phasetable.NotFound:
			r.Mismatches = append(r.Mismatches, Mismatch{Bucket: b, Slot: s, Gates: gates, Reason: ReasonMissingSlot})
			continue
		}
		want := unitary.NormalizePhase(e.Phase + float64(k)*math.Pi/4)
		if m, ok := check(gates, want, eps); !ok {
			m.Bucket, m.Slot = b, s
			r.Mismatches = append(r.Mismatches, m)
		}
	}

	return r
}
