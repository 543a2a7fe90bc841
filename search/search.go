// SPDX-License-Identifier: MIT

// Package search discovers gate sequences whose completed matrix is
// diagonal, and reports them to a Sink.
//
// Two passes share one matbuf.Buffer:
//
//   - Exhaustive drives buffer population. Each freshly stored matrix M is
//     tested with the three Completions; diagonal results go to the sink.
//     The empty sequence (phase 0) is reported before anything else.
//
//   - MeetInTheMiddle runs only when Exhaustive exhausted the buffer. Every
//     prefix p (1..depth−1 blocks) is combined with every suffix s (exactly
//     depth blocks) as buffer[s]·buffer[p], reaching up to 2·depth − 1
//     blocks for one multiply per pair.
//
// Both passes stop the instant the sink reports full coverage. Sequences are
// visited in non-decreasing block count, so earlier candidates are never
// longer than later ones.
//
// Cancellation: the context is polled every WithCheckEvery outer steps; a
// cancelled search returns ctx.Err() together with the stats so far.
package search

import (
	"context"

	"github.com/katalvlaran/phasegate/matbuf"
	"github.com/katalvlaran/phasegate/sequence"
	"github.com/katalvlaran/phasegate/unitary"
)

// runner carries one pass's state.
type runner struct {
	o    options
	sink Sink
	st   Stats
}

// try runs the completion test on m. prefix is −1 for a plain buffer index.
// It returns true once the sink is complete.
func (r *runner) try(m unitary.Mat2, prefix, idx int) bool {
	for k := range Completions {
		c := &Completions[k]
		r.st.Tested++
		cm := c.Matrix.Mul(m)
		if !cm.IsDiagonal(r.o.eps) {
			continue
		}
		r.st.Hits++
		r.sink.OnCandidate(Candidate{
			Phase:  cm.RelativePhase(),
			Gates:  sequence.Simplify(gatesFor(prefix, idx) + c.Gates),
			Matrix: cm,
			Error:  cm.OffDiagonal(),
		})
		if r.sink.Complete() {
			r.st.Complete = true
			return true
		}
	}

	return false
}

// gatesFor renders the block sequence of idx, preceded by prefix's when
// prefix >= 0. Only called on a hit, so decoding stays off the hot path.
func gatesFor(prefix, idx int) string {
	if prefix < 0 {
		return sequence.ToGateString(sequence.Decode(idx))
	}

	return sequence.ToGateString(sequence.Decode(prefix), sequence.Decode(idx))
}

func (r *runner) report(done, total int64) {
	if r.o.progress != nil {
		r.o.progress(Progress{Stats: r.st, Done: done, Total: total})
	}
}

// Exhaustive seeds the identity candidate and then fills buf, testing every
// newly stored entry.
// Stage 1: report (0, "", I, 0).
// Stage 2: buf.Fill with the three-completion test per entry.
// Stage 3: emit a final progress event.
//
// Returns ctx.Err() if cancelled; Stats.Complete tells whether the sink
// reached full coverage.
// Complexity: O(capacity) multiplies and 3·capacity completion tests.
func Exhaustive(ctx context.Context, buf *matbuf.Buffer, sink Sink, opts ...Option) (Stats, error) {
	r := &runner{o: gatherOptions(opts), sink: sink, st: Stats{Stage: StageExhaustive}}

	r.st.Hits++
	sink.OnCandidate(Candidate{Phase: 0, Gates: "", Matrix: unitary.Identity, Error: 0})
	if sink.Complete() {
		r.st.Complete = true
		r.report(0, int64(buf.Capacity()))
		return r.st, nil
	}

	total := int64(buf.Capacity())
	var ctxErr error
	buf.Fill(func(i int, m unitary.Mat2) bool {
		r.st.Visited++
		if r.st.Visited%r.o.checkEvery == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return true
			}
		}
		if r.st.Visited%r.o.progressEvery == 0 {
			r.report(r.st.Visited, total)
		}

		return r.try(m, -1, i)
	})
	r.report(r.st.Visited, total)

	return r.st, ctxErr
}

// MeetInTheMiddle combines every prefix (1..depth−1 blocks) with every
// suffix (exactly depth blocks) and tests buf[s]·buf[p].
// Stage 1: make sure the buffer is full (or fail under WithRequireFilled).
// Stage 2: prefixes in increasing index order (outer), suffixes inner.
// Stage 3: emit a final progress event.
//
// A depth-1 buffer has no prefixes and returns immediately, incomplete.
// Complexity: O(|prefixes|·|suffixes|) = O(4^depth) multiplies worst case.
func MeetInTheMiddle(ctx context.Context, buf *matbuf.Buffer, sink Sink, opts ...Option) (Stats, error) {
	r := &runner{o: gatherOptions(opts), sink: sink, st: Stats{Stage: StageMeetInTheMiddle}}
	if !buf.Full() {
		if r.o.requireFilled {
			return r.st, ErrBufferNotFilled
		}
		buf.Fill(nil)
	}
	if sink.Complete() {
		r.st.Complete = true
		return r.st, nil
	}

	sLo, sHi := buf.Range(buf.Depth())
	prefixes := int64(sLo)
	total := prefixes * int64(sHi-sLo)
	for p := 0; p < sLo; p++ {
		r.st.Visited++
		pm := buf.Get(p)
		for s := sLo; s < sHi; s++ {
			r.st.Products++
			if r.st.Products%r.o.checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					r.report(r.st.Products, total)
					return r.st, err
				}
			}
			if r.st.Products%r.o.progressEvery == 0 {
				r.report(r.st.Products, total)
			}
			if r.try(buf.Get(s).Mul(pm), p, s) {
				r.report(r.st.Products, total)
				return r.st, nil
			}
		}
	}
	r.report(r.st.Products, total)

	return r.st, nil
}
