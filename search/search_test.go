// SPDX-License-Identifier: MIT

package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/phasegate/matbuf"
	"github.com/katalvlaran/phasegate/phasetable"
	"github.com/katalvlaran/phasegate/search"
	"github.com/katalvlaran/phasegate/sequence"
	"github.com/katalvlaran/phasegate/unitary"
)

// recorder keeps every candidate; it completes after need candidates
// (never, when need is 0).
type recorder struct {
	got  []search.Candidate
	need int
}

func (r *recorder) OnCandidate(c search.Candidate) { r.got = append(r.got, c) }
func (r *recorder) Complete() bool                 { return r.need > 0 && len(r.got) >= r.need }

func mustBuffer(t *testing.T, depth int, prec matbuf.Precision) *matbuf.Buffer {
	t.Helper()
	b, err := matbuf.New(depth, matbuf.WithPrecision(prec))
	require.NoError(t, err)

	return b
}

// TestExhaustive_SeedCompletesSingleBucket: with points=8 there is a single
// canonical bucket and the seeded identity fills it before any buffer entry
// is touched.
func TestExhaustive_SeedCompletesSingleBucket(t *testing.T) {
	tab, err := phasetable.New(8)
	require.NoError(t, err)
	buf := mustBuffer(t, 4, matbuf.Double)

	st, err := search.Exhaustive(context.Background(), buf, tab, search.WithEpsilon(0.25))
	require.NoError(t, err)
	assert.True(t, st.Complete)
	assert.Zero(t, st.Visited)
	assert.Zero(t, st.Tested)
	assert.Zero(t, buf.Filled())

	e, ok := tab.Entry(0)
	require.True(t, ok)
	assert.Equal(t, "", e.Gates)
	assert.Equal(t, 0.0, e.Phase)
	assert.Equal(t, int64(1), tab.Candidates())
}

// TestExhaustive_PhaseMatchesAlgebra: the recorded phase of one block plus
// a basis-change completion equals the phase computed directly from the
// gate matrices.
func TestExhaustive_PhaseMatchesAlgebra(t *testing.T) {
	rec := &recorder{}
	buf := mustBuffer(t, 1, matbuf.Double)
	_, err := search.Exhaustive(context.Background(), buf, rec, search.WithEpsilon(0.5))
	require.NoError(t, err)

	require.NotEmpty(t, rec.got)
	assert.Equal(t, "", rec.got[0].Gates, "seed comes first")

	var hth *search.Candidate
	for k := range rec.got {
		if rec.got[k].Gates == "HTH" {
			hth = &rec.got[k]
		}
	}
	require.NotNil(t, hth, "HT completed by H is within 0.5 of diagonal")
	direct := unitary.H.Mul(unitary.T).Mul(unitary.H)
	assert.InDelta(t, 0, unitary.PhaseDistance(direct.RelativePhase(), hth.Phase), 1e-12)
	assert.InDelta(t, direct.OffDiagonal(), hth.Error, 1e-12)
	// H·T·H has equal diagonal entries (1+e^{iπ/4})/2, so the phase is 0.
	assert.InDelta(t, 0, unitary.PhaseDistance(hth.Phase, 0), 1e-12)
}

// TestExhaustive_CandidatesReplay: every candidate replays to a diagonal
// matrix with the recorded phase.
func TestExhaustive_CandidatesReplay(t *testing.T) {
	const eps = 0.05
	rec := &recorder{}
	buf := mustBuffer(t, 12, matbuf.Double)
	st, err := search.Exhaustive(context.Background(), buf, rec, search.WithEpsilon(eps))
	require.NoError(t, err)
	assert.False(t, st.Complete)
	assert.Equal(t, int64(buf.Capacity()), st.Visited)
	assert.Equal(t, 3*st.Visited, st.Tested)
	assert.Equal(t, int64(len(rec.got)), st.Hits)
	require.Greater(t, len(rec.got), 1)

	for _, c := range rec.got {
		m, err := unitary.Replay(c.Gates)
		require.NoError(t, err)
		require.True(t, m.IsDiagonal(eps), "gates %q", c.Gates)
		assert.InDelta(t, 0, unitary.PhaseDistance(m.RelativePhase(), c.Phase), 1e-9, "gates %q", c.Gates)
	}
}

// TestExhaustive_StopsOnCompletion halts the fill as soon as the sink is
// satisfied.
func TestExhaustive_StopsOnCompletion(t *testing.T) {
	rec := &recorder{need: 3}
	buf := mustBuffer(t, 12, matbuf.Single)
	st, err := search.Exhaustive(context.Background(), buf, rec, search.WithEpsilon(0.5))
	require.NoError(t, err)
	assert.True(t, st.Complete)
	assert.Len(t, rec.got, 3)
	assert.Less(t, buf.Filled(), buf.Capacity())
}

func TestExhaustive_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buf := mustBuffer(t, 8, matbuf.Single)
	st, err := search.Exhaustive(ctx, buf, &recorder{}, search.WithCheckEvery(1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), st.Visited)
}

// TestMeetInTheMiddle_CoversAllPairs runs the full prefix×suffix space with
// a sink that never completes.
func TestMeetInTheMiddle_CoversAllPairs(t *testing.T) {
	const depth = 3
	rec := &recorder{}
	buf := mustBuffer(t, depth, matbuf.Double)
	buf.Fill(nil)

	var events []search.Progress
	st, err := search.MeetInTheMiddle(context.Background(), buf, rec,
		search.WithEpsilon(0.3),
		search.WithProgress(func(p search.Progress) { events = append(events, p) }),
		search.WithProgressEvery(10),
	)
	require.NoError(t, err)
	assert.Equal(t, search.StageMeetInTheMiddle, st.Stage)
	assert.Equal(t, int64(6), st.Visited, "prefixes with 1..2 blocks")
	assert.Equal(t, int64(6*8), st.Products)
	assert.Equal(t, 3*st.Products, st.Tested)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, last.Total, last.Done)

	longest := 0
	for _, c := range rec.got {
		m, err := unitary.Replay(c.Gates)
		require.NoError(t, err)
		require.True(t, m.IsDiagonal(0.3), "gates %q", c.Gates)
		if len(c.Gates) > longest {
			longest = len(c.Gates)
		}
	}
	assert.Greater(t, longest, 2*depth+2, "combined sequences exceed the direct depth")
}

// TestMeetInTheMiddle_ConcatenationOrder: the gate string of a pair is the
// prefix's blocks followed by the suffix's blocks.
func TestMeetInTheMiddle_ConcatenationOrder(t *testing.T) {
	buf := mustBuffer(t, 2, matbuf.Double)
	buf.Fill(nil)
	p, s := 1, 4 // "Ht" then "HtHT"
	combined := buf.Get(s).Mul(buf.Get(p))
	want := unitary.MustReplay(sequence.ToGateString(sequence.Decode(p), sequence.Decode(s)))
	assert.True(t, combined.ApproxEqual(want, 1e-12))
	assert.Equal(t, "HtHtHT", sequence.ToGateString(sequence.Decode(p), sequence.Decode(s)))
}

func TestMeetInTheMiddle_RequireFilled(t *testing.T) {
	buf := mustBuffer(t, 3, matbuf.Single)
	_, err := search.MeetInTheMiddle(context.Background(), buf, &recorder{}, search.WithRequireFilled())
	assert.ErrorIs(t, err, search.ErrBufferNotFilled)

	// Without the option the remainder is filled in place.
	_, err = search.MeetInTheMiddle(context.Background(), buf, &recorder{})
	require.NoError(t, err)
	assert.True(t, buf.Full())
}

func TestMeetInTheMiddle_DepthOneHasNoPrefixes(t *testing.T) {
	buf := mustBuffer(t, 1, matbuf.Double)
	st, err := search.MeetInTheMiddle(context.Background(), buf, &recorder{})
	require.NoError(t, err)
	assert.False(t, st.Complete)
	assert.Zero(t, st.Products)
}

func TestMeetInTheMiddle_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buf := mustBuffer(t, 4, matbuf.Single)
	st, err := search.MeetInTheMiddle(ctx, buf, &recorder{}, search.WithCheckEvery(1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), st.Products)
}

// TestSearch_IncompleteWithShallowDepth: depth 2 with a tight tolerance
// ends incomplete, with sentinels in the expanded table.
func TestSearch_IncompleteWithShallowDepth(t *testing.T) {
	tab, err := phasetable.New(256)
	require.NoError(t, err)
	buf := mustBuffer(t, 2, matbuf.Double)
	ctx := context.Background()

	st, err := search.Exhaustive(ctx, buf, tab, search.WithEpsilon(1e-6))
	require.NoError(t, err)
	require.False(t, st.Complete)
	st, err = search.MeetInTheMiddle(ctx, buf, tab, search.WithEpsilon(1e-6))
	require.NoError(t, err)
	assert.False(t, st.Complete)

	assert.Less(t, tab.Found(), tab.PhaseCount())
	assert.NotEmpty(t, tab.Missing())
	full := tab.Expand()
	for _, b := range tab.Missing() {
		assert.Equal(t, phasetable.NotFound, full[b])
	}
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { search.WithEpsilon(0) })
	assert.Panics(t, func() { search.WithEpsilon(-1) })
	assert.Panics(t, func() { search.WithProgressEvery(0) })
	assert.Panics(t, func() { search.WithCheckEvery(-3) })
}

// TestCompletions_Order pins the three completion suffixes.
func TestCompletions_Order(t *testing.T) {
	for _, c := range search.Completions {
		assert.True(t, c.Matrix.ApproxEqual(unitary.MustReplay(c.Gates), 1e-12), c.Gates)
	}
	assert.Equal(t, "H", search.Completions[0].Gates)
	assert.Equal(t, "X", search.Completions[1].Gates)
	assert.Equal(t, "HX", search.Completions[2].Gates)
}

func BenchmarkMeetInTheMiddleStep(b *testing.B) {
	buf, err := matbuf.New(10)
	require.NoError(b, err)
	buf.Fill(nil)
	lo, hi := buf.Range(10)
	pm := buf.Get(3)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		m := buf.Get(lo + n%(hi-lo)).Mul(pm)
		for _, c := range search.Completions {
			_ = c.Matrix.Mul(m).IsDiagonal(1e-3)
		}
	}
}
