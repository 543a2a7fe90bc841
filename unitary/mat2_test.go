// SPDX-License-Identifier: MIT

package unitary_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/phasegate/unitary"
)

const tol = 1e-12

// TestGates_AreUnitary checks m·m† == I for every named gate.
func TestGates_AreUnitary(t *testing.T) {
	for _, mn := range []byte(unitary.MnemonicsAll) {
		g, err := unitary.Gate(mn)
		require.NoError(t, err, "gate %q", mn)
		assert.True(t, g.Mul(g.Adjoint()).ApproxEqual(unitary.Identity, tol), "gate %q not unitary", mn)
	}
}

// TestGates_Identities verifies the algebraic relations the correction
// table relies on.
func TestGates_Identities(t *testing.T) {
	assert.True(t, unitary.H.Mul(unitary.H).ApproxEqual(unitary.Identity, tol), "HH = I")
	assert.True(t, unitary.T.Mul(unitary.T).ApproxEqual(unitary.S, tol), "TT = S")
	assert.True(t, unitary.S.Mul(unitary.S).ApproxEqual(unitary.Z, tol), "SS = Z")
	assert.True(t, unitary.T.Mul(unitary.Tdg).ApproxEqual(unitary.Identity, tol), "T t = I")
	assert.True(t, unitary.S.Mul(unitary.Sdg).ApproxEqual(unitary.Identity, tol), "S s = I")
	assert.True(t, unitary.X.Mul(unitary.X).ApproxEqual(unitary.Identity, tol), "XX = I")
}

// TestRelativePhase_NamedGates checks the exact phases of the diagonal gates.
func TestRelativePhase_NamedGates(t *testing.T) {
	cases := []struct {
		name string
		g    unitary.Mat2
		want float64
	}{
		{"I", unitary.Identity, 0},
		{"T", unitary.T, math.Pi / 4},
		{"S", unitary.S, math.Pi / 2},
		{"Z", unitary.Z, math.Pi},
		{"Sdg", unitary.Sdg, 3 * math.Pi / 2},
		{"Tdg", unitary.Tdg, 7 * math.Pi / 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.g.IsDiagonal(tol))
			assert.InDelta(t, tc.want, tc.g.RelativePhase(), tol)
		})
	}
}

// TestReplay_TimeOrder ensures gate strings are applied left to right.
func TestReplay_TimeOrder(t *testing.T) {
	m, err := unitary.Replay("HT")
	require.NoError(t, err)
	assert.True(t, m.ApproxEqual(unitary.T.Mul(unitary.H), tol))
	assert.True(t, m.ApproxEqual(unitary.H.Then(unitary.T), tol))

	empty, err := unitary.Replay("")
	require.NoError(t, err)
	assert.Equal(t, unitary.Identity, empty)
}

// TestReplay_UnknownGate returns the sentinel with the failing offset.
func TestReplay_UnknownGate(t *testing.T) {
	_, err := unitary.Replay("HTq")
	require.ErrorIs(t, err, unitary.ErrUnknownGate)
	assert.Contains(t, err.Error(), "offset 2")
	assert.Panics(t, func() { unitary.MustReplay("?") })
}

// TestIsDiagonal_Threshold covers the strict "< eps" boundary.
func TestIsDiagonal_Threshold(t *testing.T) {
	m := unitary.New(1, 0.1, 0.1, 1)
	assert.False(t, m.IsDiagonal(0.1))
	assert.True(t, m.IsDiagonal(0.1000001))
	assert.InDelta(t, 0.1, m.OffDiagonal(), tol)
	assert.False(t, unitary.H.IsDiagonal(0.5))
}

func TestAbs(t *testing.T) {
	got := unitary.H.Abs()
	for _, v := range got {
		assert.InDelta(t, math.Sqrt2/2, v, tol)
	}
}

func TestNormalizePhase(t *testing.T) {
	assert.InDelta(t, 0, unitary.NormalizePhase(0), tol)
	assert.InDelta(t, math.Pi, unitary.NormalizePhase(-math.Pi), tol)
	assert.InDelta(t, math.Pi/2, unitary.NormalizePhase(5*math.Pi/2), tol)
	assert.Less(t, unitary.NormalizePhase(-1e-18), unitary.TwoPi)
}

func TestPhaseDistance_WrapsAround(t *testing.T) {
	assert.InDelta(t, 0.2, unitary.PhaseDistance(0.1, unitary.TwoPi-0.1), tol)
	assert.InDelta(t, math.Pi, unitary.PhaseDistance(0, math.Pi), tol)
	assert.InDelta(t, 0, unitary.PhaseDistance(unitary.TwoPi, 0), tol)
}

// TestCompact_RoundTrip bounds the single-precision storage error.
func TestCompact_RoundTrip(t *testing.T) {
	m := unitary.MustReplay("HTHtHTHX")
	back := m.Compact().Expand()
	assert.True(t, back.ApproxEqual(m, 1e-6))
	assert.NotEqual(t, m, back, "narrowing is lossy for irrational entries")
}

func TestShort(t *testing.T) {
	assert.Equal(t, "[[1.000+0.000i 0.000+0.000i] [0.000+0.000i 0.000+1.000i]]", unitary.S.Short())
}
