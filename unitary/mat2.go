// SPDX-License-Identifier: MIT
// Package unitary: Mat2 is a concrete, row-major 2×2 complex matrix stored
// inline as a fixed-size array, so copies are cheap and there is no shared
// backing storage between values.

package unitary

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// TwoPi is one full turn in radians.
const TwoPi = 2 * math.Pi

// Mat2 is a row-major 2×2 complex matrix [[a, b], [c, d]] stored as
// {a, b, c, d}. The zero value is the zero matrix, not the identity.
type Mat2 [4]complex128

// Entry indices in row-major order.
const (
	i00 = iota // a
	i01        // b
	i10        // c
	i11        // d
)

// New builds a Mat2 from its four row-major entries.
// Complexity: O(1).
func New(a, b, c, d complex128) Mat2 {
	return Mat2{a, b, c, d}
}

// Diag builds the diagonal matrix diag(a, d).
// Complexity: O(1).
func Diag(a, d complex128) Mat2 {
	return Mat2{a, 0, 0, d}
}

// At returns entry (row, col). Both indices must be 0 or 1.
// Complexity: O(1).
func (m Mat2) At(row, col int) complex128 {
	return m[row*2+col]
}

// Mul returns the matrix product m·n.
// In time order this applies n first and m second.
// Implementation:
//   - Stage 1: expand the 2×2 product explicitly (8 complex multiplies).
//
// Complexity: O(1), no allocation.
func (m Mat2) Mul(n Mat2) Mat2 {
	return Mat2{
		m[i00]*n[i00] + m[i01]*n[i10],
		m[i00]*n[i01] + m[i01]*n[i11],
		m[i10]*n[i00] + m[i11]*n[i10],
		m[i10]*n[i01] + m[i11]*n[i11],
	}
}

// Then returns the matrix of "apply m, then apply g", i.e. g·m.
// It reads in the same order as a gate string.
// Complexity: O(1).
func (m Mat2) Then(g Mat2) Mat2 {
	return g.Mul(m)
}

// Adjoint returns the conjugate transpose m†.
// Complexity: O(1).
func (m Mat2) Adjoint() Mat2 {
	return Mat2{
		cmplx.Conj(m[i00]), cmplx.Conj(m[i10]),
		cmplx.Conj(m[i01]), cmplx.Conj(m[i11]),
	}
}

// Abs returns the per-entry magnitudes |m_ij| in row-major order.
// Complexity: O(1).
func (m Mat2) Abs() [4]float64 {
	return [4]float64{
		cmplx.Abs(m[i00]), cmplx.Abs(m[i01]),
		cmplx.Abs(m[i10]), cmplx.Abs(m[i11]),
	}
}

// OffDiagonal returns max(|b|, |c|), the distance of m from the set of
// diagonal matrices. For a unitary both magnitudes agree up to rounding.
// Complexity: O(1).
func (m Mat2) OffDiagonal() float64 {
	return math.Max(cmplx.Abs(m[i01]), cmplx.Abs(m[i10]))
}

// IsDiagonal reports whether both off-diagonal magnitudes are below eps.
// Complexity: O(1).
func (m Mat2) IsDiagonal(eps float64) bool {
	return cmplx.Abs(m[i01]) < eps && cmplx.Abs(m[i10]) < eps
}

// RelativePhase returns arg(d) − arg(a) normalized into [0, 2π): the
// rotation angle a diagonal matrix implements up to global phase.
// The result is meaningless for matrices that are far from diagonal;
// callers test IsDiagonal first.
// Complexity: O(1).
func (m Mat2) RelativePhase() float64 {
	return NormalizePhase(cmplx.Phase(m[i11]) - cmplx.Phase(m[i00]))
}

// ApproxEqual reports whether every entry of m and n differs by less than eps.
// Complexity: O(1).
func (m Mat2) ApproxEqual(n Mat2, eps float64) bool {
	for k := range m {
		if cmplx.Abs(m[k]-n[k]) >= eps {
			return false
		}
	}

	return true
}

// Short renders m compactly with three decimals per component, e.g.
// "[[0.924-0.383i 0.000+0.000i] [0.000+0.000i 0.924+0.383i]]".
// It is the matrix rendering used in diagnostic records.
func (m Mat2) Short() string {
	var sb strings.Builder
	sb.WriteString("[[")
	for k, v := range m {
		switch k {
		case i01, i11:
			sb.WriteByte(' ')
		case i10:
			sb.WriteString("] [")
		}
		fmt.Fprintf(&sb, "%.3f%+.3fi", real(v), imag(v))
	}
	sb.WriteString("]]")

	return sb.String()
}

// String implements fmt.Stringer with full precision.
func (m Mat2) String() string {
	return fmt.Sprintf("[[%v %v] [%v %v]]", m[i00], m[i01], m[i10], m[i11])
}

// NormalizePhase maps any angle into [0, 2π).
// Complexity: O(1).
func NormalizePhase(phi float64) float64 {
	phi = math.Mod(phi, TwoPi)
	if phi < 0 {
		phi += TwoPi
	}
	// math.Mod of a tiny negative value can round back up to exactly 2π.
	if phi >= TwoPi {
		phi = 0
	}

	return phi
}

// PhaseDistance returns the circular distance between two angles, in [0, π].
// Complexity: O(1).
func PhaseDistance(a, b float64) float64 {
	d := NormalizePhase(a - b)
	if d > math.Pi {
		d = TwoPi - d
	}

	return d
}
