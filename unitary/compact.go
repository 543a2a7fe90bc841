// SPDX-License-Identifier: MIT

package unitary

// Compact is the single-precision storage form of a Mat2: 32 bytes instead
// of 64. It halves buffer memory at the price of ~1e-7 relative rounding,
// which can push borderline matrices across a tight IsDiagonal threshold.
type Compact [4]complex64

// Compact narrows m to single precision.
// Complexity: O(1).
func (m Mat2) Compact() Compact {
	return Compact{
		complex64(m[i00]), complex64(m[i01]),
		complex64(m[i10]), complex64(m[i11]),
	}
}

// Expand widens c back to a double-precision Mat2.
// Complexity: O(1).
func (c Compact) Expand() Mat2 {
	return Mat2{
		complex128(c[i00]), complex128(c[i01]),
		complex128(c[i10]), complex128(c[i11]),
	}
}
