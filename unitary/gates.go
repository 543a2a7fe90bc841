// SPDX-License-Identifier: MIT

package unitary

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Gate mnemonics. Daggered gates use the lower-case letter of their base
// gate so that every gate is exactly one byte in a gate string.
const (
	MnemonicH    = 'H' // basis change
	MnemonicT    = 'T' // π/8 phase
	MnemonicTdg  = 't' // T†
	MnemonicS    = 'S' // π/4 phase
	MnemonicSdg  = 's' // S†
	MnemonicZ    = 'Z' // Pauli Z
	MnemonicX    = 'X' // Pauli X (flip)
	MnemonicsAll = "HTtSsZX"
)

// Named elementary gates.
var (
	Identity = Diag(1, 1)
	H        = New(complex(math.Sqrt2/2, 0), complex(math.Sqrt2/2, 0), complex(math.Sqrt2/2, 0), complex(-math.Sqrt2/2, 0))
	T        = Diag(1, cmplx.Exp(complex(0, math.Pi/4)))
	Tdg      = Diag(1, cmplx.Exp(complex(0, -math.Pi/4)))
	S        = Diag(1, 1i)
	Sdg      = Diag(1, -1i)
	Z        = Diag(1, -1)
	X        = New(0, 1, 1, 0)
)

// Gate returns the matrix for a single-byte mnemonic.
// Returns ErrUnknownGate for bytes outside MnemonicsAll.
// Complexity: O(1).
func Gate(mnemonic byte) (Mat2, error) {
	switch mnemonic {
	case MnemonicH:
		return H, nil
	case MnemonicT:
		return T, nil
	case MnemonicTdg:
		return Tdg, nil
	case MnemonicS:
		return S, nil
	case MnemonicSdg:
		return Sdg, nil
	case MnemonicZ:
		return Z, nil
	case MnemonicX:
		return X, nil
	}

	return Mat2{}, fmt.Errorf("%q: %w", mnemonic, ErrUnknownGate)
}

// Replay rebuilds the matrix of a gate string starting from the identity.
// Implementation:
//   - Stage 1: start from Identity.
//   - Stage 2: for each byte left to right, left-multiply by its gate.
//
// Errors:
//   - ErrUnknownGate (wrapped with the byte offset) on a foreign mnemonic.
//
// Complexity: O(len(gates)).
func Replay(gates string) (Mat2, error) {
	m := Identity
	for k := 0; k < len(gates); k++ {
		g, err := Gate(gates[k])
		if err != nil {
			return Mat2{}, fmt.Errorf("unitary: Replay offset %d: %w", k, err)
		}
		m = g.Mul(m)
	}

	return m, nil
}

// MustReplay is Replay for gate strings known to be well-formed
// (package-level constants, test fixtures). It panics on error.
func MustReplay(gates string) Mat2 {
	m, err := Replay(gates)
	if err != nil {
		panic(err)
	}

	return m
}
