// SPDX-License-Identifier: MIT

// Package unitary provides the 2×2 complex matrix algebra used by the
// phase-table synthesis engine.
//
// 🚀 What is in here?
//
//	A Mat2 is an immutable 2×2 complex matrix with value semantics. It is
//	produced only by composition of the named elementary gates:
//	  • H  — basis change (Hadamard)
//	  • T  — π/8 phase gate, t = T†
//	  • S  — π/4 phase gate, s = S†
//	  • Z  — π/2 phase gate (Pauli Z)
//	  • X  — flip (Pauli X)
//
// ✨ Surface:
//   - Mul, Adjoint, Abs (per-entry magnitude)
//   - IsDiagonal(eps) and OffDiagonal (the off-diagonal error)
//   - RelativePhase of a diagonal matrix, normalized into [0, 2π)
//   - Compact: single-precision storage form (32 bytes per matrix)
//   - Replay: rebuild a matrix from a gate mnemonic string
//
// Gate strings are read left to right in time order: "HT" applies H first
// and T second, so Replay("HT") == T.Mul(H).
package unitary
