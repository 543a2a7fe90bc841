// SPDX-License-Identifier: MIT

// Package sequence maps natural numbers onto gate-block sequences.
//
// Index layout (canonical length-then-bit-pattern order):
//
//	blocks  first index  indices
//	  1        0         0..1
//	  2        2         2..5
//	  3        6         6..13
//	  n     2^n − 2      2^n−2 .. 2^(n+1)−3
//
// For index i with n = OpCountForIndex(i) blocks, the offset
// o = i − StartIndexForOpCount(n) is an n-bit pattern; block j (in
// application order) is bit n−1−j of o. The last applied block is the low
// bit of i, and dropping it yields Predecessor(i). This lets a buffer build
// every entry from one already-stored entry with a single multiply.
package sequence

import (
	"math/bits"
	"strings"

	"github.com/katalvlaran/phasegate/unitary"
)

// Block is one of the two fixed two-gate compositions.
type Block uint8

const (
	// BlockHT applies H, then T.
	BlockHT Block = iota
	// BlockHTdg applies H, then T†.
	BlockHTdg
)

// Mnemonic returns the two-gate string for b.
func (b Block) Mnemonic() string {
	if b == BlockHTdg {
		return "Ht"
	}

	return "HT"
}

// Matrix returns the composed matrix of b (T·H or T†·H).
func (b Block) Matrix() unitary.Mat2 {
	return blockMatrix[b&1]
}

var blockMatrix = [2]unitary.Mat2{
	unitary.T.Mul(unitary.H),
	unitary.Tdg.Mul(unitary.H),
}

// OpCountForIndex returns ⌊log2(i+2)⌋, the number of blocks encoded by i.
// Panics on negative i.
func OpCountForIndex(i int) int {
	mustIndex(i)
	return bits.Len64(uint64(i)+2) - 1
}

// StartIndexForOpCount returns 2^n − 2, the first index with exactly n
// blocks. StartIndexForOpCount(0) is −2 and has no meaning as an index;
// it only keeps the formula total.
func StartIndexForOpCount(n int) int {
	return 1<<uint(n) - 2
}

// Predecessor returns the index of i's sequence with its trailing block
// removed, or −1 when i encodes a single block (the empty sequence).
func Predecessor(i int) int {
	mustIndex(i)
	return (i+2)>>1 - 2
}

// TrailingBlock returns the last applied block of i.
func TrailingBlock(i int) Block {
	mustIndex(i)
	return Block(i & 1)
}

// Decode returns the blocks of i in application order.
// len(Decode(i)) == OpCountForIndex(i).
func Decode(i int) []Block {
	n := OpCountForIndex(i)
	off := i - StartIndexForOpCount(n)
	out := make([]Block, n)
	for j := 0; j < n; j++ {
		out[j] = Block((off >> uint(n-1-j)) & 1)
	}

	return out
}

// Encode is the inverse of Decode. An empty slice has no index and
// yields −1.
func Encode(blocks []Block) int {
	if len(blocks) == 0 {
		return -1
	}
	off := 0
	for _, b := range blocks {
		off = off<<1 | int(b&1)
	}

	return StartIndexForOpCount(len(blocks)) + off
}

// ToGateString expands each block list to its mnemonics, concatenates the
// lists in order and collapses adjacent HH pairs.
func ToGateString(lists ...[]Block) string {
	var sb strings.Builder
	for _, blocks := range lists {
		sb.Grow(2 * len(blocks))
		for _, b := range blocks {
			sb.WriteString(b.Mnemonic())
		}
	}

	return Simplify(sb.String())
}

// Simplify removes adjacent self-cancelling HH pairs, including pairs that
// only become adjacent after an inner pair was removed ("HHHH" → "").
// Other gates are left untouched.
func Simplify(gates string) string {
	if !strings.Contains(gates, "HH") {
		return gates
	}
	out := make([]byte, 0, len(gates))
	for k := 0; k < len(gates); k++ {
		g := gates[k]
		if g == unitary.MnemonicH && len(out) > 0 && out[len(out)-1] == unitary.MnemonicH {
			out = out[:len(out)-1]
			continue
		}
		out = append(out, g)
	}

	return string(out)
}

// PhaseRuns[k] is the shortest gate string worth a relative phase of
// exactly k·π/4. PhaseRuns[0] is empty.
var PhaseRuns = [8]string{"", "T", "S", "ST", "Z", "ZT", "s", "t"}

// phaseUnits maps each diagonal gate to its phase in units of π/4; −1 for
// gates that are not diagonal.
func phaseUnits(g byte) int {
	switch g {
	case unitary.MnemonicT:
		return 1
	case unitary.MnemonicS:
		return 2
	case unitary.MnemonicZ:
		return 4
	case unitary.MnemonicSdg:
		return 6
	case unitary.MnemonicTdg:
		return 7
	}

	return -1
}

// Fold is Simplify plus phase folding: every maximal run of adjacent
// diagonal gates (T, t, S, s, Z) is replaced by PhaseRuns of its summed
// phase, and HH pairs exposed by a run that folds away cancel as well
// ("HTtH" → ""). The replayed matrix is unchanged.
// Complexity: O(len(gates)).
func Fold(gates string) string {
	out := make([]byte, 0, len(gates))
	for k := 0; k < len(gates); k++ {
		g := gates[k]
		if u := phaseUnits(g); u >= 0 {
			j := len(out)
			for j > 0 && phaseUnits(out[j-1]) >= 0 {
				j--
				u += phaseUnits(out[j])
			}
			out = append(out[:j], PhaseRuns[u%8]...)
			continue
		}
		if g == unitary.MnemonicH && len(out) > 0 && out[len(out)-1] == unitary.MnemonicH {
			out = out[:len(out)-1]
			continue
		}
		out = append(out, g)
	}

	return string(out)
}

func mustIndex(i int) {
	if i < 0 {
		panic("sequence: negative index")
	}
}
