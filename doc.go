// Package phasegate synthesizes a lookup table of Clifford+T gate sequences,
// one per quantized relative phase of a single-qubit diagonal unitary.
//
// 🚀 What is phasegate?
//
//	An offline, single-threaded search engine that brings together:
//		• Exact 2×2 unitary algebra over the gates H, T, T†, S, S†, Z, X
//		• A compact integer codec for sequences of "H then T" / "H then T†" blocks
//		• A prefix-shared matrix buffer (one multiply per sequence)
//		• Exhaustive search, then meet-in-the-middle for twice the depth
//		• A canonical phase table expanded to the full circle by exact corrections
//		• Independent replay verification of every accepted sequence
//
// ✨ How does a run work?
//
//	config → matbuf.Buffer + phasetable.Table
//	       → search.Exhaustive → search.MeetInTheMiddle (if incomplete)
//	       → phasetable.Expand → verify → output (JSON / YAML)
//
// Under the hood:
//
//	unitary/    — Mat2, gate constants, Replay
//	sequence/   — index codec, gate strings, HH and phase-gate folding
//	matbuf/     — the matrix buffer, single or double precision
//	search/     — Exhaustive, MeetInTheMiddle, Sink, Completions
//	phasetable/ — buckets, replacement policy, Corrections, Expand
//	verify/     — canonical and expanded replay checks
//	output/     — diagnostic record, table, metrics textfile
//	config/     — parameters from flags, env, .env and config files
//	synth/      — one end-to-end run with logging and metrics
//	cmd/phasegate — the CLI
//
// Quick example (the first eighth of a 64-point circle has 8 buckets):
//
//	tab, _ := phasetable.New(64)
//	buf, _ := matbuf.New(12, matbuf.WithPrecision(matbuf.Double))
//	st, _ := search.Exhaustive(ctx, buf, tab, search.WithEpsilon(0.05))
//	if !st.Complete {
//		_, _ = search.MeetInTheMiddle(ctx, buf, tab, search.WithEpsilon(0.05))
//	}
//	full := tab.Expand() // 64 gate strings, "NOT_FOUND" where unresolved
package phasegate
