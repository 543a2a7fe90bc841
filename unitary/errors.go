// SPDX-License-Identifier: MIT
// Package unitary: sentinel error set.
// Every message is prefixed with "unitary: ..." for grepping across logs.
// Callers match with errors.Is; context is added with fmt.Errorf("...: %w").

package unitary

import "errors"

var (
	// ErrUnknownGate is returned by Replay and Gate when a mnemonic is not
	// part of the gate alphabet.
	ErrUnknownGate = errors.New("unitary: unknown gate mnemonic")
)
