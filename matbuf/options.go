// SPDX-License-Identifier: MIT
// Package matbuf: functional configuration for the matrix buffer.
//   - Option / options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors that panic on nonsensical values (programmer error).

package matbuf

// Precision controls how the buffer stores each matrix.
//
//   - Single — unitary.Compact, 32 bytes per entry. Halves memory; rounding
//     near 1e-7 can cause false negatives in a tight diagonality test.
//
//   - Double — unitary.Mat2, 64 bytes per entry. Exact to double precision.
type Precision int

const (
	// Single stores complex64 entries.
	Single Precision = iota

	// Double stores complex128 entries.
	Double
)

// String returns "single" or "double".
func (p Precision) String() string {
	if p == Double {
		return "double"
	}

	return "single"
}

// ParsePrecision maps "single"/"double" (also "32"/"64") to a Precision.
func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "single", "32", "float32":
		return Single, nil
	case "double", "64", "float64":
		return Double, nil
	}

	return Single, ErrBadPrecision
}

// Defaults.
const (
	// DefaultPrecision trades accuracy for memory; verification replays
	// every accepted entry in double precision anyway.
	DefaultPrecision = Single

	// MaxDepth bounds capacity at 2^31 − 2 entries.
	MaxDepth = 30
)

const panicPrecisionInvalid = "matbuf: WithPrecision: unknown precision"

// Option mutates internal options.
type Option func(*options)

type options struct {
	precision Precision
}

// WithPrecision selects the storage precision. Panics on values other than
// Single or Double.
func WithPrecision(p Precision) Option {
	if p != Single && p != Double {
		panic(panicPrecisionInvalid)
	}

	return func(o *options) { o.precision = p }
}

func gatherOptions(opts []Option) options {
	o := options{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
