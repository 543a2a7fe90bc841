// SPDX-License-Identifier: MIT

package search

import "math"

// Defaults.
const (
	// DefaultEpsilon is the diagonality tolerance.
	DefaultEpsilon = 1e-3

	// DefaultProgressEvery is the number of outer-loop steps between
	// progress events.
	DefaultProgressEvery = 1 << 20

	// DefaultCheckEvery is the number of outer-loop steps between context
	// checks.
	DefaultCheckEvery = 1 << 12
)

const (
	panicEpsilonInvalid = "search: WithEpsilon: eps must be finite and > 0"
	panicEveryInvalid   = "search: step interval must be > 0"
)

// Option mutates internal options.
type Option func(*options)

type options struct {
	eps           float64
	progress      ProgressFunc
	progressEvery int64
	checkEvery    int64
	requireFilled bool
}

// WithEpsilon sets the diagonality tolerance. Panics unless eps is finite
// and positive.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps <= 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *options) { o.eps = eps }
}

// WithProgress installs a progress hook. nil disables progress events.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithProgressEvery sets the progress interval in outer-loop steps.
func WithProgressEvery(n int64) Option {
	if n <= 0 {
		panic(panicEveryInvalid)
	}

	return func(o *options) { o.progressEvery = n }
}

// WithCheckEvery sets how often the context is polled, in outer-loop steps.
func WithCheckEvery(n int64) Option {
	if n <= 0 {
		panic(panicEveryInvalid)
	}

	return func(o *options) { o.checkEvery = n }
}

// WithRequireFilled makes MeetInTheMiddle fail with ErrBufferNotFilled
// instead of filling the remainder of a partially filled buffer itself.
func WithRequireFilled() Option {
	return func(o *options) { o.requireFilled = true }
}

func gatherOptions(opts []Option) options {
	o := options{
		eps:           DefaultEpsilon,
		progressEvery: DefaultProgressEvery,
		checkEvery:    DefaultCheckEvery,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
