package server

import "runtime"

// Compilation concurrency limits.
const (
	// MinConcurrency is the minimum number of concurrent compilations.
	MinConcurrency = 1

	// MaxConcurrency caps concurrent compilations: each one may hold an
	// evaluator session and a few megabytes of output image.
	MaxConcurrency = 8

	// cpuDivisor leaves room for the evaluator and typesetters running
	// next to the server.
	cpuDivisor = 2
)

// ResolveConcurrency determines how many compilations run at once.
// Priority: explicit n > GOMAXPROCS/cpuDivisor, clamped to
// [MinConcurrency, MaxConcurrency].
func ResolveConcurrency(n int) int {
	if n > 0 {
		return n
	}

	// GOMAXPROCS follows the container quota once automaxprocs ran.
	available := runtime.GOMAXPROCS(0)
	n = available / cpuDivisor

	if n < MinConcurrency {
		return MinConcurrency
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}
