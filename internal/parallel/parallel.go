// Package parallel provides chunked execution of element loops for the
// grad engine's CPU kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how element loops are spread across goroutines.
type Config struct {
	Enabled bool // Whether parallel execution is enabled.
	Workers int  // Number of worker goroutines to use.
	MinSpan int  // Minimum elements per span to justify goroutine overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled: n > 1,
		Workers: n,
		MinSpan: 4096,
	}
}

// ForRange splits [0, n) into contiguous spans and calls f(lo, hi) once per
// span, in parallel when the range is large enough. f must only touch
// elements of its own span; ForRange returns after every span completes.
func ForRange(n int, cfg Config, f func(lo, hi int)) {
	if n <= 0 {
		return
	}
	// Anything smaller than two spans runs inline.
	if !cfg.Enabled || cfg.Workers < 2 || n < 2*cfg.MinSpan {
		f(0, n)
		return
	}

	span := max((n+cfg.Workers-1)/cfg.Workers, cfg.MinSpan)

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += span {
		hi := min(lo+span, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
