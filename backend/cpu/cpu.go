// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/grad/internal/backend/cpu"
	"github.com/born-ml/grad/tensor"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go implementations of the kernel surface with
// gonum fast paths for float tensors and chunked parallel element loops for
// large contiguous operands.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/grad/autodiff"
//	    "github.com/born-ml/grad/backend/cpu"
//	    "github.com/born-ml/grad/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x, _ := autodiff.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend, true)
//	}
func New() *Backend {
	return internalcpu.New()
}
