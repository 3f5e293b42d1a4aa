// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements the kernel surface the autodiff engine computes
// through:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS and floats fast paths for float32/float64
//   - Chunked parallel element loops for large contiguous operands
//   - NumPy-compatible mask and source broadcasting
//   - Strided-view aware mutation kernels (writes land in the base buffer)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/grad/autodiff"
//	    "github.com/born-ml/grad/backend/cpu"
//	    "github.com/born-ml/grad/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x, _ := autodiff.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend, true)
//	    chunks, _ := x.Split(0, 1)
//	    _ = chunks[1].Backward(nil)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use on disjoint tensors. Kernels
// that mutate their destination assume the caller serializes writes to
// aliased storage; the autodiff engine's sequential backward pass provides
// that ordering.
package cpu
