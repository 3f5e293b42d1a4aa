// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/grad/internal/tensor"

// Backend defines the kernel surface that all compute backends must
// implement. Backends handle the actual computation for tensor operations;
// the autodiff layer routes every array computation through one of them.
//
// Kernels panic on contract violations (shape or dtype mismatches): callers
// validate user input before dispatching.
//
// Implementations:
//   - backend/cpu: pure Go with gonum fast paths
//   - backend/webgpu: WGSL compute shaders, host fallback off Windows
//
// Example:
//
//	import (
//	    "github.com/born-ml/grad/backend/cpu"
//	    "github.com/born-ml/grad/tensor"
//	)
//
//	b := cpu.New()
//	sum := b.Add(x, y)
type Backend interface {
	// Element-wise and accumulation kernels.
	Add(a, b *RawTensor) *RawTensor // Element-wise sum of same-shaped tensors.

	// Manipulation kernels.
	Cat(tensors []*RawTensor, dim int) *RawTensor // Concatenate along dim.
	CopyInto(dst, src *RawTensor)                 // Broadcasting copy into dst (mutates).
	Zero(dst *RawTensor)                          // Zero-fill dst (mutates).

	// Reduction kernels.
	SumDims(x *RawTensor, dims []int, keepDims bool) *RawTensor // Sum over dims.
	SumWhere(x, mask *RawTensor) *RawTensor                     // Masked total sum (0-dim result).

	// Masked mutation kernels.
	FillWhere(x, mask, value *RawTensor) // Write scalar value where mask (mutates).
	ZeroWhere(x, mask *RawTensor)        // Zero where mask (mutates).

	// Metadata.
	Name() string   // Backend name (e.g., "CPU", "WebGPU").
	Device() Device // Device type.
}

// Compile-time check that internal Backend implements public Backend.
var _ Backend = tensor.Backend(nil)
