// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides versioned, view-aware tensor storage for the grad
// engine.
//
// # Overview
//
// RawTensor is the fundamental data structure: a shape and stride descriptor
// over a reference-counted buffer. This package provides:
//   - Strided views that alias storage without copying (Slice, Narrow, AsStrided)
//   - A per-buffer version counter shared by every view of the storage
//   - NumPy-style broadcasting rules (BroadcastShapes)
//   - Device abstraction (CPU, WebGPU)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/grad/tensor"
//	)
//
//	func main() {
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
//
//	    // Views share x's buffer.
//	    row, _ := x.Slice(tensor.Key{tensor.At(1)})          // shape (3)
//	    cols, _ := x.Narrow(1, 0, 2)                         // shape (2, 2)
//
//	    // Materialize a view into fresh contiguous storage.
//	    own := cols.Copy()
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for masks and images)
//   - bool (boolean masks)
//
// # Device Support
//
// Tensors can reside on different devices:
//   - CPU: pure Go implementation
//   - WebGPU: zero-CGO GPU acceleration (Windows)
//
// Data is host-resident on both devices; Device is a routing tag that selects
// the backend used for kernels. ToDevice moves a tensor between devices by
// materializing it into fresh storage.
//
// # Views and Versions
//
// Every buffer carries a version counter. Views cut from a tensor share its
// buffer and therefore its counter, so an in-place write through any alias is
// observable through all of them:
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, tensor.CPU)
//	v, _ := x.Narrow(0, 0, 2)
//	v.BumpVersion()         // x.Version() == v.Version() == 1
//
// The autodiff layer pins versions when it saves tensors for backward and
// refuses to compute gradients through storage that changed afterwards.
//
// # Memory Management
//
// Buffers are reference-counted. Clone() shares the buffer and bumps the
// count; Release() drops it. Copy() and Contiguous() allocate fresh storage
// with a fresh version counter.
package tensor
