// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/grad/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape, stride, and type information via Shape(), Strides(), DType(), Device()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Views that alias the underlying buffer via Slice(), Narrow(), AsStrided()
//   - A shared version counter via Version(), BumpVersion(), SharesBufferWith()
//   - Reference counting via Clone() and Release()
//
// Views share the buffer of the tensor they were cut from, and with it the
// version counter: an in-place write through any alias is visible to all of
// them. Copy() and Contiguous() materialize a view into fresh storage.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	row, _ := raw.Narrow(0, 1, 1)  // shares raw's buffer
//	row.BumpVersion()              // raw.Version() sees the bump too
type RawTensor = tensor.RawTensor
