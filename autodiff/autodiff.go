// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over
// tensor views and in-place updates.
//
// Operations on a Tensor record the graph as they run. Backward on any
// result walks the recorded nodes in reverse and accumulates gradients
// into the leaves. Views (Split, Expand) share their base tensor's storage
// and version counter; in-place updates (MaskedFillInplace, CopySlices on
// an updatable destination) bump the counter, and a later Backward that
// depends on the overwritten values fails with ErrStale.
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
//	    x, _ := autodiff.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, backend, true)
//
//	    chunks, _ := x.Split(0, 2)      // two views of x's buffer
//	    _ = chunks[0].Backward(nil)     // seeds with ones
//
//	    fmt.Println(x.Grad().AsFloat32())  // [1 1 0 0]
//	}
package autodiff

import (
	"github.com/born-ml/grad/internal/autodiff"
	"github.com/born-ml/grad/internal/tensor"
)

// Tensor is a tensor tracked by the autodiff engine.
//
// Tensor carries the graph bookkeeping (producing node, gradient slot,
// accumulated gradient) next to the raw storage. The differentiable
// operations are methods: Split, SplitWithSizes, Expand, MaskedFill,
// MaskedFillInplace, CopySlices, CopyFrom.
type Tensor = autodiff.Tensor

// ErrStale is returned by Backward when a tensor saved for the backward pass
// was modified in place after it was saved.
var ErrStale = autodiff.ErrStale

// NewTensor wraps a raw tensor as an autodiff leaf.
func NewTensor(raw *tensor.RawTensor, backend tensor.Backend, requiresGrad bool) *Tensor {
	return autodiff.NewTensor(raw, backend, requiresGrad)
}

// FromSlice creates a leaf tensor on the backend's device from a flat slice.
//
// Example:
//
//	backend := cpu.New()
//	x, err := autodiff.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend, true)
func FromSlice[T tensor.DType](data []T, shape tensor.Shape, backend tensor.Backend, requiresGrad bool) (*Tensor, error) {
	return autodiff.FromSlice(data, shape, backend, requiresGrad)
}

// Scalar creates a 0-dimensional leaf tensor holding a single value.
//
// Example:
//
//	fill, err := autodiff.Scalar(float32(9), backend, false)
func Scalar[T tensor.DType](value T, backend tensor.Backend, requiresGrad bool) (*Tensor, error) {
	return autodiff.Scalar(value, backend, requiresGrad)
}
