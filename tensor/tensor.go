// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor storage in the grad engine.
//
// The package defines core types for raw tensor data:
//   - RawTensor: reference-counted, versioned tensor storage with view support
//   - Backend: interface for device-specific compute kernels
//   - Shape, DataType, Device: core type definitions
//   - Index, Key: slicing descriptors for view construction
//
// Example:
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
//	row, _ := x.Slice(tensor.Key{tensor.At(0)})  // view, shares x's buffer
package tensor

import (
	"github.com/born-ml/grad/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data logically resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Index selects positions along one dimension of a slicing key.
type Index = tensor.Index

// Key is a slicing descriptor, one Index per leading dimension.
type Key = tensor.Key

// At selects a single position, dropping the dimension.
func At(pos int) Index {
	return tensor.At(pos)
}

// Span selects the half-open range [lo, hi), keeping the dimension.
func Span(lo, hi int) Index {
	return tensor.Span(lo, hi)
}

// All keeps a dimension untouched.
func All() Index {
	return tensor.All()
}

// Backend is defined in backend.go as a proper interface.

// Creation functions

// FromSlice creates a tensor from a Go slice. The data is copied.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, tensor.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// Scalar creates a 0-dimensional tensor holding a single value.
//
// Example:
//
//	fill, err := tensor.Scalar(float32(9), tensor.CPU)
func Scalar[T DType](value T, device Device) (*RawTensor, error) {
	return tensor.Scalar(value, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Ones(shape, dtype, device)
}

// NewRaw creates a new zero-filled raw tensor with the given shape, dtype,
// and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// BroadcastShapes computes the NumPy-style broadcast of two shapes. The bool
// result reports whether either input had to stretch to reach the output.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
