//go:build !windows

// Package webgpu implements the WebGPU backend for GPU-accelerated tensor
// operations. On platforms without wgpu_native support the backend reports
// itself unavailable and every kernel panics.
package webgpu

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// Backend implements tensor operations on GPU using WebGPU.
type Backend struct{}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (*Backend, error) {
	return nil, fmt.Errorf("webgpu: not supported on this platform")
}

// Release releases all WebGPU resources.
func (b *Backend) Release() {}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() bool {
	return false
}

func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	panic("webgpu: not supported on this platform")
}

func (b *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	panic("webgpu: not supported on this platform")
}

func (b *Backend) SumDims(x *tensor.RawTensor, dims []int, keepDims bool) *tensor.RawTensor {
	panic("webgpu: not supported on this platform")
}

func (b *Backend) FillWhere(x, mask, value *tensor.RawTensor) {
	panic("webgpu: not supported on this platform")
}

func (b *Backend) ZeroWhere(x, mask *tensor.RawTensor) {
	panic("webgpu: not supported on this platform")
}

func (b *Backend) SumWhere(x, mask *tensor.RawTensor) *tensor.RawTensor {
	panic("webgpu: not supported on this platform")
}

func (b *Backend) CopyInto(dst, src *tensor.RawTensor) {
	panic("webgpu: not supported on this platform")
}

func (b *Backend) Zero(dst *tensor.RawTensor) {
	panic("webgpu: not supported on this platform")
}
