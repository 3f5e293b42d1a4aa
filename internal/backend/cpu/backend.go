// Package cpu implements the host backend in pure Go, with gonum fast paths
// for the float kernels.
//
// Tensor bytes are host-resident on every device, so these kernels also serve
// as the fallback path for accelerator backends. Allocating kernels tag their
// results with the input's device.
package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/grad/internal/parallel"
	"github.com/born-ml/grad/internal/tensor"
)

// CPUBackend implements tensor.Backend on the host.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition of two same-shaped tensors. This is the
// accumulation kernel of the autodiff engine, so there is no broadcasting:
// gradients always match the shape of what they flow into.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("add: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("add: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	a = a.Contiguous()
	b = b.Contiguous()

	// Accumulate into a's buffer when nothing else holds a reference.
	if a.IsUnique() {
		addInto(a, b)
		return a
	}

	result := a.Copy()
	addInto(result, b)
	return result
}

// addInto adds src into dst element-wise. Both must be contiguous and of the
// same shape and dtype.
func addInto(dst, src *tensor.RawTensor) {
	n := dst.NumElements()
	switch dst.DType() {
	case tensor.Float32:
		x := blas32.Vector{N: n, Data: src.AsFloat32()[:n], Inc: 1}
		y := blas32.Vector{N: n, Data: dst.AsFloat32()[:n], Inc: 1}
		blas32.Axpy(1, x, y)
	case tensor.Float64:
		floats.Add(dst.AsFloat64()[:n], src.AsFloat64()[:n])
	case tensor.Int32:
		d := dst.AsInt32()[:n]
		s := src.AsInt32()[:n]
		for i := 0; i < n; i++ {
			d[i] += s[i]
		}
	case tensor.Int64:
		d := dst.AsInt64()[:n]
		s := src.AsInt64()[:n]
		for i := 0; i < n; i++ {
			d[i] += s[i]
		}
	default:
		panic(fmt.Sprintf("add: unsupported dtype %s", dst.DType()))
	}
}
