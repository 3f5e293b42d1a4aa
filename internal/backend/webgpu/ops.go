//go:build windows

package webgpu

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// checkMask validates that mask is a bool tensor whose shape matches the
// trailing dimensions of x exactly.
func checkMask(x, mask *tensor.RawTensor) {
	if mask.DType() != tensor.Bool {
		panic(fmt.Sprintf("mask dtype is %s, expected bool", mask.DType()))
	}
	mShape := mask.Shape()
	xShape := x.Shape()
	if len(mShape) > len(xShape) {
		panic(fmt.Sprintf("mask shape %v has more dimensions than input shape %v", mShape, xShape))
	}
	trailing := xShape[len(xShape)-len(mShape):]
	if !mShape.Equal(trailing) {
		panic(fmt.Sprintf("mask shape %v does not match input trailing dimensions %v", mShape, trailing))
	}
}

// Add performs element-wise addition on GPU.
// Non-float32 tensors run on the host kernels.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != tensor.Float32 {
		return b.host.Add(a, other)
	}
	result, err := b.runAdd(a, other)
	if err != nil {
		panic("webgpu: Add: " + err.Error())
	}
	return result
}

// Cat concatenates tensors along the specified dimension. Concatenation is
// pure data movement over host-resident bytes, so it always runs on the host.
func (b *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.host.Cat(tensors, dim)
}

// SumDims sums x over the given dimensions on GPU.
func (b *Backend) SumDims(x *tensor.RawTensor, dims []int, keepDims bool) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return b.host.SumDims(x, dims, keepDims)
	}
	result, err := b.runSumDims(x, dims, keepDims)
	if err != nil {
		panic("webgpu: SumDims: " + err.Error())
	}
	return result
}

// FillWhere writes the scalar value into x wherever mask is true, in place.
// Strided views fall back to the host kernel, which walks their layout
// directly; the GPU path needs contiguous x to read the result back into
// x's own buffer.
func (b *Backend) FillWhere(x, mask, value *tensor.RawTensor) {
	if x.DType() != tensor.Float32 || !x.IsContiguous() {
		b.host.FillWhere(x, mask, value)
		return
	}
	checkMask(x, mask)
	if value.DType() != x.DType() {
		panic(fmt.Sprintf("fillwhere: value dtype %s does not match input dtype %s", value.DType(), x.DType()))
	}
	if value.NumElements() != 1 {
		panic(fmt.Sprintf("fillwhere: value must hold a single element, got shape %v", value.Shape()))
	}
	if err := b.runMaskedFill(x, mask, value.AsFloat32()[0]); err != nil {
		panic("webgpu: FillWhere: " + err.Error())
	}
}

// ZeroWhere zeroes x wherever mask is true, in place.
func (b *Backend) ZeroWhere(x, mask *tensor.RawTensor) {
	if x.DType() != tensor.Float32 || !x.IsContiguous() {
		b.host.ZeroWhere(x, mask)
		return
	}
	checkMask(x, mask)
	if err := b.runMaskedFill(x, mask, 0); err != nil {
		panic("webgpu: ZeroWhere: " + err.Error())
	}
}

// SumWhere reduces x at masked positions to a 0-dimensional tensor on GPU.
func (b *Backend) SumWhere(x, mask *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return b.host.SumWhere(x, mask)
	}
	checkMask(x, mask)
	result, err := b.runMaskedSum(x, mask)
	if err != nil {
		panic("webgpu: SumWhere: " + err.Error())
	}
	return result
}

// CopyInto copies src into dst with broadcasting, in place. Pure data
// movement, always on the host.
func (b *Backend) CopyInto(dst, src *tensor.RawTensor) {
	b.host.CopyInto(dst, src)
}

// Zero fills dst with zeros in place, always on the host.
func (b *Backend) Zero(dst *tensor.RawTensor) {
	b.host.Zero(dst)
}
