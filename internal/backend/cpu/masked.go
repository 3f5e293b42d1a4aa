package cpu

import (
	"fmt"

	"github.com/born-ml/grad/internal/parallel"
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

// FillWhere writes the scalar value into x wherever mask is true. The mask
// aligns with x's trailing dimensions and repeats over the leading ones.
// x may be a strided view; writes land in its buffer.
func (cpu *CPUBackend) FillWhere(x, mask, value *tensor.RawTensor) {
	checkMask(x, mask)
	if value.DType() != x.DType() {
		panic(fmt.Sprintf("fillwhere: value dtype %s does not match input dtype %s", value.DType(), x.DType()))
	}
	if value.NumElements() != 1 {
		panic(fmt.Sprintf("fillwhere: value must hold a single element, got shape %v", value.Shape()))
	}

	elem := x.DType().Size()
	val := value.Data()[:elem]
	m := mask.Contiguous().AsBool()
	maskN := mask.NumElements()

	data := x.Data()
	n := x.NumElements()

	if x.IsContiguous() {
		parallel.ForRange(n, cpu.par, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if m[i%maskN] {
					copy(data[i*elem:(i+1)*elem], val)
				}
			}
		})
		return
	}

	// Aliased views can map several logical indices to one offset, so the
	// strided path writes sequentially.
	shape := x.Shape()
	logical := shape.ComputeStrides()
	stride := x.Strides()

	for i := 0; i < n; i++ {
		if !m[i%maskN] {
			continue
		}
		off := 0
		temp := i
		for d := 0; d < len(shape); d++ {
			coord := temp / logical[d]
			temp %= logical[d]
			off += coord * stride[d]
		}
		copy(data[off*elem:(off+1)*elem], val)
	}
}

// ZeroWhere zeroes x wherever mask is true. Same mask alignment as FillWhere.
func (cpu *CPUBackend) ZeroWhere(x, mask *tensor.RawTensor) {
	checkMask(x, mask)

	elem := x.DType().Size()
	m := mask.Contiguous().AsBool()
	maskN := mask.NumElements()

	data := x.Data()
	n := x.NumElements()

	if x.IsContiguous() {
		parallel.ForRange(n, cpu.par, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if m[i%maskN] {
					clear(data[i*elem : (i+1)*elem])
				}
			}
		})
		return
	}

	shape := x.Shape()
	logical := shape.ComputeStrides()
	stride := x.Strides()

	for i := 0; i < n; i++ {
		if !m[i%maskN] {
			continue
		}
		off := 0
		temp := i
		for d := 0; d < len(shape); d++ {
			coord := temp / logical[d]
			temp %= logical[d]
			off += coord * stride[d]
		}
		clear(data[off*elem : (off+1)*elem])
	}
}

// SumWhere returns a 0-dimensional tensor holding the sum of x at every
// position where mask is true. Same mask alignment as FillWhere.
func (cpu *CPUBackend) SumWhere(x, mask *tensor.RawTensor) *tensor.RawTensor {
	checkMask(x, mask)

	x = x.Contiguous()
	m := mask.Contiguous().AsBool()
	maskN := mask.NumElements()
	n := x.NumElements()

	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("sumwhere: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		data := x.AsFloat32()[:n]
		var sum float32
		for i := 0; i < n; i++ {
			if m[i%maskN] {
				sum += data[i]
			}
		}
		result.AsFloat32()[0] = sum
	case tensor.Float64:
		data := x.AsFloat64()[:n]
		var sum float64
		for i := 0; i < n; i++ {
			if m[i%maskN] {
				sum += data[i]
			}
		}
		result.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("sumwhere: unsupported dtype %s", x.DType()))
	}
	return result
}
