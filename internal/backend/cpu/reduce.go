package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/grad/internal/tensor"
)

// SumDims reduces x over the given dimensions.
//
// With keepDims the reduced dimensions remain as size 1, otherwise they are
// dropped from the result shape. Supports negative dim indexing. An empty
// dims list performs no reduction and returns a copy. Reducing every
// dimension without keepDims yields a 0-dimensional scalar tensor.
//
// Example:
//
//	x, _ := tensor.FromSlice(data, tensor.Shape{2, 3, 4}, tensor.CPU)
//	y := backend.SumDims(x, []int{0, 2}, true)  // shape: [1, 3, 1]
//	z := backend.SumDims(x, []int{0, 2}, false) // shape: [3]
func (cpu *CPUBackend) SumDims(x *tensor.RawTensor, dims []int, keepDims bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	reduced := make([]bool, ndim)
	for _, d := range dims {
		if d < -ndim || d >= ndim {
			panic(fmt.Sprintf("sumdims: dimension %d out of range for %dD tensor", d, ndim))
		}
		if d < 0 {
			d += ndim
		}
		if reduced[d] {
			panic(fmt.Sprintf("sumdims: duplicate dimension %d", d))
		}
		reduced[d] = true
	}

	if len(dims) == 0 {
		return x.Copy()
	}

	x = x.Contiguous()

	// Accumulate into a shape where the reduced dimensions are kept as 1, so
	// input and output coordinates line up.
	keptShape := shape.Clone()
	for d := range keptShape {
		if reduced[d] {
			keptShape[d] = 1
		}
	}

	result, err := tensor.NewRaw(keptShape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("sumdims: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		sumDimsFloat32(x, result, reduced)
	case tensor.Float64:
		sumDimsFloat64(x, result, reduced)
	default:
		panic(fmt.Sprintf("sumdims: unsupported dtype %s", x.DType()))
	}

	if keepDims {
		return result
	}

	outShape := make(tensor.Shape, 0, ndim)
	for d := range shape {
		if !reduced[d] {
			outShape = append(outShape, shape[d])
		}
	}
	squeezed, err := result.Reshaped(outShape)
	if err != nil {
		panic(fmt.Sprintf("sumdims: %v", err))
	}
	return squeezed
}

func sumDimsFloat32(x, out *tensor.RawTensor, reduced []bool) {
	n := x.NumElements()
	data := x.AsFloat32()[:n]
	outData := out.AsFloat32()[:out.NumElements()]
	strides := x.Shape().ComputeStrides()
	outStrides := out.Shape().ComputeStrides()

	for i := 0; i < n; i++ {
		outIdx := 0
		temp := i
		for d := 0; d < len(strides); d++ {
			coord := temp / strides[d]
			temp %= strides[d]
			if !reduced[d] {
				outIdx += coord * outStrides[d]
			}
		}
		outData[outIdx] += data[i]
	}
}

func sumDimsFloat64(x, out *tensor.RawTensor, reduced []bool) {
	n := x.NumElements()
	data := x.AsFloat64()[:n]

	all := true
	for d := range reduced {
		if !reduced[d] {
			all = false
			break
		}
	}
	if all {
		out.AsFloat64()[0] = floats.Sum(data)
		return
	}

	outData := out.AsFloat64()[:out.NumElements()]
	strides := x.Shape().ComputeStrides()
	outStrides := out.Shape().ComputeStrides()

	for i := 0; i < n; i++ {
		outIdx := 0
		temp := i
		for d := 0; d < len(strides); d++ {
			coord := temp / strides[d]
			temp %= strides[d]
			if !reduced[d] {
				outIdx += coord * outStrides[d]
			}
		}
		outData[outIdx] += data[i]
	}
}
