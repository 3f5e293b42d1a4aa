package cpu

import (
	"fmt"

	"github.com/born-ml/grad/internal/parallel"
	"github.com/born-ml/grad/internal/tensor"
)

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation
// dimension. Supports negative dim indexing (-1 = last dimension). Inputs may
// be strided views; the result is always a fresh contiguous tensor.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for %dD tensor", dim, ndim))
	}

	// Validate shapes and total up the concat dimension.
	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim

	result, err := tensor.NewRaw(outShape, dtype, tensors[0].Device())
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	elem := dtype.Size()
	outStrides := outShape.ComputeStrides()
	outData := result.Data()

	offset := 0
	for _, t := range tensors {
		t = t.Contiguous()
		data := t.Data()
		tShape := t.Shape()
		strides := tShape.ComputeStrides()
		base := offset

		parallel.ForRange(tShape.NumElements(), cpu.par, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				outIdx := 0
				temp := i
				for d := 0; d < ndim; d++ {
					coord := temp / strides[d]
					temp %= strides[d]

					if d == dim {
						coord += base
					}
					outIdx += coord * outStrides[d]
				}

				copy(outData[outIdx*elem:(outIdx+1)*elem], data[i*elem:(i+1)*elem])
			}
		})
		offset += tShape[dim]
	}

	return result
}

// CopyInto writes src into dst element-wise, broadcasting src against dst's
// trailing dimensions. dst may be a strided view: writes go through its
// strides into the shared buffer.
func (cpu *CPUBackend) CopyInto(dst, src *tensor.RawTensor) {
	if dst.DType() != src.DType() {
		panic(fmt.Sprintf("copyinto: dtype mismatch %s vs %s", src.DType(), dst.DType()))
	}
	if !src.Shape().BroadcastableTo(dst.Shape()) {
		panic(fmt.Sprintf("copyinto: source shape %v does not broadcast to %v", src.Shape(), dst.Shape()))
	}

	elem := dst.DType().Size()
	dstShape := dst.Shape()
	ndim := len(dstShape)
	srcShape := src.Shape()
	srcStride := src.Strides()
	lead := ndim - len(srcShape)

	logical := dstShape.ComputeStrides()
	dstStride := dst.Strides()
	dstData := dst.Data()
	srcData := src.Data()
	n := dstShape.NumElements()

	if dst.IsContiguous() {
		parallel.ForRange(n, cpu.par, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				srcOff := 0
				temp := i
				for d := 0; d < ndim; d++ {
					coord := temp / logical[d]
					temp %= logical[d]
					if sd := d - lead; sd >= 0 && srcShape[sd] != 1 {
						srcOff += coord * srcStride[sd]
					}
				}
				copy(dstData[i*elem:(i+1)*elem], srcData[srcOff*elem:(srcOff+1)*elem])
			}
		})
		return
	}

	for i := 0; i < n; i++ {
		dstOff := 0
		srcOff := 0
		temp := i
		for d := 0; d < ndim; d++ {
			coord := temp / logical[d]
			temp %= logical[d]

			dstOff += coord * dstStride[d]
			if sd := d - lead; sd >= 0 && srcShape[sd] != 1 {
				srcOff += coord * srcStride[sd]
			}
		}

		copy(dstData[dstOff*elem:(dstOff+1)*elem], srcData[srcOff*elem:(srcOff+1)*elem])
	}
}

// Zero fills dst with zeros. dst may be a strided view.
func (cpu *CPUBackend) Zero(dst *tensor.RawTensor) {
	elem := dst.DType().Size()
	data := dst.Data()
	n := dst.NumElements()

	if dst.IsContiguous() {
		clear(data[:n*elem])
		return
	}

	shape := dst.Shape()
	logical := shape.ComputeStrides()
	stride := dst.Strides()

	for i := 0; i < n; i++ {
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
