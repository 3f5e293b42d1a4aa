package autodiff

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// ExpandOp broadcasts a tensor to a larger shape without copying.
//
// Forward builds a strided view: new leading axes and broadcast singleton
// axes get stride 0, so the same storage is addressed repeatedly. The view
// shares the input's buffer and version counter.
//
// Backward is the reverse broadcast: the upstream gradient is summed over
// exactly the axes forward introduced or repeated, keeping broadcast
// singleton axes at size 1 and squeezing the leading axes away.
type ExpandOp struct {
	sizes       []int
	singleton   []int // output axes where a size-1 input axis was repeated
	leadingDims int   // new axes prepended by the expansion
}

// NewExpandOp creates an expansion to the given target sizes. A size of -1
// keeps the input's size at that axis.
func NewExpandOp(sizes ...int) *ExpandOp {
	return &ExpandOp{sizes: append([]int(nil), sizes...)}
}

// Name implements Function.
func (op *ExpandOp) Name() string { return "Expand" }

// Forward implements Function.
func (op *ExpandOp) Forward(ctx *Context, inputs ...*Tensor) ([]*Tensor, error) {
	x := inputs[0]
	shape := x.Shape()
	stride := x.raw.Strides()
	ndim := len(shape)

	if len(op.sizes) < ndim {
		return nil, fmt.Errorf(
			"expand: the number of sizes provided (%d) must be greater or equal to the number of dimensions in the tensor (%d)",
			len(op.sizes), ndim)
	}
	op.leadingDims = len(op.sizes) - ndim

	outShape := make(tensor.Shape, len(op.sizes))
	outStride := make([]int, len(op.sizes))
	for i, size := range op.sizes {
		if i < op.leadingDims {
			if size <= 0 {
				return nil, fmt.Errorf(
					"The expanded size of the tensor (%d) isn't allowed in a leading, non-existing dimension %d", size, i)
			}
			outShape[i] = size
			continue
		}

		d := i - op.leadingDims
		switch {
		case shape[d] == 1 && size > 1:
			op.singleton = append(op.singleton, i)
			outShape[i] = size
		case size == -1 || size == shape[d]:
			outShape[i] = shape[d]
			outStride[i] = stride[d]
		default:
			return nil, fmt.Errorf(
				"The expanded size of the tensor (%d) must match the existing size (%d) at non-singleton dimension %d.  Target sizes: %v.  Tensor sizes: %v",
				size, shape[d], i, op.sizes, shape)
		}
	}

	view, err := x.raw.AsStrided(outShape, outStride)
	if err != nil {
		return nil, err
	}
	return []*Tensor{ctx.buildLink(view)}, nil
}

// Backward implements Function. Repeated axes carried stride 0 forward, so
// every upstream position along them is one contribution to the same input
// element and the gradient sums over them.
func (op *ExpandOp) Backward(ctx *Context, gradOutputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	g := gradOutputs[0]
	if g == nil {
		return []*tensor.RawTensor{nil}, nil
	}

	if len(op.singleton) > 0 {
		g = ctx.backend.SumDims(g, op.singleton, true)
	}
	if op.leadingDims > 0 {
		leading := make([]int, op.leadingDims)
		for d := range leading {
			leading[d] = d
		}
		return []*tensor.RawTensor{ctx.backend.SumDims(g, leading, false)}, nil
	}
	if len(op.singleton) == 0 {
		// No reduction applies; copy so the caller's buffer is not shared.
		g = g.Copy()
	}
	return []*tensor.RawTensor{g}, nil
}

// Expand returns a broadcast view of the tensor at the target sizes. sizes
// may prepend new leading axes; a -1 keeps the input's size at that axis;
// size-1 input axes may grow to any size. The view shares the tensor's
// storage and version counter, and writing through either side is visible to
// both.
func (t *Tensor) Expand(sizes ...int) (*Tensor, error) {
	return applySingle(NewExpandOp(sizes...), t)
}
