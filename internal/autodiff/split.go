package autodiff

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// SplitOp divides a tensor along one dimension into chunk views that share
// the input's storage.
//
// Backward is the exact inverse of the partition: gradients of the chunks
// are concatenated back along the split dimension, with zeros standing in
// for chunks no downstream consumer used.
type SplitOp struct {
	dim       int   // normalized during Forward
	splitSize int   // equal-chunk length; ignored when sections is set
	sections  []int // explicit chunk lengths along dim
}

// NewSplitOp creates a split into equal chunks of splitSize along dim. The
// last chunk is shorter when the dimension size is not evenly divisible.
func NewSplitOp(dim, splitSize int) *SplitOp {
	return &SplitOp{dim: dim, splitSize: splitSize}
}

// NewSplitSectionsOp creates a split into len(sections) chunks whose lengths
// along dim are given explicitly. The lengths must sum to the dimension size.
func NewSplitSectionsOp(dim int, sections []int) *SplitOp {
	return &SplitOp{dim: dim, sections: append([]int(nil), sections...)}
}

// Name implements Function.
func (op *SplitOp) Name() string { return "Split" }

// Forward implements Function. Every output is a Narrow view into the
// input's buffer, so chunk i's output slot is i. The input is saved to pin
// its version: writing through any chunk mutates the shared storage, and a
// later backward must refuse to run against it.
func (op *SplitOp) Forward(ctx *Context, inputs ...*Tensor) ([]*Tensor, error) {
	x := inputs[0]
	shape := x.Shape()
	ndim := len(shape)

	if op.dim < -ndim || op.dim >= ndim {
		return nil, fmt.Errorf("split: dimension %d out of range for %dD tensor", op.dim, ndim)
	}
	if op.dim < 0 {
		op.dim += ndim
	}
	dimSize := shape[op.dim]

	// Resolve every chunk length before building the first view, so a bad
	// argument fails with nothing allocated.
	var lengths []int
	if op.sections == nil {
		if op.splitSize <= 0 {
			return nil, fmt.Errorf("split: split_size must be positive, got %d", op.splitSize)
		}
		for start := 0; start < dimSize; start += op.splitSize {
			length := op.splitSize
			if start+length > dimSize {
				length = dimSize - start
			}
			lengths = append(lengths, length)
		}
	} else {
		total := 0
		for _, section := range op.sections {
			if section <= 0 {
				return nil, fmt.Errorf("split: split_sizes must be positive, got %v", op.sections)
			}
			total += section
		}
		if total != dimSize {
			return nil, fmt.Errorf(
				"split_with_sizes expects split_sizes to sum exactly to %d (input tensor's size at dimension %d), but got split_sizes=%v",
				dimSize, op.dim, op.sections)
		}
		lengths = op.sections
	}

	ctx.SaveForBackward(x.raw)

	outputs := make([]*Tensor, len(lengths))
	start := 0
	for i, length := range lengths {
		view, err := x.raw.Narrow(op.dim, start, length)
		if err != nil {
			return nil, err
		}
		outputs[i] = ctx.buildLink(view)
		start += length
	}
	return outputs, nil
}

// Backward implements Function.
func (op *SplitOp) Backward(ctx *Context, gradOutputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	saved, err := ctx.SavedTensors()
	if err != nil {
		return nil, err
	}
	dtype := saved[0].DType()

	chunks := make([]*tensor.RawTensor, len(ctx.outputs))
	for i, meta := range ctx.outputs {
		if g := gradOutputs[i]; g != nil {
			chunks[i] = g
		} else {
			chunks[i] = zeroLike(meta.shape, dtype, ctx.device)
		}
	}
	return []*tensor.RawTensor{ctx.backend.Cat(chunks, op.dim)}, nil
}

// Split divides the tensor into chunks of splitSize along dim. The last
// chunk is shorter when the dimension size is not evenly divisible. Every
// chunk is a view sharing the tensor's storage and version counter.
func (t *Tensor) Split(dim, splitSize int) ([]*Tensor, error) {
	return apply(NewSplitOp(dim, splitSize), t)
}

// SplitWithSizes divides the tensor along dim into chunks with the given
// lengths, which must sum exactly to the dimension size.
func (t *Tensor) SplitWithSizes(dim int, sections []int) ([]*Tensor, error) {
	return apply(NewSplitSectionsOp(dim, sections), t)
}
