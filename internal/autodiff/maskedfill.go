package autodiff

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// MaskedFillOp writes a scalar fill value into a tensor wherever a boolean
// mask is true. The mask aligns with the input's trailing dimensions; leading
// axes repeat it.
//
// Backward routes the upstream gradient by the same mask: the fill value
// absorbed the masked positions, so its gradient is their sum, and the input
// keeps only the unmasked positions.
type MaskedFillOp struct {
	mask    *tensor.RawTensor
	inplace bool
	coerced bool // value was moved host to accelerator during forward
}

// NewMaskedFillOp creates a masked fill with the given mask. With inplace the
// input tensor is mutated under the mutation guard; otherwise the result is a
// fresh copy.
func NewMaskedFillOp(mask *tensor.RawTensor, inplace bool) *MaskedFillOp {
	return &MaskedFillOp{mask: mask, inplace: inplace}
}

// Name implements Function.
func (op *MaskedFillOp) Name() string { return "MaskedFill" }

// Forward implements Function. Inputs: the tensor and a 0-dimensional fill
// value. All validation happens before the first write, so a rejected call
// leaves the input untouched.
func (op *MaskedFillOp) Forward(ctx *Context, inputs ...*Tensor) ([]*Tensor, error) {
	x, value := inputs[0], inputs[1]

	if ndim := len(value.Shape()); ndim != 0 {
		return nil, fmt.Errorf(
			"masked_fill only supports a 0-dimensional value tensor, but got tensor with %d dimension(s).", ndim)
	}
	if op.mask.DType() != tensor.Bool {
		return nil, fmt.Errorf("dtype of mask must be bool. Pass dtype=bool when constructing mask")
	}
	if value.DType() != x.DType() {
		return nil, fmt.Errorf("masked_fill: value dtype %s does not match input dtype %s", value.DType(), x.DType())
	}

	shape := x.Shape()
	maskShape := op.mask.Shape()
	if len(maskShape) > len(shape) {
		return nil, fmt.Errorf("masked_fill: mask has %d dimensions but input has only %d", len(maskShape), len(shape))
	}
	offset := len(shape) - len(maskShape)
	for d, size := range maskShape {
		if size != shape[offset+d] {
			return nil, fmt.Errorf(
				"masked_fill: mask shape %v does not match the trailing dimensions of input shape %v", maskShape, shape)
		}
	}

	// The fill value may ride on the host while the tensor lives on the
	// accelerator; the reverse pairing is an error.
	valRaw := value.raw
	if value.Device() != x.Device() {
		if x.Device() == tensor.CPU {
			return nil, fmt.Errorf("masked_fill: Expected inputs to be on same device")
		}
		valRaw = valRaw.ToDevice(x.Device())
		op.coerced = true
	}

	if op.inplace {
		if err := InplacePrecheck(x); err != nil {
			return nil, err
		}
		ctx.backend.FillWhere(x.raw, op.mask, valRaw)
		return []*Tensor{InplaceUpdate(x, ctx)}, nil
	}

	out := x.raw.Copy()
	ctx.backend.FillWhere(out, op.mask, valRaw)
	return []*Tensor{ctx.buildLink(out)}, nil
}

// Backward implements Function. The value gradient is computed first: it
// reads the upstream gradient at masked positions, and the input gradient
// then zeroes those positions in the same buffer.
func (op *MaskedFillOp) Backward(ctx *Context, gradOutputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	g := gradOutputs[0]
	if g == nil {
		return []*tensor.RawTensor{nil, nil}, nil
	}

	var valueGrad *tensor.RawTensor
	if ctx.NeedsInputGrad(1) {
		valueGrad = ctx.backend.SumWhere(g, op.mask)
		if op.coerced {
			valueGrad = valueGrad.ToDevice(tensor.CPU)
		}
	}

	var inputGrad *tensor.RawTensor
	if ctx.NeedsInputGrad(0) {
		ctx.backend.ZeroWhere(g, op.mask)
		inputGrad = g
	}
	return []*tensor.RawTensor{inputGrad, valueGrad}, nil
}

// MaskedFill returns a copy of the tensor with value written at every
// position where mask is true. value must be 0-dimensional; the mask must be
// Bool and match the tensor's trailing dimensions.
func (t *Tensor) MaskedFill(mask *tensor.RawTensor, value *Tensor) (*Tensor, error) {
	return applySingle(NewMaskedFillOp(mask, false), t, value)
}

// MaskedFillInplace writes value into the tensor at every position where
// mask is true, mutating its storage and bumping the version counter. The
// returned tensor is the receiver, relinked to the fill node.
func (t *Tensor) MaskedFillInplace(mask *tensor.RawTensor, value *Tensor) (*Tensor, error) {
	return applySingle(NewMaskedFillOp(mask, true), t, value)
}
