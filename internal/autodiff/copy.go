package autodiff

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// CopyOp overwrites a destination tensor's storage with a source tensor's
// values, in place. The source broadcasts up to the destination's shape
// where its sizes allow.
type CopyOp struct {
	srcShape  tensor.Shape
	srcDevice tensor.Device
	coerced   bool // src was moved to dst's device during forward
}

// NewCopyOp creates a full overwrite copy.
func NewCopyOp() *CopyOp { return &CopyOp{} }

// Name implements Function.
func (op *CopyOp) Name() string { return "Copy" }

// Forward implements Function. Inputs: destination, source.
func (op *CopyOp) Forward(ctx *Context, inputs ...*Tensor) ([]*Tensor, error) {
	dst, src := inputs[0], inputs[1]

	if src.DType() != dst.DType() {
		return nil, fmt.Errorf("copy: source dtype %s does not match destination dtype %s", src.DType(), dst.DType())
	}
	if !src.Shape().BroadcastableTo(dst.Shape()) {
		return nil, fmt.Errorf("copy: source shape %v does not broadcast to destination shape %v", src.Shape(), dst.Shape())
	}
	if err := InplacePrecheck(dst); err != nil {
		return nil, err
	}

	op.srcShape = src.Shape().Clone()
	op.srcDevice = src.Device()
	srcRaw := src.raw
	if src.Device() != dst.Device() {
		srcRaw = srcRaw.ToDevice(dst.Device())
		op.coerced = true
	}

	ctx.backend.CopyInto(dst.raw, srcRaw)
	return []*Tensor{InplaceUpdate(dst, ctx)}, nil
}

// Backward implements Function. The overwritten value contributed nothing to
// the result, so the destination's gradient is fresh zeros rather than the
// upstream buffer zeroed in place: that buffer may flow onward as the source
// gradient.
func (op *CopyOp) Backward(ctx *Context, gradOutputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	g := gradOutputs[0]
	if g == nil {
		return []*tensor.RawTensor{nil, nil}, nil
	}

	var srcGrad *tensor.RawTensor
	if ctx.NeedsInputGrad(1) {
		srcGrad = reverseBroadcast(ctx.backend, g, op.srcShape)
		if op.coerced {
			srcGrad = srcGrad.ToDevice(op.srcDevice)
		}
	}

	var dstGrad *tensor.RawTensor
	if ctx.NeedsInputGrad(0) {
		dstGrad = zeroLike(g.Shape(), g.DType(), ctx.device)
	}
	return []*tensor.RawTensor{dstGrad, srcGrad}, nil
}

// CopyFrom overwrites the tensor's entire storage with src's values,
// mutating it and bumping the version counter. src broadcasts up to the
// tensor's shape where its sizes allow. The returned tensor is the receiver,
// relinked to the copy node.
func (t *Tensor) CopyFrom(src *Tensor) (*Tensor, error) {
	return applySingle(NewCopyOp(), t, src)
}
