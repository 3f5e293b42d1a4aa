package autodiff

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// CopySlicesOp writes a source tensor into the region of a destination
// tensor addressed by a slicing key, in place. The source broadcasts up to
// the region's shape where its sizes allow.
//
// Backward splits the upstream gradient by the same key: the source receives
// the region's gradient reduced back to its own shape, and the destination
// receives the gradient with the overwritten region zeroed.
type CopySlicesOp struct {
	key       tensor.Key
	srcShape  tensor.Shape
	srcDevice tensor.Device
	coerced   bool // src was moved to dst's device during forward
}

// NewCopySlicesOp creates a sliced copy targeting the region selected by key.
func NewCopySlicesOp(key tensor.Key) *CopySlicesOp {
	return &CopySlicesOp{key: append(tensor.Key(nil), key...)}
}

// Name implements Function.
func (op *CopySlicesOp) Name() string { return "CopySlices" }

// Forward implements Function. Inputs: destination, source. The key and the
// source shape are validated before the first write, so a rejected call
// leaves the destination untouched.
func (op *CopySlicesOp) Forward(ctx *Context, inputs ...*Tensor) ([]*Tensor, error) {
	dst, src := inputs[0], inputs[1]

	if src.DType() != dst.DType() {
		return nil, fmt.Errorf("copy slices: source dtype %s does not match destination dtype %s", src.DType(), dst.DType())
	}

	region, err := dst.raw.Slice(op.key)
	if err != nil {
		return nil, err
	}
	if !src.Shape().BroadcastableTo(region.Shape()) {
		return nil, fmt.Errorf("copy slices: source shape %v does not broadcast to region shape %v", src.Shape(), region.Shape())
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

	ctx.backend.CopyInto(region, srcRaw)
	return []*Tensor{InplaceUpdate(dst, ctx)}, nil
}

// Backward implements Function. The source gradient is built first from the
// live region of the upstream gradient; zeroing the region for the
// destination gradient mutates that same buffer.
func (op *CopySlicesOp) Backward(ctx *Context, gradOutputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	g := gradOutputs[0]
	if g == nil {
		return []*tensor.RawTensor{nil, nil}, nil
	}

	var srcGrad *tensor.RawTensor
	if ctx.NeedsInputGrad(1) {
		region, err := g.Slice(op.key)
		if err != nil {
			return nil, err
		}
		srcGrad = reverseBroadcast(ctx.backend, region, op.srcShape)
		if op.coerced {
			srcGrad = srcGrad.ToDevice(op.srcDevice)
		}
	}

	var dstGrad *tensor.RawTensor
	if ctx.NeedsInputGrad(0) {
		region, err := g.Slice(op.key)
		if err != nil {
			return nil, err
		}
		ctx.backend.Zero(region)
		dstGrad = g
	}
	return []*tensor.RawTensor{dstGrad, srcGrad}, nil
}

// CopySlices writes src into the region of the tensor selected by key,
// mutating its storage and bumping the version counter. src broadcasts up to
// the region's shape where its sizes allow. The returned tensor is the
// receiver, relinked to the copy node.
func (t *Tensor) CopySlices(key tensor.Key, src *Tensor) (*Tensor, error) {
	return applySingle(NewCopySlicesOp(key), t, src)
}
