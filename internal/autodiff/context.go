package autodiff

import (
	"errors"

	"github.com/born-ml/grad/internal/tensor"
)

// ErrStale reports that a tensor saved for backward was mutated in place
// after being saved. Continuing would produce silently wrong gradients, so
// backward fails instead.
var ErrStale = errors.New("one of the variables needed for gradient computation has been modified by an inplace operation")

// edge records where one forward input came from, captured before the
// operation runs. In-place ops relink their output's gradFn to the new node,
// so the producer must be snapshotted here or the graph would loop back into
// itself.
type edge struct {
	t   *Tensor  // the input tensor, for leaf gradient accumulation
	fn  *Context // the input's producer at capture time, nil for leaves
	idx int      // output slot on that producer
}

// savedRef pins a tensor's storage version at save time.
type savedRef struct {
	raw     *tensor.RawTensor
	version int64
}

// outputMeta records what backward needs to know about an output slot even
// when no gradient arrives for it.
type outputMeta struct {
	shape tensor.Shape
	dtype tensor.DataType
}

// Context carries one operation invocation's state from forward to backward.
// It is created per forward call, written only by that call, and read-only
// during the matching backward. The Context is also the graph node: output
// tensors point back at it through gradFn.
type Context struct {
	fn      Function
	backend tensor.Backend
	device  tensor.Device

	edges   []edge
	needs   []bool // per input: was a gradient wanted at forward time
	saved   []savedRef
	outputs []outputMeta

	requiresGrad bool
}

// Backend returns the compute backend the forward inputs ran on. Backward
// allocates gradients through it.
func (ctx *Context) Backend() tensor.Backend {
	return ctx.backend
}

// Device returns the device tag of the forward inputs.
func (ctx *Context) Device() tensor.Device {
	return ctx.device
}

// NeedsInputGrad reports whether input i's gradient is wanted. Backward
// consults this before doing work for input i.
func (ctx *Context) NeedsInputGrad(i int) bool {
	return ctx.needs[i]
}

// SaveForBackward pins tensors whose data backward will read. Each tensor's
// storage version is recorded; SavedTensors fails with ErrStale if any pinned
// tensor was mutated in place after this call.
func (ctx *Context) SaveForBackward(ts ...*tensor.RawTensor) {
	for _, raw := range ts {
		ctx.saved = append(ctx.saved, savedRef{raw: raw, version: raw.Version()})
	}
}

// SavedTensors returns the pinned tensors in save order, verifying that none
// was mutated since forward.
func (ctx *Context) SavedTensors() ([]*tensor.RawTensor, error) {
	if err := ctx.checkSaved(); err != nil {
		return nil, err
	}
	out := make([]*tensor.RawTensor, len(ctx.saved))
	for i, ref := range ctx.saved {
		out[i] = ref.raw
	}
	return out, nil
}

// checkSaved compares every pinned version against the current one.
func (ctx *Context) checkSaved() error {
	for _, ref := range ctx.saved {
		if ref.raw.Version() != ref.version {
			return ErrStale
		}
	}
	return nil
}

// buildLink wraps a raw result as the next output of this node, recording
// the output slot and shape for backward. Under grad mode the tensor points
// back at this Context as its producer.
func (ctx *Context) buildLink(raw *tensor.RawTensor) *Tensor {
	idx := len(ctx.outputs)
	ctx.outputs = append(ctx.outputs, outputMeta{shape: raw.Shape().Clone(), dtype: raw.DType()})

	t := &Tensor{
		raw:          raw,
		backend:      ctx.backend,
		requiresGrad: ctx.requiresGrad,
	}
	if ctx.requiresGrad {
		t.gradFn = ctx
		t.outputIdx = idx
	}
	return t
}
