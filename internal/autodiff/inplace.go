package autodiff

import (
	"errors"
)

// errInplaceOnLeaf rejects in-place mutation of a leaf that requires grad:
// the leaf's original value is what its gradient belongs to, and overwriting
// it would orphan that gradient.
var errInplaceOnLeaf = errors.New("a leaf Variable that requires grad is being used in an in-place operation.")

// InplacePrecheck validates that t may be mutated in place. It is called by
// every in-place forward before the first write, so rejected calls leave no
// partial mutation behind.
func InplacePrecheck(t *Tensor) error {
	if t.requiresGrad && t.gradFn == nil {
		return errInplaceOnLeaf
	}
	return nil
}

// InplaceUpdate records an in-place mutation of t by ctx's operation: it
// bumps the storage version counter and relinks t to the mutating node while
// preserving the tensor's identity (same storage, same *Tensor).
//
// This is the sole place the version counter increments. Every alias of t's
// storage observes the bump; saved references pinned before it fail their
// version check at backward time.
func InplaceUpdate(t *Tensor, ctx *Context) *Tensor {
	t.raw.BumpVersion()

	idx := len(ctx.outputs)
	ctx.outputs = append(ctx.outputs, outputMeta{shape: t.raw.Shape().Clone(), dtype: t.raw.DType()})

	if ctx.requiresGrad {
		t.gradFn = ctx
		t.outputIdx = idx
		t.requiresGrad = true
	}
	return t
}
