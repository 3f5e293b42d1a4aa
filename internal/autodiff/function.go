package autodiff

import (
	"github.com/born-ml/grad/internal/tensor"
)

// Function is a differentiable operation: one vertex type of the computation
// graph. Implementations are small structs holding the operation's
// configuration and whatever forward derives for backward, in typed fields.
type Function interface {
	// Forward computes the result tensors from the inputs. It validates
	// parameters before any mutation or allocation (a failed call has no
	// observable side effect), wraps every output through ctx.buildLink or
	// the mutation guard, and pins via ctx.SaveForBackward any input whose
	// data backward will read.
	Forward(ctx *Context, inputs ...*Tensor) ([]*Tensor, error)

	// Backward maps output gradients to input gradients, positionally
	// aligned with Forward's inputs. A nil entry means "no contribution".
	// gradOutputs holds one slot per output; slots nowhere consumed
	// downstream arrive nil and must be substituted with zeros of the
	// recorded shape where a concrete value is required.
	Backward(ctx *Context, gradOutputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

	// Name returns the operation's stable name.
	Name() string
}

// apply runs fn's forward with a fresh Context, capturing the input edges
// first so in-place relinking cannot corrupt the graph.
func apply(fn Function, inputs ...*Tensor) ([]*Tensor, error) {
	if len(inputs) == 0 {
		panic("autodiff: apply requires at least one input")
	}

	ctx := &Context{
		fn:      fn,
		backend: inputs[0].backend,
		device:  inputs[0].raw.Device(),
		edges:   make([]edge, len(inputs)),
		needs:   make([]bool, len(inputs)),
	}
	for i, in := range inputs {
		ctx.edges[i] = edge{t: in, fn: in.gradFn, idx: in.outputIdx}
		ctx.needs[i] = in.requiresGrad
		if in.requiresGrad {
			ctx.requiresGrad = true
		}
	}

	return fn.Forward(ctx, inputs...)
}

// applySingle is apply for the common single-output case.
func applySingle(fn Function, inputs ...*Tensor) (*Tensor, error) {
	outputs, err := apply(fn, inputs...)
	if err != nil {
		return nil, err
	}
	return outputs[0], nil
}
