package autodiff

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// slot addresses one output of one node during the backward walk.
type slot struct {
	ctx *Context
	idx int
}

// backward seeds the root gradient and walks the graph in reverse
// topological order, invoking each node's Backward with the gradients
// accumulated for its output slots and folding the produced gradients into
// the next nodes' slots. Leaves with requiresGrad collect into Grad();
// intermediate slot gradients are dropped as soon as their node has run.
//
// Execution is single-threaded: forward has completed by the time this
// starts, and no two nodes run concurrently on one graph.
func backward(root *Tensor, grad *tensor.RawTensor) error {
	if !root.requiresGrad {
		return fmt.Errorf("autodiff: tensor does not require grad")
	}

	var seed *tensor.RawTensor
	if grad == nil {
		seed = onesLike(root.raw)
	} else {
		if !grad.Shape().Equal(root.raw.Shape()) {
			return fmt.Errorf("autodiff: gradient shape %v does not match tensor shape %v", grad.Shape(), root.raw.Shape())
		}
		// Private copy: gradient accumulation mutates its buffers.
		seed = grad.Copy()
	}

	if root.gradFn == nil {
		root.grad = accumulate(root.backend, root.grad, seed)
		return nil
	}

	grads := map[slot]*tensor.RawTensor{
		{ctx: root.gradFn, idx: root.outputIdx}: seed,
	}

	for _, ctx := range topoOrder(root.gradFn) {
		gradOutputs := make([]*tensor.RawTensor, len(ctx.outputs))
		any := false
		for i := range ctx.outputs {
			s := slot{ctx: ctx, idx: i}
			if g, ok := grads[s]; ok {
				gradOutputs[i] = g
				delete(grads, s)
				any = true
			}
		}
		if !any {
			continue
		}

		if err := ctx.checkSaved(); err != nil {
			return err
		}

		inputGrads, err := ctx.fn.Backward(ctx, gradOutputs)
		if err != nil {
			return err
		}
		if len(inputGrads) != len(ctx.edges) {
			return fmt.Errorf("autodiff: %s returned %d gradients for %d inputs", ctx.fn.Name(), len(inputGrads), len(ctx.edges))
		}

		for i, g := range inputGrads {
			if g == nil {
				continue
			}
			e := ctx.edges[i]
			if e.fn == nil {
				if e.t.requiresGrad {
					e.t.grad = accumulate(e.t.backend, e.t.grad, g)
				}
				continue
			}
			s := slot{ctx: e.fn, idx: e.idx}
			grads[s] = accumulate(ctx.backend, grads[s], g)
		}
	}

	return nil
}

// topoOrder returns the nodes reachable from root in execution order: every
// node appears before the nodes that produced its inputs, so all gradients
// into a slot have accumulated by the time its node runs.
func topoOrder(root *Context) []*Context {
	var order []*Context
	visited := make(map[*Context]bool)

	var visit func(ctx *Context)
	visit = func(ctx *Context) {
		if visited[ctx] {
			return
		}
		visited[ctx] = true
		for i, e := range ctx.edges {
			if ctx.needs[i] && e.fn != nil {
				visit(e.fn)
			}
		}
		order = append(order, ctx)
	}
	visit(root)

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
