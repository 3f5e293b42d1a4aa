// Package autodiff implements reverse-mode automatic differentiation over
// raw tensors.
//
// Operations are graph nodes: each op implements the Function interface with
// a forward pass that computes results on the inputs' backend and a backward
// pass that maps output gradients to input gradients. A Context carries one
// invocation's state (captured edges, saved tensors, per-input grad flags)
// from forward to its matching backward.
//
// Aliasing and mutation are tracked with version counters on the underlying
// storage: saving a tensor for backward pins its version, and every in-place
// mutation goes through the mutation guard, which bumps the counter. A pinned
// tensor whose counter moved fails backward with ErrStale instead of
// computing silently wrong gradients.
//
// Usage:
//
//	backend := cpu.New()
//	x, _ := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend, true)
//	y, _ := x.Expand(4, 2, 3)
//	if err := y.Backward(nil); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(x.Grad().AsFloat32()) // [4 4 4 4 4 4]
package autodiff

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// Tensor wraps a raw array with the bookkeeping reverse-mode autodiff needs:
// the node that produced it, which output slot of that node it is, whether
// gradients are wanted, and the accumulated gradient for leaves.
//
// A view Tensor (from Split or Expand) shares the base tensor's storage and
// therefore its version counter.
type Tensor struct {
	raw     *tensor.RawTensor
	backend tensor.Backend

	gradFn       *Context // producing node, nil for leaves
	outputIdx    int      // output slot on gradFn
	requiresGrad bool
	grad         *tensor.RawTensor
}

// NewTensor wraps a raw tensor as an autodiff leaf.
func NewTensor(raw *tensor.RawTensor, backend tensor.Backend, requiresGrad bool) *Tensor {
	return &Tensor{
		raw:          raw,
		backend:      backend,
		requiresGrad: requiresGrad,
	}
}

// FromSlice creates a leaf tensor on the backend's device from a flat slice.
func FromSlice[T tensor.DType](data []T, shape tensor.Shape, backend tensor.Backend, requiresGrad bool) (*Tensor, error) {
	raw, err := tensor.FromSlice(data, shape, backend.Device())
	if err != nil {
		return nil, err
	}
	return NewTensor(raw, backend, requiresGrad), nil
}

// Scalar creates a 0-dimensional leaf tensor holding a single value.
func Scalar[T tensor.DType](value T, backend tensor.Backend, requiresGrad bool) (*Tensor, error) {
	raw, err := tensor.Scalar(value, backend.Device())
	if err != nil {
		return nil, err
	}
	return NewTensor(raw, backend, requiresGrad), nil
}

// Raw returns the underlying raw tensor.
func (t *Tensor) Raw() *tensor.RawTensor {
	return t.raw
}

// Backend returns the compute backend this tensor is bound to.
func (t *Tensor) Backend() tensor.Backend {
	return t.backend
}

// Shape returns the tensor shape.
func (t *Tensor) Shape() tensor.Shape {
	return t.raw.Shape()
}

// DType returns the element type.
func (t *Tensor) DType() tensor.DataType {
	return t.raw.DType()
}

// Device returns the device the tensor is tagged with.
func (t *Tensor) Device() tensor.Device {
	return t.raw.Device()
}

// RequiresGrad reports whether gradients flow through this tensor.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// IsLeaf reports whether the tensor was created by the user rather than by
// an operation.
func (t *Tensor) IsLeaf() bool {
	return t.gradFn == nil
}

// Grad returns the accumulated gradient, or nil if none has been computed.
// Only leaves with RequiresGrad receive gradients.
func (t *Tensor) Grad() *tensor.RawTensor {
	return t.grad
}

// ZeroGrad clears the accumulated gradient.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

// GradFn returns the producing node's operation name, or "" for leaves.
func (t *Tensor) GradFn() string {
	if t.gradFn == nil {
		return ""
	}
	return t.gradFn.fn.Name()
}

// Detach returns a new leaf tensor sharing this tensor's storage, cut loose
// from the graph.
func (t *Tensor) Detach() *Tensor {
	return &Tensor{
		raw:     t.raw.Clone(),
		backend: t.backend,
	}
}

// Version returns the storage version counter. Views and clones share it.
func (t *Tensor) Version() int64 {
	return t.raw.Version()
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, dtype=%s, device=%s, requiresGrad=%v)",
		t.raw.Shape(), t.raw.DType(), t.raw.Device(), t.requiresGrad)
}

// Backward runs reverse-mode differentiation from this tensor, accumulating
// gradients into every reachable leaf that requires grad.
//
// grad seeds the traversal; nil means an all-ones seed of this tensor's
// shape. The seed is copied, so the caller's tensor is never mutated by
// gradient accumulation.
func (t *Tensor) Backward(grad *tensor.RawTensor) error {
	return backward(t, grad)
}
