package tensor

// Backend is the kernel surface the autodiff layer computes through. Each
// device has one implementation; operations pick the backend of their primary
// input and route every array computation through it.
//
// Kernels panic on contract violations (shape or dtype mismatches): callers
// validate user input before dispatching.
//
// Implementations:
//   - cpu: pure Go with gonum fast paths
//   - webgpu: compute shaders via WGSL, host fallback off Windows
type Backend interface {
	// Add returns the element-wise sum of two same-shaped tensors.
	// Used for gradient accumulation.
	Add(a, b *RawTensor) *RawTensor

	// Cat concatenates tensors along dim into a fresh contiguous tensor.
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// SumDims reduces x over the given dimensions. With keepDims the reduced
	// dimensions stay as size 1. An empty dims list is a no-op copy.
	SumDims(x *RawTensor, dims []int, keepDims bool) *RawTensor

	// FillWhere writes value (a scalar tensor) into x at every position where
	// mask is true. The mask aligns with x's trailing dimensions. Mutates x.
	FillWhere(x, mask, value *RawTensor)

	// ZeroWhere zeroes x at every position where mask is true. Mutates x.
	ZeroWhere(x, mask *RawTensor)

	// SumWhere returns a 0-dimensional tensor holding the sum of x at every
	// position where mask is true.
	SumWhere(x, mask *RawTensor) *RawTensor

	// CopyInto writes src into dst, broadcasting src as needed. dst may be a
	// strided view; writes land in its underlying buffer. Mutates dst.
	CopyInto(dst, src *RawTensor)

	// Zero fills dst with zeros. dst may be a strided view. Mutates dst.
	Zero(dst *RawTensor)

	// Metadata
	Name() string
	Device() Device
}
