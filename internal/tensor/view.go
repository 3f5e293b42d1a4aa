package tensor

import "fmt"

// indexKind discriminates the selector variants of an Index.
type indexKind int

const (
	atIndex indexKind = iota
	spanIndex
	allIndex
)

// Index selects elements along one dimension of a tensor: a single position,
// a half-open span, or the whole dimension.
type Index struct {
	kind   indexKind
	pos    int
	lo, hi int
}

// At selects a single position along a dimension, dropping it from the
// result. Negative positions count from the end.
func At(pos int) Index {
	return Index{kind: atIndex, pos: pos}
}

// Span selects the half-open range [lo, hi) along a dimension. Negative
// bounds count from the end; out-of-range bounds are clamped.
func Span(lo, hi int) Index {
	return Index{kind: spanIndex, lo: lo, hi: hi}
}

// All selects the entire dimension.
func All() Index {
	return Index{kind: allIndex}
}

// Key addresses a sub-region of a tensor, one Index per leading dimension.
// Dimensions beyond the key's length are kept whole.
type Key []Index

// Slice returns a view of the tensor selected by the key. The view shares
// the tensor's buffer: writes through it are visible to every alias, and it
// reports the same Version().
func (r *RawTensor) Slice(key Key) (*RawTensor, error) {
	if len(key) > len(r.shape) {
		return nil, fmt.Errorf("slice: too many indices (%d) for tensor of dimension %d", len(key), len(r.shape))
	}

	offset := r.offset
	shape := make(Shape, 0, len(r.shape))
	stride := make([]int, 0, len(r.shape))

	for d, size := range r.shape {
		if d >= len(key) {
			shape = append(shape, size)
			stride = append(stride, r.stride[d])
			continue
		}
		idx := key[d]
		switch idx.kind {
		case atIndex:
			pos := idx.pos
			if pos < 0 {
				pos += size
			}
			if pos < 0 || pos >= size {
				return nil, fmt.Errorf("index %d is out of bounds for dimension %d with size %d", idx.pos, d, size)
			}
			offset += pos * r.stride[d]
		case spanIndex:
			lo, hi := idx.lo, idx.hi
			if lo < 0 {
				lo += size
			}
			if hi < 0 {
				hi += size
			}
			if lo < 0 {
				lo = 0
			}
			if hi > size {
				hi = size
			}
			if hi <= lo {
				return nil, fmt.Errorf("slice: empty span [%d:%d) at dimension %d with size %d", idx.lo, idx.hi, d, size)
			}
			offset += lo * r.stride[d]
			shape = append(shape, hi-lo)
			stride = append(stride, r.stride[d])
		case allIndex:
			shape = append(shape, size)
			stride = append(stride, r.stride[d])
		}
	}

	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape,
		stride: stride,
		dtype:  r.dtype,
		device: r.device,
		offset: offset,
	}, nil
}

// Narrow returns a view of the tensor restricted to [start, start+length)
// along dim. The view shares the tensor's buffer and version counter.
func (r *RawTensor) Narrow(dim, start, length int) (*RawTensor, error) {
	ndim := len(r.shape)
	if dim < -ndim || dim >= ndim {
		return nil, fmt.Errorf("narrow: dimension %d out of range for %dD tensor", dim, ndim)
	}
	if dim < 0 {
		dim += ndim
	}
	if length <= 0 || start < 0 || start+length > r.shape[dim] {
		return nil, fmt.Errorf("narrow: invalid range [%d, %d) for dimension %d with size %d",
			start, start+length, dim, r.shape[dim])
	}

	shape := r.shape.Clone()
	shape[dim] = length

	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape,
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
		offset: r.offset + start*r.stride[dim],
	}, nil
}

// AsStrided returns a view with the given shape and strides over the same
// buffer. A stride of 0 repeats the dimension without copying, which is how
// broadcast views are built. No bounds are derived from the arguments, so
// callers must pass strides that stay inside the buffer.
func (r *RawTensor) AsStrided(shape Shape, stride []int) (*RawTensor, error) {
	if len(shape) != len(stride) {
		return nil, fmt.Errorf("as_strided: shape %v and strides %v have different lengths", shape, stride)
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("as_strided: %w", err)
	}

	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape.Clone(),
		stride: append([]int(nil), stride...),
		dtype:  r.dtype,
		device: r.device,
		offset: r.offset,
	}, nil
}

// IsContiguous reports whether the view's elements are laid out row-major
// with no gaps, starting at the offset.
func (r *RawTensor) IsContiguous() bool {
	expected := r.shape.ComputeStrides()
	for d := range r.stride {
		if r.stride[d] != expected[d] {
			return false
		}
	}
	return true
}

// Contiguous returns the tensor itself when it is already contiguous, or a
// fresh row-major copy of the view's elements otherwise.
func (r *RawTensor) Contiguous() *RawTensor {
	if r.IsContiguous() {
		return r
	}
	return r.Copy()
}

// Copy returns a fresh contiguous tensor holding the view's elements. The
// result owns its buffer and starts with version 0.
func (r *RawTensor) Copy() *RawTensor {
	out, err := NewRaw(r.shape, r.dtype, r.device)
	if err != nil {
		panic(fmt.Sprintf("copy: %v", err))
	}

	elem := r.dtype.Size()
	n := r.NumElements()
	dst := out.buffer.data
	src := r.buffer.data

	if r.IsContiguous() {
		copy(dst, src[r.offset*elem:(r.offset+n)*elem])
		return out
	}

	logical := r.shape.ComputeStrides()
	for i := 0; i < n; i++ {
		off := r.offset
		temp := i
		for d := 0; d < len(logical); d++ {
			coord := temp / logical[d]
			temp %= logical[d]
			off += coord * r.stride[d]
		}
		copy(dst[i*elem:(i+1)*elem], src[off*elem:(off+1)*elem])
	}
	return out
}

// Reshaped returns a view of a contiguous tensor with a new shape holding the
// same number of elements. The buffer is shared.
func (r *RawTensor) Reshaped(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("reshape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("reshape: incompatible shapes: %v -> %v (different number of elements)", r.shape, shape)
	}
	if !r.IsContiguous() {
		return nil, fmt.Errorf("reshape: tensor is not contiguous")
	}

	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
		device: r.device,
		offset: r.offset,
	}, nil
}

// ToDevice returns a contiguous copy of the tensor tagged for the given
// device. Buffers are host-resident in this engine and the accelerator
// backend uploads them per dispatch, so a transfer is a copy plus a retag.
func (r *RawTensor) ToDevice(to Device) *RawTensor {
	out := r.Copy()
	out.device = to
	return out
}
