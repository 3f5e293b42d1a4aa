package autodiff

import (
	"fmt"

	"github.com/born-ml/grad/internal/tensor"
)

// zeroLike allocates a zero-filled gradient for a recorded output slot.
// Substituting zeros for missing upstream gradients happens here, not in
// scattered conditionals inside each backward.
func zeroLike(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	raw, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("autodiff: zero gradient for recorded shape %v: %v", shape, err))
	}
	return raw
}

// onesLike allocates an all-ones seed gradient shaped like r.
func onesLike(r *tensor.RawTensor) *tensor.RawTensor {
	raw, err := tensor.Ones(r.Shape(), r.DType(), r.Device())
	if err != nil {
		panic(fmt.Sprintf("autodiff: ones seed for shape %v: %v", r.Shape(), err))
	}
	return raw
}

// reverseBroadcast reduces grad, shaped like a broadcast result, back down
// to shape: extra leading axes are summed and squeezed away, and broadcast
// singleton axes are summed with the axis kept at size 1.
//
// The result never aliases grad; when no reduction applies the gradient is
// copied, so callers may mutate grad afterwards.
func reverseBroadcast(b tensor.Backend, grad *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	gShape := grad.Shape()
	lead := len(gShape) - len(shape)

	var singleton []int
	for d := range shape {
		if shape[d] == 1 && gShape[lead+d] != 1 {
			singleton = append(singleton, lead+d)
		}
	}

	if len(singleton) > 0 {
		grad = b.SumDims(grad, singleton, true)
	}
	if lead > 0 {
		leading := make([]int, lead)
		for d := range leading {
			leading[d] = d
		}
		return b.SumDims(grad, leading, false)
	}
	if len(singleton) == 0 {
		return grad.Copy()
	}
	return grad
}

// accumulate folds g into the running gradient for one slot.
func accumulate(b tensor.Backend, into, g *tensor.RawTensor) *tensor.RawTensor {
	if into == nil {
		return g
	}
	return b.Add(into, g)
}
