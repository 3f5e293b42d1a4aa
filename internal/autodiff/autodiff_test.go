package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/grad/internal/autodiff"
	"github.com/born-ml/grad/internal/backend/cpu"
	"github.com/born-ml/grad/internal/tensor"
)

func TestTensor_Basics(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend, true)
	require.NoError(t, err)

	assert.True(t, x.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, tensor.CPU, x.Device())
	assert.True(t, x.RequiresGrad())
	assert.True(t, x.IsLeaf())
	assert.Equal(t, "", x.GradFn())
	assert.Nil(t, x.Grad())
	assert.Same(t, backend, x.Backend())
	assert.Contains(t, x.String(), "shape=[2 3]")
}

func TestBackward_LeafRoot(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend, true)
	require.NoError(t, err)

	// No seed means ones.
	require.NoError(t, x.Backward(nil))
	assert.Equal(t, []float32{1, 1, 1}, values32(t, x.Grad()))

	// Gradients accumulate across backward calls.
	seed, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{3}, tensor.CPU)
	require.NoError(t, err)
	require.NoError(t, x.Backward(seed))
	assert.Equal(t, []float32{11, 21, 31}, values32(t, x.Grad()))

	x.ZeroGrad()
	assert.Nil(t, x.Grad())
}

func TestBackward_Errors(t *testing.T) {
	backend := cpu.New()

	x, err := autodiff.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend, false)
	require.NoError(t, err)
	assert.ErrorContains(t, x.Backward(nil), "does not require grad")

	y, err := autodiff.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend, true)
	require.NoError(t, err)
	bad, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, tensor.CPU)
	require.NoError(t, err)
	assert.ErrorContains(t, y.Backward(bad), "gradient shape [2] does not match tensor shape [3]")
}

// TestBackward_SharedSlotAccumulates drives one output slot into two
// consumers and checks that the producer runs once, after both consumers,
// with their gradients summed.
func TestBackward_SharedSlotAccumulates(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, backend, true)
	require.NoError(t, err)
	chunks, err := x.Split(0, 2)
	require.NoError(t, err)

	x2, err := autodiff.FromSlice(make([]float32, 4), tensor.Shape{2, 2}, backend, true)
	require.NoError(t, err)
	d := passThrough(t, x2)

	// The same chunk is written into both rows.
	d, err = d.CopySlices(tensor.Key{tensor.At(0)}, chunks[0])
	require.NoError(t, err)
	d, err = d.CopySlices(tensor.Key{tensor.At(1)}, chunks[0])
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 2, 1, 2}, values32(t, d.Raw()))
	assert.Equal(t, int64(2), d.Version())

	seed, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
	require.NoError(t, err)
	require.NoError(t, d.Backward(seed))

	// chunk 0 collected row gradients [1 2] and [3 4]; chunk 1 was unused
	// and contributes zeros.
	require.NotNil(t, x.Grad())
	assert.Equal(t, []float32{4, 6, 0, 0}, values32(t, x.Grad()))

	// Both rows of the destination were overwritten.
	require.NotNil(t, x2.Grad())
	assert.Equal(t, []float32{0, 0, 0, 0}, values32(t, x2.Grad()))
}

func TestBackward_StaleAfterInplaceOnSplitView(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, backend, true)
	require.NoError(t, err)
	chunks, err := x.Split(0, 2)
	require.NoError(t, err)

	value, err := autodiff.Scalar(float32(9), backend, false)
	require.NoError(t, err)
	mask := boolMask(t, []bool{true, true}, tensor.Shape{2})

	// Mutating one chunk writes through the shared buffer.
	mutated, err := chunks[0].MaskedFillInplace(mask, value)
	require.NoError(t, err)
	assert.Equal(t, []float32{9, 9, 3, 4}, values32(t, x.Raw()))
	assert.Equal(t, int64(1), x.Version())

	// Backward through the sibling chunk must refuse: the split pinned the
	// input at its pre-mutation version.
	err = chunks[1].Backward(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, autodiff.ErrStale)
	assert.ErrorContains(t, err, "modified by an inplace operation")
	assert.Nil(t, x.Grad())

	// The mutated chunk's own backward reaches the split node too.
	err = mutated.Backward(nil)
	assert.ErrorIs(t, err, autodiff.ErrStale)
	assert.Nil(t, x.Grad())
}

func TestBackward_ExternalMutationDetected(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, backend, true)
	require.NoError(t, err)
	chunks, err := x.Split(0, 2)
	require.NoError(t, err)

	// A mutation recorded through any alias of the storage counts.
	chunks[0].Raw().BumpVersion()

	err = chunks[1].Backward(nil)
	assert.ErrorIs(t, err, autodiff.ErrStale)
}

func TestVersion_SharedAcrossViews(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend, false)
	require.NoError(t, err)

	expanded, err := x.Expand(2, 3)
	require.NoError(t, err)
	chunks, err := x.Split(0, 1)
	require.NoError(t, err)

	value, err := autodiff.Scalar(float32(0), backend, false)
	require.NoError(t, err)
	mask := boolMask(t, []bool{true, false, true}, tensor.Shape{3})
	_, err = x.MaskedFillInplace(mask, value)
	require.NoError(t, err)

	assert.Equal(t, int64(1), x.Version())
	assert.Equal(t, int64(1), expanded.Version())
	assert.Equal(t, int64(1), chunks[0].Version())
	assert.Equal(t, int64(1), chunks[1].Version())
}

func TestDetach(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, backend, true)
	require.NoError(t, err)
	y, err := x.Expand(2, 3)
	require.NoError(t, err)

	d := y.Detach()
	assert.True(t, d.IsLeaf())
	assert.False(t, d.RequiresGrad())
	assert.Equal(t, "", d.GradFn())
	assert.True(t, d.Raw().SharesBufferWith(y.Raw()))
}

// TestBackward_SkipsUnwantedGradients wires a counting backend and checks
// that gradient kernels only run for inputs that asked for a gradient.
func TestBackward_SkipsUnwantedGradients(t *testing.T) {
	mask := boolMask(t, []bool{true, false, true}, tensor.Shape{3})

	t.Run("ValueGradSkipped", func(t *testing.T) {
		mock := tensor.NewMockBackend(cpu.New())
		x, err := autodiff.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, mock, true)
		require.NoError(t, err)
		value, err := autodiff.Scalar(float32(9), mock, false)
		require.NoError(t, err)

		y, err := x.MaskedFill(mask, value)
		require.NoError(t, err)
		assert.Equal(t, 1, mock.Calls("FillWhere"))

		require.NoError(t, y.Backward(nil))
		assert.Equal(t, 1, mock.Calls("ZeroWhere"))
		assert.Equal(t, 0, mock.Calls("SumWhere"))
		assert.Nil(t, value.Grad())
	})

	t.Run("InputGradSkipped", func(t *testing.T) {
		mock := tensor.NewMockBackend(cpu.New())
		x, err := autodiff.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, mock, false)
		require.NoError(t, err)
		value, err := autodiff.Scalar(float32(9), mock, true)
		require.NoError(t, err)

		y, err := x.MaskedFill(mask, value)
		require.NoError(t, err)

		require.NoError(t, y.Backward(nil))
		assert.Equal(t, 0, mock.Calls("ZeroWhere"))
		assert.Equal(t, 1, mock.Calls("SumWhere"))
		require.NotNil(t, value.Grad())
		assert.Equal(t, []float32{2}, values32(t, value.Grad()))
	})
}
