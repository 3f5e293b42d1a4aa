package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/grad/internal/autodiff"
	"github.com/born-ml/grad/internal/backend/cpu"
	"github.com/born-ml/grad/internal/tensor"
)

// values32 materializes a possibly strided view and returns its elements in
// logical row-major order.
func values32(t *testing.T, r *tensor.RawTensor) []float32 {
	t.Helper()
	return r.Copy().AsFloat32()[:r.NumElements()]
}

func TestSplit_EqualChunks(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, tensor.Shape{5, 2}, backend, false)
	require.NoError(t, err)

	chunks, err := x.Split(0, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	// Last chunk is shorter: 5 = 2 + 2 + 1.
	assert.True(t, chunks[0].Shape().Equal(tensor.Shape{2, 2}))
	assert.True(t, chunks[1].Shape().Equal(tensor.Shape{2, 2}))
	assert.True(t, chunks[2].Shape().Equal(tensor.Shape{1, 2}))

	assert.Equal(t, []float32{1, 2, 3, 4}, values32(t, chunks[0].Raw()))
	assert.Equal(t, []float32{5, 6, 7, 8}, values32(t, chunks[1].Raw()))
	assert.Equal(t, []float32{9, 10}, values32(t, chunks[2].Raw()))

	// Chunks are views, not copies.
	for _, c := range chunks {
		assert.True(t, c.Raw().SharesBufferWith(x.Raw()))
	}
}

func TestSplit_NegativeDim(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, tensor.Shape{2, 6}, backend, false)
	require.NoError(t, err)

	chunks, err := x.Split(-1, 3)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, []float32{1, 2, 3, 7, 8, 9}, values32(t, chunks[0].Raw()))
	assert.Equal(t, []float32{4, 5, 6, 10, 11, 12}, values32(t, chunks[1].Raw()))
}

func TestSplit_WritesThroughChunkVisible(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, backend, false)
	require.NoError(t, err)

	chunks, err := x.Split(0, 2)
	require.NoError(t, err)

	chunks[1].Raw().AsFloat32()[0] = 99

	assert.Equal(t, []float32{1, 2, 99, 4}, values32(t, x.Raw()))
}

func TestSplit_Backward(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, tensor.Shape{5, 2}, backend, true)
	require.NoError(t, err)

	chunks, err := x.Split(0, 2)
	require.NoError(t, err)
	assert.Equal(t, "Split", chunks[0].GradFn())

	seed, err := tensor.FromSlice([]float32{2, 2, 2, 2}, tensor.Shape{2, 2}, tensor.CPU)
	require.NoError(t, err)
	require.NoError(t, chunks[1].Backward(seed))

	// Unused chunks contribute zeros of their recorded shapes.
	require.NotNil(t, x.Grad())
	assert.Equal(t, []float32{0, 0, 0, 0, 2, 2, 2, 2, 0, 0}, values32(t, x.Grad()))

	// A second backward through another chunk accumulates.
	require.NoError(t, chunks[0].Backward(nil))
	assert.Equal(t, []float32{1, 1, 1, 1, 2, 2, 2, 2, 0, 0}, values32(t, x.Grad()))
}

func TestSplitWithSizes(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6}, backend, true)
	require.NoError(t, err)

	chunks, err := x.SplitWithSizes(0, []int{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, []float32{1}, values32(t, chunks[0].Raw()))
	assert.Equal(t, []float32{2, 3}, values32(t, chunks[1].Raw()))
	assert.Equal(t, []float32{4, 5, 6}, values32(t, chunks[2].Raw()))

	seed, err := tensor.FromSlice([]float32{7, 8}, tensor.Shape{2}, tensor.CPU)
	require.NoError(t, err)
	require.NoError(t, chunks[1].Backward(seed))
	assert.Equal(t, []float32{0, 7, 8, 0, 0, 0}, values32(t, x.Grad()))
}

func TestSplitWithSizes_SumMismatch(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6}, backend, false)
	require.NoError(t, err)

	_, err = x.SplitWithSizes(0, []int{2, 2})
	require.Error(t, err)
	assert.ErrorContains(t, err, "split_with_sizes expects split_sizes to sum exactly to 6")
	assert.ErrorContains(t, err, "split_sizes=[2 2]")
}

func TestSplit_InvalidArguments(t *testing.T) {
	backend := cpu.New()
	x, err := autodiff.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend, false)
	require.NoError(t, err)

	_, err = x.Split(2, 1)
	assert.ErrorContains(t, err, "dimension 2 out of range")

	_, err = x.Split(-3, 1)
	assert.ErrorContains(t, err, "out of range")

	_, err = x.Split(0, 0)
	assert.ErrorContains(t, err, "split_size must be positive")

	_, err = x.SplitWithSizes(1, []int{3, 0})
	assert.ErrorContains(t, err, "split_sizes must be positive")
}
