//go:build windows

package webgpu

import (
	"testing"

	"github.com/born-ml/grad/internal/tensor"
)

// newTestBackend creates a backend or skips the test when no GPU is present.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New()
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	t.Cleanup(backend.Release)
	return backend
}

func fromFloat32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, shape, tensor.WebGPU)
	if err != nil {
		t.Fatalf("Failed to create tensor: %v", err)
	}
	return raw
}

func boolMask(t *testing.T, data []bool, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, shape, tensor.WebGPU)
	if err != nil {
		t.Fatalf("Failed to create mask: %v", err)
	}
	return raw
}

func float32SliceEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1e-6 {
			return false
		}
	}
	return true
}

func TestIsAvailable(t *testing.T) {
	available := IsAvailable()
	t.Logf("WebGPU available: %v", available)
}

func TestNew(t *testing.T) {
	backend := newTestBackend(t)

	if backend.Name() == "" {
		t.Error("Backend name should not be empty")
	}
	t.Logf("Backend name: %s", backend.Name())

	if backend.Device() != tensor.WebGPU {
		t.Errorf("Expected device WebGPU, got %v", backend.Device())
	}

	if info := backend.AdapterInfo(); info != nil {
		t.Logf("Using GPU: %s %s", info.Name, info.VendorName)
	}
}

func TestBackendInterface(t *testing.T) {
	backend := newTestBackend(t)

	var _ tensor.Backend = backend
}

func TestAdd(t *testing.T) {
	backend := newTestBackend(t)

	a := fromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	b := fromFloat32(t, []float32{5, 6, 7, 8}, tensor.Shape{4})

	result := backend.Add(a, b)

	want := []float32{6, 8, 10, 12}
	if got := result.AsFloat32()[:4]; !float32SliceEqual(got, want) {
		t.Errorf("Add = %v, want %v", got, want)
	}
	if result.Device() != tensor.WebGPU {
		t.Errorf("result device = %v, want WebGPU", result.Device())
	}
}

func TestAddLargeInput(t *testing.T) {
	backend := newTestBackend(t)

	// Spans multiple workgroups.
	n := 1000
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i)
	}
	a := fromFloat32(t, data, tensor.Shape{n})
	b := fromFloat32(t, data, tensor.Shape{n})

	result := backend.Add(a, b)

	got := result.AsFloat32()[:n]
	for i := range got {
		if got[i] != 2*float32(i) {
			t.Fatalf("result[%d] = %v, want %v", i, got[i], 2*float32(i))
		}
	}
}

func TestAddInt32RunsOnHost(t *testing.T) {
	backend := newTestBackend(t)

	a, err := tensor.FromSlice([]int32{1, 2, 3}, tensor.Shape{3}, tensor.WebGPU)
	if err != nil {
		t.Fatalf("Failed to create tensor: %v", err)
	}
	b, err := tensor.FromSlice([]int32{10, 20, 30}, tensor.Shape{3}, tensor.WebGPU)
	if err != nil {
		t.Fatalf("Failed to create tensor: %v", err)
	}

	result := backend.Add(a, b)

	got := result.AsInt32()[:3]
	want := []int32{11, 22, 33}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if result.Device() != tensor.WebGPU {
		t.Errorf("result device = %v, want WebGPU", result.Device())
	}
}

func TestFillWhere(t *testing.T) {
	backend := newTestBackend(t)

	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	mask := boolMask(t, []bool{false, true, false}, tensor.Shape{3})
	value := fromFloat32(t, []float32{9}, tensor.Shape{1})

	clone := x.Clone()
	backend.FillWhere(x, mask, value)

	want := []float32{1, 9, 3, 4, 9, 6}
	if got := x.AsFloat32()[:6]; !float32SliceEqual(got, want) {
		t.Errorf("FillWhere = %v, want %v", got, want)
	}
	// In-place: the mutation must be visible through clones of the buffer.
	if got := clone.AsFloat32()[:6]; !float32SliceEqual(got, want) {
		t.Errorf("clone after FillWhere = %v, want %v", got, want)
	}
}

func TestZeroWhere(t *testing.T) {
	backend := newTestBackend(t)

	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6})
	mask := boolMask(t, []bool{true, false, true, true, false, true}, tensor.Shape{6})

	backend.ZeroWhere(x, mask)

	want := []float32{0, 2, 0, 0, 5, 0}
	if got := x.AsFloat32()[:6]; !float32SliceEqual(got, want) {
		t.Errorf("ZeroWhere = %v, want %v", got, want)
	}
}

func TestSumWhere(t *testing.T) {
	backend := newTestBackend(t)

	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	mask := boolMask(t, []bool{true, false, true}, tensor.Shape{3})

	result := backend.SumWhere(x, mask)

	if len(result.Shape()) != 0 {
		t.Errorf("result shape = %v, want scalar", result.Shape())
	}
	// 1 + 3 + 4 + 6
	if got := result.AsFloat32()[0]; got != 14 {
		t.Errorf("SumWhere = %v, want 14", got)
	}
}

func TestSumWhereLargeInput(t *testing.T) {
	backend := newTestBackend(t)

	// Spans multiple workgroups; every other element selected.
	n := 600
	data := make([]float32, n)
	maskData := make([]bool, n)
	var want float32
	for i := range data {
		data[i] = float32(i)
		maskData[i] = i%2 == 0
		if maskData[i] {
			want += data[i]
		}
	}
	x := fromFloat32(t, data, tensor.Shape{n})
	mask := boolMask(t, maskData, tensor.Shape{n})

	result := backend.SumWhere(x, mask)

	if got := result.AsFloat32()[0]; got != want {
		t.Errorf("SumWhere = %v, want %v", got, want)
	}
}

func TestSumDims(t *testing.T) {
	backend := newTestBackend(t)

	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	t.Run("KeepDims", func(t *testing.T) {
		result := backend.SumDims(x, []int{0}, true)

		if !result.Shape().Equal(tensor.Shape{1, 3}) {
			t.Errorf("shape = %v, want [1 3]", result.Shape())
		}
		want := []float32{5, 7, 9}
		if got := result.AsFloat32()[:3]; !float32SliceEqual(got, want) {
			t.Errorf("SumDims = %v, want %v", got, want)
		}
	})

	t.Run("DropDims", func(t *testing.T) {
		result := backend.SumDims(x, []int{1}, false)

		if !result.Shape().Equal(tensor.Shape{2}) {
			t.Errorf("shape = %v, want [2]", result.Shape())
		}
		want := []float32{6, 15}
		if got := result.AsFloat32()[:2]; !float32SliceEqual(got, want) {
			t.Errorf("SumDims = %v, want %v", got, want)
		}
	})

	t.Run("MultipleDims", func(t *testing.T) {
		data := make([]float32, 24)
		for i := range data {
			data[i] = float32(i + 1)
		}
		y := fromFloat32(t, data, tensor.Shape{2, 3, 4})

		result := backend.SumDims(y, []int{0, 2}, true)

		if !result.Shape().Equal(tensor.Shape{1, 3, 1}) {
			t.Errorf("shape = %v, want [1 3 1]", result.Shape())
		}
		want := []float32{60, 92, 124}
		if got := result.AsFloat32()[:3]; !float32SliceEqual(got, want) {
			t.Errorf("SumDims = %v, want %v", got, want)
		}
	})
}

func TestCatRunsOnHost(t *testing.T) {
	backend := newTestBackend(t)

	a := fromFloat32(t, []float32{1, 2}, tensor.Shape{2})
	b := fromFloat32(t, []float32{3, 4, 5}, tensor.Shape{3})

	result := backend.Cat([]*tensor.RawTensor{a, b}, 0)

	want := []float32{1, 2, 3, 4, 5}
	if got := result.AsFloat32()[:5]; !float32SliceEqual(got, want) {
		t.Errorf("Cat = %v, want %v", got, want)
	}
	if result.Device() != tensor.WebGPU {
		t.Errorf("result device = %v, want WebGPU", result.Device())
	}
}
