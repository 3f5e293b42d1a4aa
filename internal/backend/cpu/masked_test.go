package cpu

import (
	"testing"

	"github.com/born-ml/grad/internal/tensor"
)

func TestCPUBackend_FillWhere(t *testing.T) {
	backend := newTestBackend()

	t.Run("FullMask", func(t *testing.T) {
		x := fromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
		mask := boolMask(t, []bool{true, false, false, true}, tensor.Shape{2, 2})
		value, _ := tensor.Scalar(float32(-1), tensor.CPU)

		backend.FillWhere(x, mask, value)

		expected := []float32{-1, 2, 3, -1}
		if !float32SliceEqual(x.AsFloat32()[:4], expected) {
			t.Errorf("FillWhere failed: got %v, expected %v", x.AsFloat32()[:4], expected)
		}
	})

	t.Run("TrailingMask", func(t *testing.T) {
		// Mask over the last dimension repeats across rows.
		x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		mask := boolMask(t, []bool{false, true, false}, tensor.Shape{3})
		value, _ := tensor.Scalar(float32(9), tensor.CPU)

		backend.FillWhere(x, mask, value)

		expected := []float32{1, 9, 3, 4, 9, 6}
		if !float32SliceEqual(x.AsFloat32()[:6], expected) {
			t.Errorf("FillWhere failed: got %v, expected %v", x.AsFloat32()[:6], expected)
		}
	})

	t.Run("StridedView", func(t *testing.T) {
		base := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		view, err := base.Slice(tensor.Key{tensor.All(), tensor.Span(1, 3)})
		if err != nil {
			t.Fatalf("Slice failed: %v", err)
		}
		mask := boolMask(t, []bool{true, false}, tensor.Shape{2})
		value, _ := tensor.Scalar(float32(0), tensor.CPU)

		backend.FillWhere(view, mask, value)

		expected := []float32{1, 0, 3, 4, 0, 6}
		if !float32SliceEqual(base.AsFloat32()[:6], expected) {
			t.Errorf("FillWhere through view failed: got %v, expected %v", base.AsFloat32()[:6], expected)
		}
	})

	t.Run("NonBoolMaskPanics", func(t *testing.T) {
		x := fromFloat32(t, []float32{1, 2}, tensor.Shape{2})
		badMask := fromFloat32(t, []float32{1, 0}, tensor.Shape{2})
		value, _ := tensor.Scalar(float32(0), tensor.CPU)

		defer func() {
			if r := recover(); r == nil {
				t.Error("FillWhere should panic on a non-bool mask")
			}
		}()
		backend.FillWhere(x, badMask, value)
	})

	t.Run("MaskShapeMismatchPanics", func(t *testing.T) {
		x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		mask := boolMask(t, []bool{true, false}, tensor.Shape{2})
		value, _ := tensor.Scalar(float32(0), tensor.CPU)

		defer func() {
			if r := recover(); r == nil {
				t.Error("FillWhere should panic when the mask does not match trailing dims")
			}
		}()
		backend.FillWhere(x, mask, value)
	})
}

func TestCPUBackend_ZeroWhere(t *testing.T) {
	backend := newTestBackend()

	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	mask := boolMask(t, []bool{true, false, true}, tensor.Shape{3})

	backend.ZeroWhere(x, mask)

	expected := []float32{0, 2, 0, 0, 5, 0}
	if !float32SliceEqual(x.AsFloat32()[:6], expected) {
		t.Errorf("ZeroWhere failed: got %v, expected %v", x.AsFloat32()[:6], expected)
	}
}

func TestCPUBackend_SumWhere(t *testing.T) {
	backend := newTestBackend()

	t.Run("Float32", func(t *testing.T) {
		x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		mask := boolMask(t, []bool{true, false, true}, tensor.Shape{3})

		result := backend.SumWhere(x, mask)

		if len(result.Shape()) != 0 {
			t.Fatalf("shape = %v, expected scalar", result.Shape())
		}
		// 1 + 3 + 4 + 6
		if got := result.AsFloat32()[0]; got != 14 {
			t.Errorf("SumWhere = %f, expected 14", got)
		}
	})

	t.Run("Float64", func(t *testing.T) {
		x := fromFloat64(t, []float64{0.5, 1.5, 2.5, 3.5}, tensor.Shape{4})
		mask := boolMask(t, []bool{false, true, true, false}, tensor.Shape{4})

		result := backend.SumWhere(x, mask)

		if got := result.AsFloat64()[0]; got != 4 {
			t.Errorf("SumWhere = %f, expected 4", got)
		}
	})

	t.Run("NoneSelected", func(t *testing.T) {
		x := fromFloat32(t, []float32{1, 2}, tensor.Shape{2})
		mask := boolMask(t, []bool{false, false}, tensor.Shape{2})

		result := backend.SumWhere(x, mask)

		if got := result.AsFloat32()[0]; got != 0 {
			t.Errorf("SumWhere = %f, expected 0", got)
		}
	})
}
