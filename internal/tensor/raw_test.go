package tensor

import (
	"testing"
)

// RawTensor Tests

func TestNewRawIsZeroFilled(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	for i, v := range raw.AsFloat32() {
		if v != 0 {
			t.Errorf("element %d = %f, want 0", i, v)
		}
	}
}

func TestNewRawRejectsInvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, 0}, Float32, CPU); err == nil {
		t.Error("NewRaw should reject a shape with a zero dimension")
	}
	if _, err := NewRaw(Shape{-1, 3}, Float32, CPU); err == nil {
		t.Error("NewRaw should reject a shape with a negative dimension")
	}
}

func TestRawTensorScalarShape(t *testing.T) {
	raw, err := Scalar(float32(2.5), CPU)
	if err != nil {
		t.Fatalf("Scalar failed: %v", err)
	}

	if len(raw.Shape()) != 0 {
		t.Errorf("scalar shape = %v, want []", raw.Shape())
	}
	if raw.NumElements() != 1 {
		t.Errorf("scalar NumElements = %d, want 1", raw.NumElements())
	}
	if raw.AsFloat32()[0] != 2.5 {
		t.Errorf("scalar value = %f, want 2.5", raw.AsFloat32()[0])
	}
}

func TestRawTensorAsFloat32ZeroCopy(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 3}, Float32, CPU)
	data := raw.AsFloat32()

	if len(data) != 6 {
		t.Errorf("AsFloat32 length = %d, want 6", len(data))
	}

	data[0] = 42
	if raw.AsFloat32()[0] != 42 {
		t.Error("AsFloat32 should return zero-copy slice")
	}
}

func TestRawTensorAsBool(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Bool, CPU)
	data := raw.AsBool()

	if len(data) != 4 {
		t.Errorf("AsBool length = %d, want 4", len(data))
	}

	data[0] = true
	if raw.AsBool()[0] != true {
		t.Error("AsBool should return zero-copy slice")
	}
}

func TestRawTensorAsFloat32WrongDTypePanics(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float64, CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("AsFloat32 on a float64 tensor should panic")
		}
	}()
	raw.AsFloat32()
}

func TestFromSlice(t *testing.T) {
	raw, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	data := raw.AsFloat32()
	for i := 0; i < 6; i++ {
		if data[i] != float32(i+1) {
			t.Errorf("element %d = %f, want %d", i, data[i], i+1)
		}
	}
}

func TestFromSliceLengthMismatch(t *testing.T) {
	if _, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2}, CPU); err == nil {
		t.Error("FromSlice should reject data that does not fill the shape")
	}
}

func TestOnes(t *testing.T) {
	raw, err := Ones(Shape{2, 2}, Float64, CPU)
	if err != nil {
		t.Fatalf("Ones failed: %v", err)
	}

	for i, v := range raw.AsFloat64() {
		if v != 1 {
			t.Errorf("element %d = %f, want 1", i, v)
		}
	}
}

// Buffer sharing and version counter tests

func TestRawTensorCloneIsShared(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)
	raw.AsFloat32()[0] = 1.0

	clone := raw.Clone()

	if clone.AsFloat32()[0] != 1.0 {
		t.Error("Clone should share data initially")
	}
	if !raw.SharesBufferWith(clone) {
		t.Error("Clone should share the buffer")
	}
	if raw.IsUnique() || clone.IsUnique() {
		t.Error("After Clone(), neither tensor should be unique")
	}
}

func TestVersionStartsAtZero(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)

	if v := raw.Version(); v != 0 {
		t.Errorf("fresh tensor version = %d, want 0", v)
	}
}

func TestBumpVersionVisibleThroughClone(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)
	clone := raw.Clone()

	raw.BumpVersion()

	if v := clone.Version(); v != 1 {
		t.Errorf("clone version after bump = %d, want 1", v)
	}
}

func TestBumpVersionVisibleThroughView(t *testing.T) {
	raw, _ := NewRaw(Shape{4, 3}, Float32, CPU)
	view, err := raw.Narrow(0, 1, 2)
	if err != nil {
		t.Fatalf("Narrow failed: %v", err)
	}

	view.BumpVersion()
	if v := raw.Version(); v != 1 {
		t.Errorf("base version after view bump = %d, want 1", v)
	}

	raw.BumpVersion()
	if v := view.Version(); v != 2 {
		t.Errorf("view version after base bump = %d, want 2", v)
	}
}

func TestCopyDoesNotShareVersion(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)
	raw.BumpVersion()

	cp := raw.Copy()
	if cp.Version() != 0 {
		t.Errorf("copy version = %d, want 0", cp.Version())
	}

	raw.BumpVersion()
	if cp.Version() != 0 {
		t.Error("copy should not observe version bumps of the source")
	}
}

func TestRawTensorRelease(_ *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)

	// Should not panic
	raw.Release()
}
