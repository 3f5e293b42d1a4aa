package tensor

import "fmt"

// FromSlice creates a contiguous raw tensor holding a copy of data.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	var dummy T
	dtype := inferDataType(dummy)

	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("from slice: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}

	switch any(dummy).(type) {
	case float32:
		copy(raw.AsFloat32(), any(data).([]float32))
	case float64:
		copy(raw.AsFloat64(), any(data).([]float64))
	case int32:
		copy(raw.AsInt32(), any(data).([]int32))
	case int64:
		copy(raw.AsInt64(), any(data).([]int64))
	case uint8:
		copy(raw.AsUint8(), any(data).([]uint8))
	case bool:
		copy(raw.AsBool(), any(data).([]bool))
	}
	return raw, nil
}

// Scalar creates a 0-dimensional tensor holding a single value.
//
// Example:
//
//	v, err := tensor.Scalar(float32(3.14), tensor.CPU)
func Scalar[T DType](value T, device Device) (*RawTensor, error) {
	return FromSlice([]T{value}, Shape{}, device)
}

// Ones creates a tensor filled with ones of the given runtime dtype.
func Ones(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}

	n := raw.NumElements()
	switch dtype {
	case Float32:
		data := raw.AsFloat32()
		for i := 0; i < n; i++ {
			data[i] = 1
		}
	case Float64:
		data := raw.AsFloat64()
		for i := 0; i < n; i++ {
			data[i] = 1
		}
	case Int32:
		data := raw.AsInt32()
		for i := 0; i < n; i++ {
			data[i] = 1
		}
	case Int64:
		data := raw.AsInt64()
		for i := 0; i < n; i++ {
			data[i] = 1
		}
	case Uint8:
		data := raw.AsUint8()
		for i := 0; i < n; i++ {
			data[i] = 1
		}
	case Bool:
		data := raw.AsBool()
		for i := 0; i < n; i++ {
			data[i] = true
		}
	}
	return raw, nil
}
