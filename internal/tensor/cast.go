package tensor

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/ember-ml/ember/bfloat16"
)

// Cast converts a tensor to another data type, producing an owned
// contiguous result. Values travel through float64, which holds every
// other supported type exactly except the extreme ends of int64/uint64.
// Numeric to bool is v != 0; bool to numeric is 0 or 1. Casting to the
// current dtype returns a buffer-sharing clone.
func Cast(x *RawTensor, dtype DataType) (*RawTensor, error) {
	if x.dtype == dtype {
		return x.Clone(), nil
	}

	vals, err := toFloat64(x)
	if err != nil {
		return nil, err
	}

	result, err := NewRaw(x.shape, dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("cast: %w", err)
	}

	switch dtype {
	case Int8:
		scatterFloat64(result.AsInt8(), vals, func(v float64) int8 { return int8(v) })
	case Int16:
		scatterFloat64(result.AsInt16(), vals, func(v float64) int16 { return int16(v) })
	case Int32:
		scatterFloat64(result.AsInt32(), vals, func(v float64) int32 { return int32(v) })
	case Int64:
		scatterFloat64(result.AsInt64(), vals, func(v float64) int64 { return int64(v) })
	case Uint8:
		scatterFloat64(result.AsUint8(), vals, func(v float64) uint8 { return uint8(v) })
	case Uint16:
		scatterFloat64(result.AsUint16(), vals, func(v float64) uint16 { return uint16(v) })
	case Uint32:
		scatterFloat64(result.AsUint32(), vals, func(v float64) uint32 { return uint32(v) })
	case Uint64:
		scatterFloat64(result.AsUint64(), vals, func(v float64) uint64 { return uint64(v) })
	case Bool:
		scatterFloat64(result.AsBool(), vals, func(v float64) bool { return v != 0 })
	case Float16:
		scatterFloat64(result.AsFloat16(), vals, func(v float64) float16.Float16 {
			return float16.Fromfloat32(float32(v))
		})
	case BFloat16:
		scatterFloat64(result.AsBFloat16(), vals, bfloat16.FromFloat64)
	case Float32:
		scatterFloat64(result.AsFloat32(), vals, func(v float64) float32 { return float32(v) })
	case Float64:
		scatterFloat64(result.AsFloat64(), vals, func(v float64) float64 { return v })
	default:
		return nil, fmt.Errorf("%w: cast to %s", ErrDTypeMismatch, dtype)
	}

	return result, nil
}

// toFloat64 reads every element of x in row-major order as float64,
// walking the tensor's strides so views convert correctly.
func toFloat64(x *RawTensor) ([]float64, error) {
	vals := make([]float64, x.NumElements())
	switch x.dtype {
	case Int8:
		gatherFloat64(vals, x, func(v int8) float64 { return float64(v) })
	case Int16:
		gatherFloat64(vals, x, func(v int16) float64 { return float64(v) })
	case Int32:
		gatherFloat64(vals, x, func(v int32) float64 { return float64(v) })
	case Int64:
		gatherFloat64(vals, x, func(v int64) float64 { return float64(v) })
	case Uint8:
		gatherFloat64(vals, x, func(v uint8) float64 { return float64(v) })
	case Uint16:
		gatherFloat64(vals, x, func(v uint16) float64 { return float64(v) })
	case Uint32:
		gatherFloat64(vals, x, func(v uint32) float64 { return float64(v) })
	case Uint64:
		gatherFloat64(vals, x, func(v uint64) float64 { return float64(v) })
	case Bool:
		gatherFloat64(vals, x, func(v bool) float64 {
			if v {
				return 1
			}
			return 0
		})
	case Float16:
		gatherFloat64(vals, x, func(v float16.Float16) float64 { return float64(v.Float32()) })
	case BFloat16:
		gatherFloat64(vals, x, func(v bfloat16.BFloat16) float64 { return float64(v.Float32()) })
	case Float32:
		gatherFloat64(vals, x, func(v float32) float64 { return float64(v) })
	case Float64:
		gatherFloat64(vals, x, func(v float64) float64 { return v })
	default:
		return nil, fmt.Errorf("%w: cast from %s", ErrDTypeMismatch, x.dtype)
	}
	return vals, nil
}

func gatherFloat64[T DType](dst []float64, src *RawTensor, conv func(T) float64) {
	data := rawSlice[T](src)
	n := src.NumElements()
	ndim := len(src.shape)
	if ndim == 0 {
		dst[0] = conv(data[0])
		return
	}

	coords := make([]int, ndim)
	flat := 0
	for i := 0; i < n; i++ {
		dst[i] = conv(data[flat])
		for d := ndim - 1; d >= 0; d-- {
			coords[d]++
			flat += src.stride[d]
			if coords[d] < src.shape[d] {
				break
			}
			coords[d] = 0
			flat -= src.shape[d] * src.stride[d]
		}
	}
}

func scatterFloat64[T DType](dst []T, vals []float64, conv func(float64) T) {
	for i, v := range vals {
		dst[i] = conv(v)
	}
}
