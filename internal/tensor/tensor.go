package tensor

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/ember-ml/ember/bfloat16"
)

// Tensor is a typed tensor bound to a compute backend.
//
// Type Parameters:
//   - T: element type (must satisfy DType)
//   - B: computation backend (must implement Backend)
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
//	result := t.Add(t)
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps a RawTensor and backend in a typed tensor.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice creates a tensor by copying a Go slice into fresh storage.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, got %d",
			ErrShapeMismatch, shape, shape.NumElements(), len(data))
	}

	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		return nil, err
	}

	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// DType returns the tensor's data type.
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }

// Device returns the tensor's compute device.
func (t *Tensor[T, B]) Device() Device { return t.raw.Device() }

// Rank returns the number of dimensions.
func (t *Tensor[T, B]) Rank() int { return t.raw.Rank() }

// NumElements returns the total number of elements.
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }

// IsView reports whether the tensor aliases another tensor's buffer.
func (t *Tensor[T, B]) IsView() bool { return t.raw.IsView() }

// IsContiguous reports whether the elements are laid out in canonical
// row-major order without gaps.
func (t *Tensor[T, B]) IsContiguous() bool { return t.raw.IsContiguous() }

// Raw returns the underlying RawTensor.
// Used by backend implementations for low-level access.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the computation backend.
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Data returns a typed slice over the tensor's storage (zero-copy).
// For views the slice covers the view's addressable extent in the shared
// buffer, so writes are visible through every alias.
//
// WARNING: modifications to the returned slice modify the tensor.
func (t *Tensor[T, B]) Data() []T {
	var dummy T
	switch any(dummy).(type) {
	case int8:
		return any(t.raw.AsInt8()).([]T)
	case int16:
		return any(t.raw.AsInt16()).([]T)
	case int32:
		return any(t.raw.AsInt32()).([]T)
	case int64:
		return any(t.raw.AsInt64()).([]T)
	case uint8:
		return any(t.raw.AsUint8()).([]T)
	case uint16:
		return any(t.raw.AsUint16()).([]T)
	case uint32:
		return any(t.raw.AsUint32()).([]T)
	case uint64:
		return any(t.raw.AsUint64()).([]T)
	case bool:
		return any(t.raw.AsBool()).([]T)
	case float16.Float16:
		return any(t.raw.AsFloat16()).([]T)
	case bfloat16.BFloat16:
		return any(t.raw.AsBFloat16()).([]T)
	case float32:
		return any(t.raw.AsFloat32()).([]T)
	case float64:
		return any(t.raw.AsFloat64()).([]T)
	default:
		panic("unsupported element type")
	}
}

// Item returns the scalar value of a 0-D tensor.
// Panics if the tensor is not a scalar.
func (t *Tensor[T, B]) Item() T {
	if t.Rank() != 0 {
		panic(fmt.Sprintf("Item() only works for scalar tensors, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At returns the element at the given indices, resolved through the
// tensor's strides so views index correctly.
// Panics if indices are out of bounds.
func (t *Tensor[T, B]) At(indices ...int) T {
	flat, err := t.raw.FlatIndex(indices...)
	if err != nil {
		panic(err)
	}
	return t.Data()[flat]
}

// Set stores value at the given indices. Writing through a view mutates
// the shared buffer.
// Panics if indices are out of bounds.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	flat, err := t.raw.FlatIndex(indices...)
	if err != nil {
		panic(err)
	}
	t.Data()[flat] = value
}

// Clone returns a tensor sharing the same buffer with a bumped reference
// count. Use Contiguous for an independent copy.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return New[T, B](t.raw.Clone(), t.backend)
}

// Release drops this tensor's reference to the shared buffer.
func (t *Tensor[T, B]) Release() {
	t.raw.Release()
}

// String returns a human-readable summary.
func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.raw.DType(), t.raw.Shape(), t.raw.Device())
}

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Div(t.raw, other.raw), t.backend)
}

// Pow performs element-wise exponentiation with broadcasting.
func (t *Tensor[T, B]) Pow(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Pow(t.raw, other.raw), t.backend)
}

// Mod performs element-wise remainder with broadcasting.
func (t *Tensor[T, B]) Mod(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mod(t.raw, other.raw), t.backend)
}

// Reshape returns a view with a new shape. The tensor must be contiguous
// and the element count must match.
func (t *Tensor[T, B]) Reshape(shape Shape) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, shape), t.backend)
}

// Transpose returns a view with permuted axes. With no arguments the axis
// order is reversed.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// Squeeze returns a view with a size-1 axis removed.
func (t *Tensor[T, B]) Squeeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Squeeze(t.raw, dim), t.backend)
}

// Unsqueeze returns a view with a size-1 axis inserted.
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Unsqueeze(t.raw, dim), t.backend)
}

// Slice returns a view over the half-open ranges [starts[i], ends[i]).
func (t *Tensor[T, B]) Slice(starts, ends []int) *Tensor[T, B] {
	return New[T, B](t.backend.Slice(t.raw, starts, ends), t.backend)
}

// Contiguous returns a tensor with canonical row-major layout, copying
// elements only when the receiver is a strided view. The result owns
// its own buffer reference and is released independently.
func (t *Tensor[T, B]) Contiguous() *Tensor[T, B] {
	return New[T, B](t.backend.Contiguous(t.raw), t.backend)
}

// Sum reduces all elements to a scalar.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return New[T, B](t.backend.Sum(t.raw), t.backend)
}

// SumDim sums along an axis.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}

// Mean reduces all elements to their mean.
func (t *Tensor[T, B]) Mean() *Tensor[T, B] {
	return New[T, B](t.backend.Mean(t.raw), t.backend)
}

// MeanDim computes the mean along an axis.
func (t *Tensor[T, B]) MeanDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MeanDim(t.raw, dim, keepDim), t.backend)
}

// Max reduces all elements to their maximum.
func (t *Tensor[T, B]) Max() *Tensor[T, B] {
	return New[T, B](t.backend.Max(t.raw), t.backend)
}

// MaxDim computes the maximum along an axis.
func (t *Tensor[T, B]) MaxDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MaxDim(t.raw, dim, keepDim), t.backend)
}

// Min reduces all elements to their minimum.
func (t *Tensor[T, B]) Min() *Tensor[T, B] {
	return New[T, B](t.backend.Min(t.raw), t.backend)
}

// MinDim computes the minimum along an axis.
func (t *Tensor[T, B]) MinDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MinDim(t.raw, dim, keepDim), t.backend)
}

// Variance computes the variance of all elements with the given delta
// degrees of freedom.
func (t *Tensor[T, B]) Variance(ddof int) *Tensor[T, B] {
	return New[T, B](t.backend.Variance(t.raw, ddof), t.backend)
}

// VarianceDim computes the variance along an axis.
func (t *Tensor[T, B]) VarianceDim(dim, ddof int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.VarianceDim(t.raw, dim, ddof, keepDim), t.backend)
}

// Std computes the standard deviation of all elements.
func (t *Tensor[T, B]) Std(ddof int) *Tensor[T, B] {
	return New[T, B](t.backend.Std(t.raw, ddof), t.backend)
}

// StdDim computes the standard deviation along an axis.
func (t *Tensor[T, B]) StdDim(dim, ddof int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.StdDim(t.raw, dim, ddof, keepDim), t.backend)
}

// Median computes the median of all elements.
func (t *Tensor[T, B]) Median() *Tensor[T, B] {
	return New[T, B](t.backend.Median(t.raw), t.backend)
}

// MedianDim computes the median along an axis.
func (t *Tensor[T, B]) MedianDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MedianDim(t.raw, dim, keepDim), t.backend)
}

// Percentile computes the p-th percentile of all elements.
func (t *Tensor[T, B]) Percentile(p float64) *Tensor[T, B] {
	return New[T, B](t.backend.Percentile(t.raw, p), t.backend)
}

// PercentileDim computes the p-th percentile along an axis.
func (t *Tensor[T, B]) PercentileDim(p float64, dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.PercentileDim(t.raw, p, dim, keepDim), t.backend)
}

// CastTo converts a tensor to the element type U. Values travel through
// float64; numeric to bool is v != 0, bool to numeric is 0 or 1.
func CastTo[U DType, T DType, B Backend](t *Tensor[T, B]) *Tensor[U, B] {
	var dummy U
	return New[U, B](t.Backend().Cast(t.Raw(), inferDataType(dummy)), t.Backend())
}
