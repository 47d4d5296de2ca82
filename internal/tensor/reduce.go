package tensor

import (
	"fmt"
	"math"
	"sort"
)

// Axis reductions. Every *Dim variant accepts a negative axis (normalized
// per NormalizeAxis) and a keepDim flag that keeps the reduced axis with
// size 1 instead of removing it. The axis-less variants reduce the whole
// tensor to a scalar (empty shape).
//
// Accumulation order is defined: elements are combined left to right in
// row-major index order, so results are reproducible bit for bit.
// Reductions are implemented for Float32 and Float64 (Sum also Int32 and
// Int64, matching what integer tensors can express); other dtypes are an
// ErrDTypeMismatch.

// reduceShape is the input shape with the reduced axis removed, or kept
// as size 1 when keepDim is set.
func reduceShape(shape Shape, dim int, keepDim bool) Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

// The kernels rely on canonical strides, so every reduction takes a
// Contiguous handle of its input and releases it before returning.

// forEachLane visits every reduction lane of a contiguous tensor.
// The lane index enumerates the non-reduced coordinates in row-major
// order, so it doubles as the flat output index; base is the input offset
// of the lane's first element and step the distance between consecutive
// lane elements.
func forEachLane(shape Shape, dim int, fn func(lane, base, size, step int)) {
	strides := shape.ComputeStrides()
	dimSize := shape[dim]
	dimStride := strides[dim]

	lanes := 1
	for i, d := range shape {
		if i != dim {
			lanes *= d
		}
	}

	for lane := 0; lane < lanes; lane++ {
		base := 0
		remaining := lane
		for d := len(shape) - 1; d >= 0; d-- {
			if d == dim {
				continue
			}
			coord := remaining % shape[d]
			remaining /= shape[d]
			base += coord * strides[d]
		}
		fn(lane, base, dimSize, dimStride)
	}
}

// newReduceResult allocates the output for a dim reduction.
func newReduceResult(x *RawTensor, dim int, keepDim bool, dtype DataType) (*RawTensor, error) {
	result, err := NewRaw(reduceShape(x.shape, dim, keepDim), dtype, x.device)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Sum computes the total sum of all elements (scalar result).
func Sum(x *RawTensor) (*RawTensor, error) {
	x, err := Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	result, err := NewRaw(Shape{}, x.dtype, x.device)
	if err != nil {
		return nil, err
	}

	switch x.dtype {
	case Float32:
		result.AsFloat32()[0] = sumAll(x.AsFloat32(), x.NumElements())
	case Float64:
		result.AsFloat64()[0] = sumAll(x.AsFloat64(), x.NumElements())
	case Int32:
		result.AsInt32()[0] = sumAll(x.AsInt32(), x.NumElements())
	case Int64:
		result.AsInt64()[0] = sumAll(x.AsInt64(), x.NumElements())
	default:
		return nil, fmt.Errorf("%w: sum of %s", ErrDTypeMismatch, x.dtype)
	}
	return result, nil
}

func sumAll[T signedInt | floatType](data []T, n int) T {
	var sum T
	for i := 0; i < n; i++ {
		sum += data[i]
	}
	return sum
}

// SumDim sums elements along the specified axis.
func SumDim(x *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	norm, err := NormalizeAxis(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("sum: %w", err)
	}
	x, err = Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	result, err := newReduceResult(x, norm, keepDim, x.dtype)
	if err != nil {
		return nil, err
	}

	switch x.dtype {
	case Float32:
		sumLanes(x.AsFloat32(), result.AsFloat32(), x.shape, norm)
	case Float64:
		sumLanes(x.AsFloat64(), result.AsFloat64(), x.shape, norm)
	case Int32:
		sumLanes(x.AsInt32(), result.AsInt32(), x.shape, norm)
	case Int64:
		sumLanes(x.AsInt64(), result.AsInt64(), x.shape, norm)
	default:
		return nil, fmt.Errorf("%w: sum of %s", ErrDTypeMismatch, x.dtype)
	}
	return result, nil
}

func sumLanes[T signedInt | floatType](data, out []T, shape Shape, dim int) {
	forEachLane(shape, dim, func(lane, base, size, step int) {
		var sum T
		for i := 0; i < size; i++ {
			sum += data[base+i*step]
		}
		out[lane] = sum
	})
}

// Mean computes the mean of all elements (scalar result).
func Mean(x *RawTensor) (*RawTensor, error) {
	result, err := Sum(x)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	return divideByCount(result, x.NumElements())
}

// MeanDim computes the mean along the specified axis.
func MeanDim(x *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	norm, err := NormalizeAxis(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	result, err := SumDim(x, norm, keepDim)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	return divideByCount(result, x.shape[norm])
}

func divideByCount(sum *RawTensor, count int) (*RawTensor, error) {
	switch sum.dtype {
	case Float32:
		data := sum.AsFloat32()
		c := float32(count)
		for i := range data {
			data[i] /= c
		}
	case Float64:
		data := sum.AsFloat64()
		c := float64(count)
		for i := range data {
			data[i] /= c
		}
	default:
		return nil, fmt.Errorf("%w: mean of %s", ErrDTypeMismatch, sum.dtype)
	}
	return sum, nil
}

// Max computes the maximum over all elements (scalar result).
// Ties resolve to the first occurrence in row-major order, which only
// matters for the matching backward formula.
func Max(x *RawTensor) (*RawTensor, error) {
	return extremumAll(x, "max", false)
}

// Min computes the minimum over all elements (scalar result).
func Min(x *RawTensor) (*RawTensor, error) {
	return extremumAll(x, "min", true)
}

func extremumAll(x *RawTensor, name string, invert bool) (*RawTensor, error) {
	x, err := Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	result, err := NewRaw(Shape{}, x.dtype, x.device)
	if err != nil {
		return nil, err
	}

	switch x.dtype {
	case Float32:
		result.AsFloat32()[0] = extremum(x.AsFloat32(), x.NumElements(), invert)
	case Float64:
		result.AsFloat64()[0] = extremum(x.AsFloat64(), x.NumElements(), invert)
	default:
		return nil, fmt.Errorf("%w: %s of %s", ErrDTypeMismatch, name, x.dtype)
	}
	return result, nil
}

func extremum[T floatType](data []T, n int, invert bool) T {
	best := data[0]
	for i := 1; i < n; i++ {
		v := data[i]
		if (!invert && v > best) || (invert && v < best) {
			best = v
		}
	}
	return best
}

// MaxDim computes the maximum along the specified axis.
func MaxDim(x *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	return extremumDim(x, dim, keepDim, "max", false)
}

// MinDim computes the minimum along the specified axis.
func MinDim(x *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	return extremumDim(x, dim, keepDim, "min", true)
}

func extremumDim(x *RawTensor, dim int, keepDim bool, name string, invert bool) (*RawTensor, error) {
	norm, err := NormalizeAxis(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	x, err = Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	result, err := newReduceResult(x, norm, keepDim, x.dtype)
	if err != nil {
		return nil, err
	}

	switch x.dtype {
	case Float32:
		extremumLanes(x.AsFloat32(), result.AsFloat32(), x.shape, norm, invert)
	case Float64:
		extremumLanes(x.AsFloat64(), result.AsFloat64(), x.shape, norm, invert)
	default:
		return nil, fmt.Errorf("%w: %s of %s", ErrDTypeMismatch, name, x.dtype)
	}
	return result, nil
}

func extremumLanes[T floatType](data, out []T, shape Shape, dim int, invert bool) {
	forEachLane(shape, dim, func(lane, base, size, step int) {
		best := data[base]
		for i := 1; i < size; i++ {
			v := data[base+i*step]
			if (!invert && v > best) || (invert && v < best) {
				best = v
			}
		}
		out[lane] = best
	})
}

// Variance computes the population variance of all elements with the
// given delta degrees of freedom: Σ(xᵢ−mean)² / (N−ddof).
// ddof >= N makes the divisor non-positive and is ErrDivisionByZero.
func Variance(x *RawTensor, ddof int) (*RawTensor, error) {
	return momentAll(x, ddof, "variance", false)
}

// Std computes the standard deviation of all elements: sqrt(variance).
func Std(x *RawTensor, ddof int) (*RawTensor, error) {
	return momentAll(x, ddof, "std", true)
}

func momentAll(x *RawTensor, ddof int, name string, sqrt bool) (*RawTensor, error) {
	x, err := Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	if x.NumElements()-ddof <= 0 {
		return nil, fmt.Errorf("%w: %s with ddof %d over %d elements",
			ErrDivisionByZero, name, ddof, x.NumElements())
	}
	result, err := NewRaw(Shape{}, x.dtype, x.device)
	if err != nil {
		return nil, err
	}

	switch x.dtype {
	case Float32:
		result.AsFloat32()[0] = moment(x.AsFloat32(), 0, x.NumElements(), 1, ddof, sqrt)
	case Float64:
		result.AsFloat64()[0] = moment(x.AsFloat64(), 0, x.NumElements(), 1, ddof, sqrt)
	default:
		return nil, fmt.Errorf("%w: %s of %s", ErrDTypeMismatch, name, x.dtype)
	}
	return result, nil
}

// VarianceDim computes the variance along the specified axis.
func VarianceDim(x *RawTensor, dim int, ddof int, keepDim bool) (*RawTensor, error) {
	return momentDim(x, dim, ddof, keepDim, "variance", false)
}

// StdDim computes the standard deviation along the specified axis.
func StdDim(x *RawTensor, dim int, ddof int, keepDim bool) (*RawTensor, error) {
	return momentDim(x, dim, ddof, keepDim, "std", true)
}

func momentDim(x *RawTensor, dim, ddof int, keepDim bool, name string, sqrt bool) (*RawTensor, error) {
	norm, err := NormalizeAxis(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if x.shape[norm]-ddof <= 0 {
		return nil, fmt.Errorf("%w: %s with ddof %d over %d elements",
			ErrDivisionByZero, name, ddof, x.shape[norm])
	}
	x, err = Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	result, err := newReduceResult(x, norm, keepDim, x.dtype)
	if err != nil {
		return nil, err
	}

	switch x.dtype {
	case Float32:
		momentLanes(x.AsFloat32(), result.AsFloat32(), x.shape, norm, ddof, sqrt)
	case Float64:
		momentLanes(x.AsFloat64(), result.AsFloat64(), x.shape, norm, ddof, sqrt)
	default:
		return nil, fmt.Errorf("%w: %s of %s", ErrDTypeMismatch, name, x.dtype)
	}
	return result, nil
}

func momentLanes[T floatType](data, out []T, shape Shape, dim, ddof int, sqrt bool) {
	forEachLane(shape, dim, func(lane, base, size, step int) {
		out[lane] = moment(data, base, size, step, ddof, sqrt)
	})
}

// moment computes variance (or std) of one lane in two passes:
// mean first, then the centered sum of squares.
func moment[T floatType](data []T, base, size, step, ddof int, sqrt bool) T {
	var sum T
	for i := 0; i < size; i++ {
		sum += data[base+i*step]
	}
	mean := sum / T(size)

	var sq T
	for i := 0; i < size; i++ {
		d := data[base+i*step] - mean
		sq += d * d
	}
	v := sq / T(size-ddof)
	if sqrt {
		return T(math.Sqrt(float64(v)))
	}
	return v
}

// Median computes the middle order statistic of all elements, averaging
// the two middles when the count is even.
func Median(x *RawTensor) (*RawTensor, error) {
	return orderStatAll(x, "median", medianOfSorted[float64], medianOfSorted[float32])
}

// MedianDim computes the median along the specified axis.
func MedianDim(x *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	return orderStatDim(x, dim, keepDim, "median", medianOfSorted[float64], medianOfSorted[float32])
}

// Percentile computes the p-th percentile of all elements with linear
// interpolation between the order statistics bracketing rank
// p/100·(N−1). p must lie in [0, 100].
func Percentile(x *RawTensor, p float64) (*RawTensor, error) {
	if err := validatePercentile(p); err != nil {
		return nil, err
	}
	return orderStatAll(x, "percentile",
		func(sorted []float64) float64 { return percentileOfSorted(sorted, p) },
		func(sorted []float32) float32 { return percentileOfSorted(sorted, p) })
}

// PercentileDim computes the p-th percentile along the specified axis.
func PercentileDim(x *RawTensor, p float64, dim int, keepDim bool) (*RawTensor, error) {
	if err := validatePercentile(p); err != nil {
		return nil, err
	}
	return orderStatDim(x, dim, keepDim, "percentile",
		func(sorted []float64) float64 { return percentileOfSorted(sorted, p) },
		func(sorted []float32) float32 { return percentileOfSorted(sorted, p) })
}

func validatePercentile(p float64) error {
	if p < 0 || p > 100 || math.IsNaN(p) {
		return fmt.Errorf("%w: percentile %v outside [0, 100]", ErrIndexOutOfRange, p)
	}
	return nil
}

func orderStatAll(x *RawTensor, name string,
	stat64 func([]float64) float64, stat32 func([]float32) float32) (*RawTensor, error) {
	x, err := Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	result, err := NewRaw(Shape{}, x.dtype, x.device)
	if err != nil {
		return nil, err
	}

	switch x.dtype {
	case Float32:
		sorted := append([]float32(nil), x.AsFloat32()[:x.NumElements()]...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		result.AsFloat32()[0] = stat32(sorted)
	case Float64:
		sorted := append([]float64(nil), x.AsFloat64()[:x.NumElements()]...)
		sort.Float64s(sorted)
		result.AsFloat64()[0] = stat64(sorted)
	default:
		return nil, fmt.Errorf("%w: %s of %s", ErrDTypeMismatch, name, x.dtype)
	}
	return result, nil
}

func orderStatDim(x *RawTensor, dim int, keepDim bool, name string,
	stat64 func([]float64) float64, stat32 func([]float32) float32) (*RawTensor, error) {
	norm, err := NormalizeAxis(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	x, err = Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	result, err := newReduceResult(x, norm, keepDim, x.dtype)
	if err != nil {
		return nil, err
	}

	switch x.dtype {
	case Float32:
		orderStatLanes(x.AsFloat32(), result.AsFloat32(), x.shape, norm, stat32)
	case Float64:
		orderStatLanes(x.AsFloat64(), result.AsFloat64(), x.shape, norm, stat64)
	default:
		return nil, fmt.Errorf("%w: %s of %s", ErrDTypeMismatch, name, x.dtype)
	}
	return result, nil
}

func orderStatLanes[T floatType](data, out []T, shape Shape, dim int, stat func([]T) T) {
	scratch := make([]T, shape[dim])
	forEachLane(shape, dim, func(lane, base, size, step int) {
		for i := 0; i < size; i++ {
			scratch[i] = data[base+i*step]
		}
		sort.Slice(scratch, func(i, j int) bool { return scratch[i] < scratch[j] })
		out[lane] = stat(scratch)
	})
}

func medianOfSorted[T floatType](sorted []T) T {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentileOfSorted interpolates linearly between the order statistics
// bracketing rank p/100·(N−1).
func percentileOfSorted[T floatType](sorted []T, p float64) T {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if hi >= n {
		hi = n - 1
	}
	frac := T(rank - float64(lo))
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
