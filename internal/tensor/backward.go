package tensor

import (
	"fmt"
	"math"
	"sort"
)

// Backward formulas for the axis reductions. Each takes the upstream
// gradient (shaped like the matching forward output) and produces the
// gradient with respect to the input, shaped exactly like the input.
//
// The *Dim variants pair with the *Dim forwards; the axis-less variants
// pair with the scalar forwards and expect a scalar gradOutput. Only
// Float32 and Float64 participate, as in the forwards.

// validateBackward normalizes the axis and checks gradOutput against the
// forward output shape before anything is allocated.
func validateBackward(name string, input, gradOutput *RawTensor, dim int, keepDim bool) (int, error) {
	norm, err := NormalizeAxis(dim, input.Rank())
	if err != nil {
		return 0, fmt.Errorf("%s backward: %w", name, err)
	}
	if input.dtype != gradOutput.dtype {
		return 0, fmt.Errorf("%w: %s backward with input %s and grad %s",
			ErrDTypeMismatch, name, input.dtype, gradOutput.dtype)
	}
	expected := reduceShape(input.shape, norm, keepDim)
	if !gradOutput.shape.Equal(expected) {
		return 0, fmt.Errorf("%w: %s backward grad shape %v, expected %v",
			ErrShapeMismatch, name, gradOutput.shape, expected)
	}
	return norm, nil
}

func validateBackwardAll(name string, input, gradOutput *RawTensor) error {
	if input.dtype != gradOutput.dtype {
		return fmt.Errorf("%w: %s backward with input %s and grad %s",
			ErrDTypeMismatch, name, input.dtype, gradOutput.dtype)
	}
	if len(gradOutput.shape) != 0 {
		return fmt.Errorf("%w: %s backward grad shape %v, expected scalar",
			ErrShapeMismatch, name, gradOutput.shape)
	}
	return nil
}

// laneBackward runs a per-lane backward kernel over a contiguous copy of
// the input, producing an owned gradient tensor of the input's shape.
// The kernel sees the flattened shape [N] with dim 0 for the axis-less
// reductions, which makes one code path serve both forms.
func laneBackward(name string, input, gradOutput *RawTensor, dim int, full bool,
	kern32 func(in, grad, out []float32, shape Shape, dim int),
	kern64 func(in, grad, out []float64, shape Shape, dim int)) (*RawTensor, error) {
	input, err := Contiguous(input)
	if err != nil {
		return nil, err
	}
	defer input.Release()
	gradOutput, err = Contiguous(gradOutput)
	if err != nil {
		return nil, err
	}
	defer gradOutput.Release()

	result, err := NewRaw(input.shape, input.dtype, input.device)
	if err != nil {
		return nil, err
	}

	laneShape := input.shape
	if full {
		laneShape = Shape{input.NumElements()}
		dim = 0
	}

	switch input.dtype {
	case Float32:
		kern32(input.AsFloat32(), gradOutput.AsFloat32(), result.AsFloat32(), laneShape, dim)
	case Float64:
		kern64(input.AsFloat64(), gradOutput.AsFloat64(), result.AsFloat64(), laneShape, dim)
	default:
		return nil, fmt.Errorf("%w: %s backward of %s", ErrDTypeMismatch, name, input.dtype)
	}
	return result, nil
}

// SumBackward broadcasts the scalar upstream gradient to the input shape
// unchanged: every element contributed with weight 1.
func SumBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	if err := validateBackwardAll("sum", input, gradOutput); err != nil {
		return nil, err
	}
	return laneBackward("sum", input, gradOutput, 0, true, spreadLanes[float32](1), spreadLanes[float64](1))
}

// SumDimBackward broadcasts the upstream gradient back along the reduced
// axis unchanged.
func SumDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	norm, err := validateBackward("sum", input, gradOutput, dim, keepDim)
	if err != nil {
		return nil, err
	}
	return laneBackward("sum", input, gradOutput, norm, false, spreadLanes[float32](1), spreadLanes[float64](1))
}

// MeanBackward broadcasts the scalar upstream gradient divided by the
// element count.
func MeanBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	if err := validateBackwardAll("mean", input, gradOutput); err != nil {
		return nil, err
	}
	return laneBackward("mean", input, gradOutput, 0, true, spreadLanesMean[float32], spreadLanesMean[float64])
}

// MeanDimBackward broadcasts the upstream gradient divided by the size of
// the reduced axis.
func MeanDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	norm, err := validateBackward("mean", input, gradOutput, dim, keepDim)
	if err != nil {
		return nil, err
	}
	return laneBackward("mean", input, gradOutput, norm, false, spreadLanesMean[float32], spreadLanesMean[float64])
}

// spreadLanes writes grad[lane] * scale to every element of each lane.
func spreadLanes[T floatType](scale T) func(in, grad, out []T, shape Shape, dim int) {
	return func(_, grad, out []T, shape Shape, dim int) {
		forEachLane(shape, dim, func(lane, base, size, step int) {
			g := grad[lane] * scale
			for i := 0; i < size; i++ {
				out[base+i*step] = g
			}
		})
	}
}

func spreadLanesMean[T floatType](_, grad, out []T, shape Shape, dim int) {
	forEachLane(shape, dim, func(lane, base, size, step int) {
		g := grad[lane] / T(size)
		for i := 0; i < size; i++ {
			out[base+i*step] = g
		}
	})
}

// MaxBackward routes the scalar upstream gradient to the first element
// that achieved the maximum; later ties receive zero.
//
// Tie-breaking by first occurrence matches the forward's iteration order.
// Splitting the gradient across all ties is a defensible alternative; if
// parity with a framework that does so is ever needed, this is the single
// place to change.
func MaxBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	if err := validateBackwardAll("max", input, gradOutput); err != nil {
		return nil, err
	}
	return laneBackward("max", input, gradOutput, 0, true,
		extremumBackwardLanes[float32](false), extremumBackwardLanes[float64](false))
}

// MinBackward routes the scalar upstream gradient to the first element
// that achieved the minimum.
func MinBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	if err := validateBackwardAll("min", input, gradOutput); err != nil {
		return nil, err
	}
	return laneBackward("min", input, gradOutput, 0, true,
		extremumBackwardLanes[float32](true), extremumBackwardLanes[float64](true))
}

// MaxDimBackward routes each lane's upstream gradient to the lane's first
// maximum.
func MaxDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	norm, err := validateBackward("max", input, gradOutput, dim, keepDim)
	if err != nil {
		return nil, err
	}
	return laneBackward("max", input, gradOutput, norm, false,
		extremumBackwardLanes[float32](false), extremumBackwardLanes[float64](false))
}

// MinDimBackward routes each lane's upstream gradient to the lane's first
// minimum.
func MinDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	norm, err := validateBackward("min", input, gradOutput, dim, keepDim)
	if err != nil {
		return nil, err
	}
	return laneBackward("min", input, gradOutput, norm, false,
		extremumBackwardLanes[float32](true), extremumBackwardLanes[float64](true))
}

func extremumBackwardLanes[T floatType](invert bool) func(in, grad, out []T, shape Shape, dim int) {
	return func(in, grad, out []T, shape Shape, dim int) {
		forEachLane(shape, dim, func(lane, base, size, step int) {
			bestIdx := 0
			best := in[base]
			for i := 1; i < size; i++ {
				v := in[base+i*step]
				if (!invert && v > best) || (invert && v < best) {
					best = v
					bestIdx = i
				}
			}
			for i := 0; i < size; i++ {
				if i == bestIdx {
					out[base+i*step] = grad[lane]
				} else {
					out[base+i*step] = 0
				}
			}
		})
	}
}

// VarianceBackward: grad_i = gradOutput · 2·(xᵢ−mean) / (N−ddof).
func VarianceBackward(input, gradOutput *RawTensor, ddof int) (*RawTensor, error) {
	if err := validateBackwardAll("variance", input, gradOutput); err != nil {
		return nil, err
	}
	if input.NumElements()-ddof <= 0 {
		return nil, fmt.Errorf("%w: variance backward with ddof %d over %d elements",
			ErrDivisionByZero, ddof, input.NumElements())
	}
	return laneBackward("variance", input, gradOutput, 0, true,
		varianceBackwardLanes[float32](ddof), varianceBackwardLanes[float64](ddof))
}

// VarianceDimBackward applies the variance gradient lane by lane.
func VarianceDimBackward(input, gradOutput *RawTensor, dim, ddof int, keepDim bool) (*RawTensor, error) {
	norm, err := validateBackward("variance", input, gradOutput, dim, keepDim)
	if err != nil {
		return nil, err
	}
	if input.shape[norm]-ddof <= 0 {
		return nil, fmt.Errorf("%w: variance backward with ddof %d over %d elements",
			ErrDivisionByZero, ddof, input.shape[norm])
	}
	return laneBackward("variance", input, gradOutput, norm, false,
		varianceBackwardLanes[float32](ddof), varianceBackwardLanes[float64](ddof))
}

func varianceBackwardLanes[T floatType](ddof int) func(in, grad, out []T, shape Shape, dim int) {
	return func(in, grad, out []T, shape Shape, dim int) {
		forEachLane(shape, dim, func(lane, base, size, step int) {
			var sum T
			for i := 0; i < size; i++ {
				sum += in[base+i*step]
			}
			mean := sum / T(size)
			scale := grad[lane] * 2 / T(size-ddof)
			for i := 0; i < size; i++ {
				out[base+i*step] = scale * (in[base+i*step] - mean)
			}
		})
	}
}

// StdBackward: grad_i = gradOutput · (xᵢ−mean) / ((N−ddof)·std).
// A zero std produces ±Inf/NaN per IEEE-754, mirroring the forward's
// non-differentiable point.
func StdBackward(input, gradOutput *RawTensor, ddof int) (*RawTensor, error) {
	if err := validateBackwardAll("std", input, gradOutput); err != nil {
		return nil, err
	}
	if input.NumElements()-ddof <= 0 {
		return nil, fmt.Errorf("%w: std backward with ddof %d over %d elements",
			ErrDivisionByZero, ddof, input.NumElements())
	}
	return laneBackward("std", input, gradOutput, 0, true,
		stdBackwardLanes[float32](ddof), stdBackwardLanes[float64](ddof))
}

// StdDimBackward applies the std gradient lane by lane.
func StdDimBackward(input, gradOutput *RawTensor, dim, ddof int, keepDim bool) (*RawTensor, error) {
	norm, err := validateBackward("std", input, gradOutput, dim, keepDim)
	if err != nil {
		return nil, err
	}
	if input.shape[norm]-ddof <= 0 {
		return nil, fmt.Errorf("%w: std backward with ddof %d over %d elements",
			ErrDivisionByZero, ddof, input.shape[norm])
	}
	return laneBackward("std", input, gradOutput, norm, false,
		stdBackwardLanes[float32](ddof), stdBackwardLanes[float64](ddof))
}

func stdBackwardLanes[T floatType](ddof int) func(in, grad, out []T, shape Shape, dim int) {
	return func(in, grad, out []T, shape Shape, dim int) {
		forEachLane(shape, dim, func(lane, base, size, step int) {
			std := moment(in, base, size, step, ddof, true)
			scale := grad[lane] / (T(size-ddof) * std)
			var sum T
			for i := 0; i < size; i++ {
				sum += in[base+i*step]
			}
			mean := sum / T(size)
			for i := 0; i < size; i++ {
				out[base+i*step] = scale * (in[base+i*step] - mean)
			}
		})
	}
}

// MedianBackward routes the scalar upstream gradient to the element(s)
// forming the median: the single middle order statistic for odd counts,
// half each to the two middles for even counts.
func MedianBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	if err := validateBackwardAll("median", input, gradOutput); err != nil {
		return nil, err
	}
	return laneBackward("median", input, gradOutput, 0, true,
		medianBackwardLanes[float32], medianBackwardLanes[float64])
}

// MedianDimBackward applies the median gradient lane by lane.
func MedianDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	norm, err := validateBackward("median", input, gradOutput, dim, keepDim)
	if err != nil {
		return nil, err
	}
	return laneBackward("median", input, gradOutput, norm, false,
		medianBackwardLanes[float32], medianBackwardLanes[float64])
}

func medianBackwardLanes[T floatType](in, grad, out []T, shape Shape, dim int) {
	order := make([]int, shape[dim])
	forEachLane(shape, dim, func(lane, base, size, step int) {
		argsortLane(in, order, base, size, step)
		for i := 0; i < size; i++ {
			out[base+i*step] = 0
		}
		if size%2 == 1 {
			out[base+order[size/2]*step] = grad[lane]
		} else {
			half := grad[lane] / 2
			out[base+order[size/2-1]*step] += half
			out[base+order[size/2]*step] += half
		}
	})
}

// PercentileBackward splits the scalar upstream gradient between the two
// order statistics bracketing rank p/100·(N−1), weighted by the
// interpolation fraction.
func PercentileBackward(input, gradOutput *RawTensor, p float64) (*RawTensor, error) {
	if err := validateBackwardAll("percentile", input, gradOutput); err != nil {
		return nil, err
	}
	if err := validatePercentile(p); err != nil {
		return nil, err
	}
	return laneBackward("percentile", input, gradOutput, 0, true,
		percentileBackwardLanes[float32](p), percentileBackwardLanes[float64](p))
}

// PercentileDimBackward applies the percentile gradient lane by lane.
func PercentileDimBackward(input, gradOutput *RawTensor, p float64, dim int, keepDim bool) (*RawTensor, error) {
	norm, err := validateBackward("percentile", input, gradOutput, dim, keepDim)
	if err != nil {
		return nil, err
	}
	if err := validatePercentile(p); err != nil {
		return nil, err
	}
	return laneBackward("percentile", input, gradOutput, norm, false,
		percentileBackwardLanes[float32](p), percentileBackwardLanes[float64](p))
}

func percentileBackwardLanes[T floatType](p float64) func(in, grad, out []T, shape Shape, dim int) {
	return func(in, grad, out []T, shape Shape, dim int) {
		order := make([]int, shape[dim])
		forEachLane(shape, dim, func(lane, base, size, step int) {
			argsortLane(in, order, base, size, step)
			for i := 0; i < size; i++ {
				out[base+i*step] = 0
			}

			rank := p / 100 * float64(size-1)
			lo := int(math.Floor(rank))
			hi := int(math.Ceil(rank))
			if hi >= size {
				hi = size - 1
			}
			if lo == hi {
				out[base+order[lo]*step] = grad[lane]
				return
			}
			frac := T(rank - float64(lo))
			out[base+order[lo]*step] += grad[lane] * (1 - frac)
			out[base+order[hi]*step] += grad[lane] * frac
		})
	}
}

// argsortLane fills order with the lane's element indices sorted by
// value. The sort is stable so equal values keep their iteration order,
// making tie handling deterministic.
func argsortLane[T floatType](in []T, order []int, base, size, step int) {
	for i := 0; i < size; i++ {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return in[base+order[a]*step] < in[base+order[b]*step]
	})
}
