package tensor

import (
	"fmt"
	"math"
)

// Default central-difference steps. Float32 needs a much larger step:
// with eps near 1e-5 the difference quotient drowns in rounding error,
// so the step is chosen where truncation and rounding error balance.
const (
	defaultEps64 = 1e-5
	defaultEps32 = 1e-2
)

// CheckGradient verifies an analytic backward against central finite
// differences. forward maps the input tensor to an output of gradOutput's
// shape; backward maps (input, gradOutput) to the input-shaped gradient.
//
// For every input element i the numeric gradient is
//
//	(f(x + eps·eᵢ)·g − f(x − eps·eᵢ)·g) / (2·eps)
//
// where · is the flat dot product with gradOutput. The check passes when
// every pair satisfies |analytic − numeric| <= atol + rtol·max(|analytic|,
// |numeric|). eps <= 0 selects a per-dtype default. The first failing
// element is reported with its flat index and both values.
func CheckGradient(
	forward func(*RawTensor) (*RawTensor, error),
	backward func(input, gradOutput *RawTensor) (*RawTensor, error),
	input, gradOutput *RawTensor,
	eps, rtol, atol float64,
) error {
	switch input.dtype {
	case Float32, Float64:
	default:
		return fmt.Errorf("%w: gradient check over %s", ErrDTypeMismatch, input.dtype)
	}
	if eps <= 0 {
		if input.dtype == Float32 {
			eps = defaultEps32
		} else {
			eps = defaultEps64
		}
	}

	analytic, err := backward(input, gradOutput)
	if err != nil {
		return fmt.Errorf("gradient check: backward: %w", err)
	}
	defer analytic.Release()
	if !analytic.shape.Equal(input.shape) {
		return fmt.Errorf("%w: backward produced shape %v for input %v",
			ErrShapeMismatch, analytic.shape, input.shape)
	}
	analyticVals, err := toFloat64(analytic)
	if err != nil {
		return err
	}

	gradVals, err := toFloat64(gradOutput)
	if err != nil {
		return err
	}

	// Perturb a private copy so the caller's tensor and any aliasing
	// views stay untouched. Contiguous is not a copy for canonical
	// layouts (it shares the buffer), so the probe gets its own storage.
	src, err := Contiguous(input)
	if err != nil {
		return err
	}
	defer src.Release()
	probe, err := NewRaw(input.Shape(), input.DType(), input.Device())
	if err != nil {
		return err
	}
	defer probe.Release()
	copy(probe.Data(), src.Data()[:probe.ByteSize()])

	n := input.NumElements()
	for i := 0; i < n; i++ {
		orig := probeRead(probe, i)

		probeWrite(probe, i, orig+eps)
		plus, err := evalDot(forward, probe, gradVals)
		if err != nil {
			return fmt.Errorf("gradient check: forward at +eps: %w", err)
		}

		probeWrite(probe, i, orig-eps)
		minus, err := evalDot(forward, probe, gradVals)
		if err != nil {
			return fmt.Errorf("gradient check: forward at -eps: %w", err)
		}

		probeWrite(probe, i, orig)

		numeric := (plus - minus) / (2 * eps)
		a := analyticVals[i]
		if diff := math.Abs(a - numeric); diff > atol+rtol*math.Max(math.Abs(a), math.Abs(numeric)) {
			return fmt.Errorf("gradient check failed at flat index %d: analytic %v, numeric %v (diff %v, eps %v)",
				i, a, numeric, diff, eps)
		}
	}
	return nil
}

func probeRead(x *RawTensor, i int) float64 {
	if x.dtype == Float32 {
		return float64(x.AsFloat32()[i])
	}
	return x.AsFloat64()[i]
}

func probeWrite(x *RawTensor, i int, v float64) {
	if x.dtype == Float32 {
		x.AsFloat32()[i] = float32(v)
		return
	}
	x.AsFloat64()[i] = v
}

// evalDot runs forward and reduces its output against the upstream
// gradient with a flat dot product in float64.
func evalDot(forward func(*RawTensor) (*RawTensor, error), x *RawTensor, gradVals []float64) (float64, error) {
	out, err := forward(x)
	if err != nil {
		return 0, err
	}
	defer out.Release()

	outVals, err := toFloat64(out)
	if err != nil {
		return 0, err
	}
	if len(outVals) != len(gradVals) {
		return 0, fmt.Errorf("%w: forward produced %d elements, gradient has %d",
			ErrShapeMismatch, len(outVals), len(gradVals))
	}

	var dot float64
	for i, v := range outVals {
		dot += v * gradVals[i]
	}
	return dot, nil
}
