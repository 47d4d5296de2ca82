package tensor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Gradient-check acceptance for every reduction backward. Inputs use
// well-separated values so the ±eps probes never reorder elements or
// move an extremum, keeping the piecewise-linear reductions
// differentiable at the probe point.

const (
	checkRtol = 1e-6
	checkAtol = 1e-9
)

func checkInput(t *testing.T) *RawTensor {
	t.Helper()
	return fromFloat64(t, []float64{0.31, -1.24, 2.05, 0.88, -0.47, 1.62}, Shape{2, 3})
}

func TestCheckGradientReductionsScalar(t *testing.T) {
	tests := []struct {
		name     string
		forward  func(*RawTensor) (*RawTensor, error)
		backward func(input, gradOutput *RawTensor) (*RawTensor, error)
	}{
		{"sum", Sum, SumBackward},
		{"mean", Mean, MeanBackward},
		{"max", Max, MaxBackward},
		{"min", Min, MinBackward},
		{"median", Median, MedianBackward},
		{
			"variance",
			func(x *RawTensor) (*RawTensor, error) { return Variance(x, 0) },
			func(in, g *RawTensor) (*RawTensor, error) { return VarianceBackward(in, g, 0) },
		},
		{
			"variance_ddof1",
			func(x *RawTensor) (*RawTensor, error) { return Variance(x, 1) },
			func(in, g *RawTensor) (*RawTensor, error) { return VarianceBackward(in, g, 1) },
		},
		{
			"std",
			func(x *RawTensor) (*RawTensor, error) { return Std(x, 0) },
			func(in, g *RawTensor) (*RawTensor, error) { return StdBackward(in, g, 0) },
		},
		{
			"percentile_30",
			func(x *RawTensor) (*RawTensor, error) { return Percentile(x, 30) },
			func(in, g *RawTensor) (*RawTensor, error) { return PercentileBackward(in, g, 30) },
		},
		{
			"percentile_100",
			func(x *RawTensor) (*RawTensor, error) { return Percentile(x, 100) },
			func(in, g *RawTensor) (*RawTensor, error) { return PercentileBackward(in, g, 100) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := checkInput(t)
			grad := scalarGrad(t, 1.3)
			err := CheckGradient(tt.forward, tt.backward, input, grad, 0, checkRtol, checkAtol)
			assert.NoError(t, err)
		})
	}
}

func TestCheckGradientReductionsDim(t *testing.T) {
	type dimCase struct {
		dim     int
		keepDim bool
	}
	dims := []dimCase{{0, false}, {1, false}, {-1, true}}

	ops := []struct {
		name     string
		forward  func(x *RawTensor, dim int, keepDim bool) (*RawTensor, error)
		backward func(in, g *RawTensor, dim int, keepDim bool) (*RawTensor, error)
	}{
		{"sumdim", SumDim, SumDimBackward},
		{"meandim", MeanDim, MeanDimBackward},
		{"maxdim", MaxDim, MaxDimBackward},
		{"mindim", MinDim, MinDimBackward},
		{"mediandim", MedianDim, MedianDimBackward},
		{
			"vardim",
			func(x *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
				return VarianceDim(x, dim, 0, keepDim)
			},
			func(in, g *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
				return VarianceDimBackward(in, g, dim, 0, keepDim)
			},
		},
		{
			"stddim",
			func(x *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
				return StdDim(x, dim, 0, keepDim)
			},
			func(in, g *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
				return StdDimBackward(in, g, dim, 0, keepDim)
			},
		},
		{
			"percentiledim_40",
			func(x *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
				return PercentileDim(x, 40, dim, keepDim)
			},
			func(in, g *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
				return PercentileDimBackward(in, g, 40, dim, keepDim)
			},
		},
	}

	for _, op := range ops {
		for _, dc := range dims {
			name := fmt.Sprintf("%s_dim%d_keep%t", op.name, dc.dim, dc.keepDim)
			t.Run(name, func(t *testing.T) {
				input := checkInput(t)

				// Upstream gradient shaped like the forward output,
				// with distinct entries so lane routing is visible.
				out, err := op.forward(input, dc.dim, dc.keepDim)
				require.NoError(t, err)
				grad, err := NewRaw(out.Shape(), Float64, CPU)
				require.NoError(t, err)
				for i := range grad.AsFloat64()[:grad.NumElements()] {
					grad.AsFloat64()[i] = 0.5 + float64(i)
				}

				fw := func(x *RawTensor) (*RawTensor, error) { return op.forward(x, dc.dim, dc.keepDim) }
				bw := func(in, g *RawTensor) (*RawTensor, error) { return op.backward(in, g, dc.dim, dc.keepDim) }
				assert.NoError(t, CheckGradient(fw, bw, input, grad, 0, checkRtol, checkAtol))
			})
		}
	}
}

func TestCheckGradientFloat32DefaultEps(t *testing.T) {
	// float32 uses a coarser default step; a linear op stays exact.
	input := fromFloat32(t, []float32{1, -2, 3, 0.5}, Shape{4})
	grad, err := NewRaw(Shape{}, Float32, CPU)
	require.NoError(t, err)
	grad.AsFloat32()[0] = 2

	err = CheckGradient(Sum, SumBackward, input, grad, 0, 1e-3, 1e-4)
	assert.NoError(t, err)
}

func TestCheckGradientDetectsWrongBackward(t *testing.T) {
	input := checkInput(t)
	grad := scalarGrad(t, 1)

	// Mean's backward paired with Sum's forward is off by the count.
	err := CheckGradient(Sum, MeanBackward, input, grad, 0, checkRtol, checkAtol)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gradient check failed")
}

func TestCheckGradientDoesNotMutateInput(t *testing.T) {
	input := checkInput(t)
	before := append([]float64(nil), input.AsFloat64()[:6]...)
	grad := scalarGrad(t, 1)

	require.NoError(t, CheckGradient(Sum, SumBackward, input, grad, 0, checkRtol, checkAtol))
	assert.Equal(t, before, input.AsFloat64()[:6])
}

func TestCheckGradientRejectsIntInput(t *testing.T) {
	input, err := NewRaw(Shape{3}, Int32, CPU)
	require.NoError(t, err)
	grad := scalarGrad(t, 1)

	err = CheckGradient(Sum, SumBackward, input, grad, 0, checkRtol, checkAtol)
	assert.ErrorIs(t, err, ErrDTypeMismatch)
}
