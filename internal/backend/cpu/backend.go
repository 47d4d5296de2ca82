// Package cpu implements the CPU backend on top of the raw tensor kernels.
package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// CPUBackend implements tensor.Backend for host memory. Kernels live in
// the tensor package and return errors; the backend converts them to
// panics, which is the contract of the typed API.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

func must(op string, t *tensor.RawTensor, err error) *tensor.RawTensor {
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return t
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Add(a, b)
	return must("add", t, err)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Sub(a, b)
	return must("sub", t, err)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Mul(a, b)
	return must("mul", t, err)
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Div(a, b)
	return must("div", t, err)
}

// Pow performs element-wise exponentiation with broadcasting.
func (cpu *CPUBackend) Pow(a, b *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Pow(a, b)
	return must("pow", t, err)
}

// Mod performs element-wise remainder with broadcasting.
func (cpu *CPUBackend) Mod(a, b *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Mod(a, b)
	return must("mod", t, err)
}

// Reshape returns a zero-copy view with a new shape.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	t, err := tensor.Reshape(x, shape)
	return must("reshape", t, err)
}

// Transpose returns a zero-copy view with permuted axes.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	t, err := tensor.Transpose(x, axes...)
	return must("transpose", t, err)
}

// Squeeze returns a view with a size-1 axis removed.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	t, err := tensor.Squeeze(x, dim)
	return must("squeeze", t, err)
}

// Unsqueeze returns a view with a size-1 axis inserted.
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	t, err := tensor.Unsqueeze(x, dim)
	return must("unsqueeze", t, err)
}

// Slice returns a view over half-open index ranges.
func (cpu *CPUBackend) Slice(x *tensor.RawTensor, starts, ends []int) *tensor.RawTensor {
	t, err := tensor.Slice(x, starts, ends)
	return must("slice", t, err)
}

// Contiguous returns a tensor in canonical row-major layout.
func (cpu *CPUBackend) Contiguous(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Contiguous(x)
	return must("contiguous", t, err)
}

// Cast converts a tensor to another data type.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	t, err := tensor.Cast(x, dtype)
	return must("cast", t, err)
}

// Sum reduces all elements to a scalar.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Sum(x)
	return must("sum", t, err)
}

// SumDim sums along the given axis.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	t, err := tensor.SumDim(x, dim, keepDim)
	return must("sumdim", t, err)
}

// Mean reduces all elements to their mean.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Mean(x)
	return must("mean", t, err)
}

// MeanDim computes the mean along the given axis.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	t, err := tensor.MeanDim(x, dim, keepDim)
	return must("meandim", t, err)
}

// Max reduces all elements to their maximum.
func (cpu *CPUBackend) Max(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Max(x)
	return must("max", t, err)
}

// MaxDim computes the maximum along the given axis.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	t, err := tensor.MaxDim(x, dim, keepDim)
	return must("maxdim", t, err)
}

// Min reduces all elements to their minimum.
func (cpu *CPUBackend) Min(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Min(x)
	return must("min", t, err)
}

// MinDim computes the minimum along the given axis.
func (cpu *CPUBackend) MinDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	t, err := tensor.MinDim(x, dim, keepDim)
	return must("mindim", t, err)
}

// Variance computes the variance over all elements.
func (cpu *CPUBackend) Variance(x *tensor.RawTensor, ddof int) *tensor.RawTensor {
	t, err := tensor.Variance(x, ddof)
	return must("variance", t, err)
}

// VarianceDim computes the variance along the given axis.
func (cpu *CPUBackend) VarianceDim(x *tensor.RawTensor, dim, ddof int, keepDim bool) *tensor.RawTensor {
	t, err := tensor.VarianceDim(x, dim, ddof, keepDim)
	return must("variancedim", t, err)
}

// Std computes the standard deviation over all elements.
func (cpu *CPUBackend) Std(x *tensor.RawTensor, ddof int) *tensor.RawTensor {
	t, err := tensor.Std(x, ddof)
	return must("std", t, err)
}

// StdDim computes the standard deviation along the given axis.
func (cpu *CPUBackend) StdDim(x *tensor.RawTensor, dim, ddof int, keepDim bool) *tensor.RawTensor {
	t, err := tensor.StdDim(x, dim, ddof, keepDim)
	return must("stddim", t, err)
}

// Median computes the median over all elements.
func (cpu *CPUBackend) Median(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.Median(x)
	return must("median", t, err)
}

// MedianDim computes the median along the given axis.
func (cpu *CPUBackend) MedianDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	t, err := tensor.MedianDim(x, dim, keepDim)
	return must("mediandim", t, err)
}

// Percentile computes the p-th percentile over all elements.
func (cpu *CPUBackend) Percentile(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	t, err := tensor.Percentile(x, p)
	return must("percentile", t, err)
}

// PercentileDim computes the p-th percentile along the given axis.
func (cpu *CPUBackend) PercentileDim(x *tensor.RawTensor, p float64, dim int, keepDim bool) *tensor.RawTensor {
	t, err := tensor.PercentileDim(x, p, dim, keepDim)
	return must("percentiledim", t, err)
}
