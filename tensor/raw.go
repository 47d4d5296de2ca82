// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape, stride, dtype and device metadata
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Reference-counted buffer sharing via Clone() and Release()
//   - Zero-copy views with explicit strides and offsets
//
// Most users should use the high-level Tensor[T, B] type instead.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32() // Type-safe access
//	clone := raw.Clone()    // Shares buffer via reference counting
type RawTensor = tensor.RawTensor

// Reduction gradients at the raw level. Each pairs with the matching
// forward on Backend and restores the input's exact shape.

// SumBackward is the gradient of the scalar sum.
func SumBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	return tensor.SumBackward(input, gradOutput)
}

// SumDimBackward is the gradient of the axis sum.
func SumDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	return tensor.SumDimBackward(input, gradOutput, dim, keepDim)
}

// MeanBackward is the gradient of the scalar mean.
func MeanBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	return tensor.MeanBackward(input, gradOutput)
}

// MeanDimBackward is the gradient of the axis mean.
func MeanDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	return tensor.MeanDimBackward(input, gradOutput, dim, keepDim)
}

// MaxBackward is the gradient of the scalar maximum.
func MaxBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	return tensor.MaxBackward(input, gradOutput)
}

// MaxDimBackward is the gradient of the axis maximum.
func MaxDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	return tensor.MaxDimBackward(input, gradOutput, dim, keepDim)
}

// MinBackward is the gradient of the scalar minimum.
func MinBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	return tensor.MinBackward(input, gradOutput)
}

// MinDimBackward is the gradient of the axis minimum.
func MinDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	return tensor.MinDimBackward(input, gradOutput, dim, keepDim)
}

// VarianceBackward is the gradient of the scalar variance.
func VarianceBackward(input, gradOutput *RawTensor, ddof int) (*RawTensor, error) {
	return tensor.VarianceBackward(input, gradOutput, ddof)
}

// VarianceDimBackward is the gradient of the axis variance.
func VarianceDimBackward(input, gradOutput *RawTensor, dim, ddof int, keepDim bool) (*RawTensor, error) {
	return tensor.VarianceDimBackward(input, gradOutput, dim, ddof, keepDim)
}

// StdBackward is the gradient of the scalar standard deviation.
func StdBackward(input, gradOutput *RawTensor, ddof int) (*RawTensor, error) {
	return tensor.StdBackward(input, gradOutput, ddof)
}

// StdDimBackward is the gradient of the axis standard deviation.
func StdDimBackward(input, gradOutput *RawTensor, dim, ddof int, keepDim bool) (*RawTensor, error) {
	return tensor.StdDimBackward(input, gradOutput, dim, ddof, keepDim)
}

// MedianBackward is the gradient of the scalar median.
func MedianBackward(input, gradOutput *RawTensor) (*RawTensor, error) {
	return tensor.MedianBackward(input, gradOutput)
}

// MedianDimBackward is the gradient of the axis median.
func MedianDimBackward(input, gradOutput *RawTensor, dim int, keepDim bool) (*RawTensor, error) {
	return tensor.MedianDimBackward(input, gradOutput, dim, keepDim)
}

// PercentileBackward is the gradient of the scalar percentile.
func PercentileBackward(input, gradOutput *RawTensor, p float64) (*RawTensor, error) {
	return tensor.PercentileBackward(input, gradOutput, p)
}

// PercentileDimBackward is the gradient of the axis percentile.
func PercentileDimBackward(input, gradOutput *RawTensor, p float64, dim int, keepDim bool) (*RawTensor, error) {
	return tensor.PercentileDimBackward(input, gradOutput, p, dim, keepDim)
}
