// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in the Ember ML framework.
//
// The package defines core interfaces and types for type-safe tensor operations:
//   - Tensor[T, B]: High-level generic tensor with type safety
//   - RawTensor: Low-level tensor for advanced use cases
//   - Backend: Interface for device-specific compute implementations
//   - Shape, DataType, Device: Core type definitions
package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// Type aliases for the public API.

// DType is a constraint for tensor element types.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Int8     DataType = tensor.Int8
	Int16    DataType = tensor.Int16
	Int32    DataType = tensor.Int32
	Int64    DataType = tensor.Int64
	Uint8    DataType = tensor.Uint8
	Uint16   DataType = tensor.Uint16
	Uint32   DataType = tensor.Uint32
	Uint64   DataType = tensor.Uint64
	Bool     DataType = tensor.Bool
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU Device = tensor.CPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a generic type-safe tensor bound to a compute backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Sentinel errors, matchable with errors.Is through any wrapping.
var (
	ErrDTypeMismatch      = tensor.ErrDTypeMismatch
	ErrIncompatibleShapes = tensor.ErrIncompatibleShapes
	ErrShapeMismatch      = tensor.ErrShapeMismatch
	ErrAxisOutOfRange     = tensor.ErrAxisOutOfRange
	ErrIndexOutOfRange    = tensor.ErrIndexOutOfRange
	ErrDivisionByZero     = tensor.ErrDivisionByZero
)

// Creation functions

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Eye creates a 2D identity matrix.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	return tensor.Eye[T, B](n, b)
}

// Arange creates a 1D tensor with values from start to end (exclusive).
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	return tensor.Arange[T, B](start, end, b)
}

// Linspace creates a 1D tensor of num evenly spaced values from start to
// stop inclusive. Float element types only.
func Linspace[T DType, B Backend](start, stop float64, num int, b B) *Tensor[T, B] {
	return tensor.Linspace[T, B](start, stop, num, b)
}

// Randn creates a tensor of standard normal samples. An optional seed
// gives a reproducible stream.
func Randn[T DType, B Backend](shape Shape, b B, seed ...int64) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, b, seed...)
}

// FromSlice creates a tensor by copying a Go slice.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New creates a tensor from a raw tensor.
//
// This is a low-level function. Most users should use creation functions
// like Zeros, Ones, or FromSlice instead.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw creates a new raw tensor with the given shape, dtype, and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// CastTo converts a tensor to the element type U.
func CastTo[U DType, T DType, B Backend](t *Tensor[T, B]) *Tensor[U, B] {
	return tensor.CastTo[U, T, B](t)
}

// Utility functions

// BroadcastShapes computes the broadcast shape for two shapes following
// NumPy broadcasting rules. The bool reports whether either operand
// needs broadcasting.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// CheckGradient verifies an analytic backward function against central
// finite differences. See the internal documentation for the tolerance
// contract.
func CheckGradient(
	forward func(*RawTensor) (*RawTensor, error),
	backward func(input, gradOutput *RawTensor) (*RawTensor, error),
	input, gradOutput *RawTensor,
	eps, rtol, atol float64,
) error {
	return tensor.CheckGradient(forward, backward, input, gradOutput, eps, rtol, atol)
}
