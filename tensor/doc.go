// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe dynamic tensors for the Ember ML framework.
//
// # Overview
//
// Tensors are the fundamental data structure in Ember. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting
//   - Zero-copy views (reshape, transpose, squeeze, unsqueeze, slice)
//   - Axis reductions with analytic gradients and a numeric gradient checker
//   - Narrow 16-bit float support (IEEE half and bfloat16)
//
// # Basic Usage
//
//	import (
//	    "github.com/ember-ml/ember/tensor"
//	    "github.com/ember-ml/ember/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    z := x.Add(y)
//	    total := z.Sum().Item()
//	    _ = total
//	}
//
// # Supported Data Types
//
// The DType constraint covers:
//   - float32, float64 (floating-point)
//   - float16.Float16, bfloat16.BFloat16 (narrow 16-bit floats)
//   - int8, int16, int32, int64 (signed integers)
//   - uint8, uint16, uint32, uint64 (unsigned integers)
//   - bool (boolean masks)
//
// # Broadcasting
//
// Binary operations follow NumPy broadcasting rules:
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend) // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{1, 4}, backend)  // (1, 4)
//	c := a.Add(b)                                           // (3, 4)
//
// # Views and Memory
//
// Shape operations return views sharing the underlying buffer where the
// layout permits; writes through a view are visible through every alias.
// Buffers are reference-counted and Contiguous() materializes an
// independent row-major copy.
//
// # Gradients
//
// Every reduction has an analytic backward (tensor.SumBackward,
// tensor.MeanDimBackward, ...) and tensor.CheckGradient verifies any
// forward/backward pair against central finite differences.
package tensor
