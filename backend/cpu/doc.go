// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a host-memory backend with:
//   - Pure Go implementation (no CGO)
//   - All thirteen element types, including float16 and bfloat16
//   - NumPy-compatible broadcasting
//   - Deterministic reductions (left-to-right accumulation)
//
// # Basic Usage
//
//	import (
//	    "github.com/ember-ml/ember/backend/cpu"
//	    "github.com/ember-ml/ember/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//	    _ = z
//	}
//
// # Thread Safety
//
// The backend itself is stateless and safe for concurrent use. Large
// same-shape kernels split their index space across goroutines with
// disjoint output ranges, so results are identical to the sequential
// loop. Concurrent writes to the same tensor buffer through views remain
// the caller's responsibility.
package cpu
