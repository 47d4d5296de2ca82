package tensor

import "fmt"

// Shape represents the dimensions of a tensor. An empty Shape is a scalar.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("%w: invalid dimension at index %d: %d (must be > 0)", ErrShapeMismatch, i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape, in element
// units: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// IsContiguous reports whether the given strides are the canonical
// row-major strides for this shape.
func (s Shape) IsContiguous(strides []int) bool {
	if len(strides) != len(s) {
		return false
	}
	canonical := s.ComputeStrides()
	for i := range canonical {
		if strides[i] != canonical[i] {
			return false
		}
	}
	return true
}

// NormalizeAxis maps a possibly-negative axis into [0, rank).
// Negative axis a means rank + a. Returns ErrAxisOutOfRange if the
// normalized axis falls outside the tensor's rank.
func NormalizeAxis(axis, rank int) (int, error) {
	if axis < 0 {
		axis = rank + axis
	}
	if axis < 0 || axis >= rank {
		return 0, fmt.Errorf("%w: axis %d for rank %d", ErrAxisOutOfRange, axis, rank)
	}
	return axis, nil
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed,
// and an error wrapping ErrIncompatibleShapes if the shapes cannot combine.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1, 5) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := false

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("%w: %v vs %v (dimension %d: %d vs %d)",
				ErrIncompatibleShapes, a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// BroadcastStrides maps a tensor's strides onto a broadcast result shape.
// The input shape is right-aligned against outShape; padded and size-1
// dimensions get stride 0 so iteration revisits the same element, all
// other dimensions keep their original stride. The tensor's own strides
// are used as-is, so views and transposes broadcast without copying.
func BroadcastStrides(shape Shape, strides []int, outShape Shape) []int {
	outDim := len(outShape)
	result := make([]int, outDim)

	offset := outDim - len(shape)
	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			// Padded dimension, stride is 0
			result[i] = 0
		case shape[inIdx] == 1 && outShape[i] != 1:
			// Broadcast dimension, stride is 0
			result[i] = 0
		default:
			result[i] = strides[inIdx]
		}
	}

	return result
}
