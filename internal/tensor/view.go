package tensor

import "fmt"

// View-producing operations. Each returns a RawTensor that borrows the
// receiver's buffer (IsView() == true) and never allocates element
// storage; only Contiguous materializes a fresh owned copy. Every
// returned handle holds its own buffer reference.

// Reshape returns a view with a new shape over the same elements.
// The element count must match (ErrShapeMismatch otherwise) and the
// receiver must be contiguous: reshaping a strided view has no single
// stride assignment, call Contiguous() first.
func Reshape(x *RawTensor, newShape Shape) (*RawTensor, error) {
	if err := newShape.Validate(); err != nil {
		return nil, fmt.Errorf("reshape: %w", err)
	}
	if newShape.NumElements() != x.NumElements() {
		return nil, fmt.Errorf("%w: reshape %v (%d elements) to %v (%d elements)",
			ErrShapeMismatch, x.shape, x.NumElements(), newShape, newShape.NumElements())
	}
	if !x.IsContiguous() {
		return nil, fmt.Errorf("%w: reshape of non-contiguous tensor, call Contiguous() first",
			ErrShapeMismatch)
	}
	return x.newView(newShape, newShape.ComputeStrides(), 0), nil
}

// Transpose returns a view with permuted dimensions. With no axes the
// dimension order is reversed (the standard 2D transpose); otherwise axes
// must be a permutation of [0, rank). The data is not moved: only the
// shape and strides are permuted, so the result is typically
// non-contiguous.
func Transpose(x *RawTensor, axes ...int) (*RawTensor, error) {
	ndim := len(x.shape)
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		return nil, fmt.Errorf("%w: transpose got %d axes for rank %d", ErrAxisOutOfRange, len(axes), ndim)
	}

	seen := make([]bool, ndim)
	newShape := make(Shape, ndim)
	newStride := make([]int, ndim)
	for i, a := range axes {
		norm, err := NormalizeAxis(a, ndim)
		if err != nil {
			return nil, fmt.Errorf("transpose: %w", err)
		}
		if seen[norm] {
			return nil, fmt.Errorf("%w: transpose axis %d repeated", ErrAxisOutOfRange, norm)
		}
		seen[norm] = true
		newShape[i] = x.shape[norm]
		newStride[i] = x.stride[norm]
	}

	return x.newView(newShape, newStride, 0), nil
}

// Squeeze removes a dimension of size 1 at the specified position.
// Supports negative axis indexing; the dimension size must be 1.
func Squeeze(x *RawTensor, axis int) (*RawTensor, error) {
	norm, err := NormalizeAxis(axis, len(x.shape))
	if err != nil {
		return nil, fmt.Errorf("squeeze: %w", err)
	}
	if x.shape[norm] != 1 {
		return nil, fmt.Errorf("%w: squeeze axis %d has size %d, must be 1",
			ErrShapeMismatch, norm, x.shape[norm])
	}

	newShape := make(Shape, 0, len(x.shape)-1)
	newStride := make([]int, 0, len(x.stride)-1)
	for i := range x.shape {
		if i != norm {
			newShape = append(newShape, x.shape[i])
			newStride = append(newStride, x.stride[i])
		}
	}
	return x.newView(newShape, newStride, 0), nil
}

// Unsqueeze adds a dimension of size 1 at the specified position.
// The valid axis range is [-(rank+1), rank].
func Unsqueeze(x *RawTensor, axis int) (*RawTensor, error) {
	ndim := len(x.shape)
	if axis < 0 {
		axis = ndim + 1 + axis
	}
	if axis < 0 || axis > ndim {
		return nil, fmt.Errorf("%w: unsqueeze axis %d for rank %d (valid: [0, %d])",
			ErrAxisOutOfRange, axis, ndim, ndim)
	}

	newShape := make(Shape, 0, ndim+1)
	newStride := make([]int, 0, ndim+1)
	newShape = append(newShape, x.shape[:axis]...)
	newStride = append(newStride, x.stride[:axis]...)
	// The inserted axis is never iterated more than once, any stride
	// works; reuse the next dimension's stride for a canonical-looking
	// layout.
	insStride := 1
	if axis < ndim {
		insStride = x.stride[axis]
	}
	newShape = append(newShape, 1)
	newStride = append(newStride, insStride)
	newShape = append(newShape, x.shape[axis:]...)
	newStride = append(newStride, x.stride[axis:]...)

	return x.newView(newShape, newStride, 0), nil
}

// Slice returns a view of the half-open region [starts[i], ends[i]) along
// every dimension. Both bound slices must have one entry per dimension;
// bounds outside the tensor or empty regions are ErrIndexOutOfRange.
func Slice(x *RawTensor, starts, ends []int) (*RawTensor, error) {
	ndim := len(x.shape)
	if len(starts) != ndim || len(ends) != ndim {
		return nil, fmt.Errorf("%w: slice needs %d start/end pairs, got %d/%d",
			ErrIndexOutOfRange, ndim, len(starts), len(ends))
	}

	newShape := make(Shape, ndim)
	extraOffset := 0
	for i := 0; i < ndim; i++ {
		if starts[i] < 0 || ends[i] > x.shape[i] || starts[i] >= ends[i] {
			return nil, fmt.Errorf("%w: slice [%d:%d] of dimension %d (size %d)",
				ErrIndexOutOfRange, starts[i], ends[i], i, x.shape[i])
		}
		newShape[i] = ends[i] - starts[i]
		extraOffset += starts[i] * x.stride[i]
	}

	return x.newView(newShape, x.stride, extraOffset), nil
}

// Contiguous returns a tensor with canonical row-major layout. Strided
// views are gathered into a fresh buffer; already-contiguous tensors
// come back as a buffer-sharing clone. Either way the caller owns the
// returned handle and releases it independently of the receiver.
func Contiguous(x *RawTensor) (*RawTensor, error) {
	if x.IsContiguous() {
		return x.Clone(), nil
	}

	result, err := NewRaw(x.shape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("contiguous: %w", err)
	}

	switch x.dtype {
	case Int8:
		gather(result.AsInt8(), x)
	case Int16:
		gather(result.AsInt16(), x)
	case Int32:
		gather(result.AsInt32(), x)
	case Int64:
		gather(result.AsInt64(), x)
	case Uint8:
		gather(result.AsUint8(), x)
	case Uint16:
		gather(result.AsUint16(), x)
	case Uint32:
		gather(result.AsUint32(), x)
	case Uint64:
		gather(result.AsUint64(), x)
	case Bool:
		gather(result.AsBool(), x)
	case Float16:
		gather(result.AsFloat16(), x)
	case BFloat16:
		gather(result.AsBFloat16(), x)
	case Float32:
		gather(result.AsFloat32(), x)
	case Float64:
		gather(result.AsFloat64(), x)
	default:
		return nil, fmt.Errorf("%w: contiguous of %s", ErrDTypeMismatch, x.dtype)
	}

	return result, nil
}

// gather copies the elements of a (possibly strided) tensor into dst in
// row-major order.
func gather[T DType](dst []T, src *RawTensor) {
	srcData := rawSlice[T](src)
	n := src.NumElements()
	if n == 0 {
		return
	}

	ndim := len(src.shape)
	if ndim == 0 {
		dst[0] = srcData[0]
		return
	}

	// Odometer walk over the source index space.
	coords := make([]int, ndim)
	flat := 0
	for i := 0; i < n; i++ {
		dst[i] = srcData[flat]
		for d := ndim - 1; d >= 0; d-- {
			coords[d]++
			flat += src.stride[d]
			if coords[d] < src.shape[d] {
				break
			}
			coords[d] = 0
			flat -= src.shape[d] * src.stride[d]
		}
	}
}
