package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/x448/float16"

	"github.com/ember-ml/ember/bfloat16"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// tensorBuffer is a reference-counted shared buffer. A freshly allocated
// tensor is the sole owner (refCount == 1); every view created from it
// bumps the count, and the storage is dropped only when the last owner
// or view releases it.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (for views and clones).
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// isUnique returns true if this buffer has only one reference.
func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the low-level tensor representation: a shared
// reference-counted buffer plus the (shape, strides, offset) metadata
// that interprets it. Strides and offset are in element units.
//
// A RawTensor either owns its buffer exclusively or is a view borrowing
// storage created by another tensor; mutations through a view are visible
// through the origin and vice versa.
type RawTensor struct {
	buffer *tensorBuffer // Shared reference-counted buffer
	shape  Shape         // Tensor dimensions
	stride []int         // Memory strides in elements (row-major when owned)
	dtype  DataType      // Runtime type information
	device Device        // Compute device
	offset int           // Element offset into the buffer, for views
	view   bool          // True when storage is borrowed from another tensor
}

// NewRaw creates a new RawTensor with the given shape and type.
// The buffer is freshly allocated, contiguous and zero-initialized.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	numElements := shape.NumElements()
	byteSize := numElements * dtype.Size()

	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
		offset: 0,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides in element units.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// Rank returns the number of dimensions (0 for a scalar).
func (r *RawTensor) Rank() int {
	return len(r.shape)
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// IsContiguous reports whether the strides are the canonical row-major
// layout for the shape.
func (r *RawTensor) IsContiguous() bool {
	return r.shape.IsContiguous(r.stride)
}

// IsView reports whether this tensor borrows storage created by another
// tensor rather than owning it exclusively.
func (r *RawTensor) IsView() bool {
	return r.view
}

// span returns the number of elements from the tensor's offset that its
// index space can reach. Equal to NumElements for contiguous tensors;
// larger extents appear for strided views into bigger buffers.
func (r *RawTensor) span() int {
	span := 1
	for i, dim := range r.shape {
		if dim == 0 {
			return 0
		}
		span += (dim - 1) * r.stride[i]
	}
	return span
}

// view creates a borrowing RawTensor over the same buffer with new
// metadata. The buffer refcount is incremented; extraOffset is in
// elements relative to the receiver's offset.
func (r *RawTensor) newView(shape Shape, stride []int, extraOffset int) *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape.Clone(),
		stride: append([]int(nil), stride...),
		dtype:  r.dtype,
		device: r.device,
		offset: r.offset + extraOffset,
		view:   true,
	}
}

// Data returns the raw byte slice starting at the tensor's offset.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.buffer.data[r.offset*r.dtype.Size():]
}

// rawSlice reinterprets the buffer, starting at the tensor's offset, as a
// typed slice covering the tensor's reachable span.
func rawSlice[T DType](r *RawTensor) []T {
	n := r.span()
	if n == 0 {
		return nil
	}
	data := r.buffer.data[r.offset*r.dtype.Size():]
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by span()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	return rawSlice[float32](r)
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	return rawSlice[float64](r)
}

// AsFloat16 interprets the data as []float16.Float16.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsFloat16() []float16.Float16 {
	if r.dtype != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", r.dtype))
	}
	return rawSlice[float16.Float16](r)
}

// AsBFloat16 interprets the data as []bfloat16.BFloat16.
// Panics if the tensor's dtype is not BFloat16.
func (r *RawTensor) AsBFloat16() []bfloat16.BFloat16 {
	if r.dtype != BFloat16 {
		panic(fmt.Sprintf("tensor dtype is %s, not bfloat16", r.dtype))
	}
	return rawSlice[bfloat16.BFloat16](r)
}

// AsInt8 interprets the data as []int8.
func (r *RawTensor) AsInt8() []int8 {
	if r.dtype != Int8 {
		panic(fmt.Sprintf("tensor dtype is %s, not int8", r.dtype))
	}
	return rawSlice[int8](r)
}

// AsInt16 interprets the data as []int16.
func (r *RawTensor) AsInt16() []int16 {
	if r.dtype != Int16 {
		panic(fmt.Sprintf("tensor dtype is %s, not int16", r.dtype))
	}
	return rawSlice[int16](r)
}

// AsInt32 interprets the data as []int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	return rawSlice[int32](r)
}

// AsInt64 interprets the data as []int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	return rawSlice[int64](r)
}

// AsUint8 interprets the data as []uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return rawSlice[uint8](r)
}

// AsUint16 interprets the data as []uint16.
func (r *RawTensor) AsUint16() []uint16 {
	if r.dtype != Uint16 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint16", r.dtype))
	}
	return rawSlice[uint16](r)
}

// AsUint32 interprets the data as []uint32.
func (r *RawTensor) AsUint32() []uint32 {
	if r.dtype != Uint32 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint32", r.dtype))
	}
	return rawSlice[uint32](r)
}

// AsUint64 interprets the data as []uint64.
func (r *RawTensor) AsUint64() []uint64 {
	if r.dtype != Uint64 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint64", r.dtype))
	}
	return rawSlice[uint64](r)
}

// AsBool interprets the data as []bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", r.dtype))
	}
	return rawSlice[bool](r)
}

// FlatIndex converts multi-dimensional indices into the element offset
// relative to the tensor's own offset, validating bounds.
// Returns ErrIndexOutOfRange when any index falls outside its dimension
// or the number of indices does not match the rank.
func (r *RawTensor) FlatIndex(indices ...int) (int, error) {
	if len(indices) != len(r.shape) {
		return 0, fmt.Errorf("%w: expected %d indices, got %d", ErrIndexOutOfRange, len(r.shape), len(indices))
	}
	flat := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			return 0, fmt.Errorf("%w: index %d out of bounds for dimension %d (size %d)",
				ErrIndexOutOfRange, idx, i, r.shape[i])
		}
		flat += idx * r.stride[i]
	}
	return flat, nil
}

// Clone creates a shallow copy of the RawTensor (shares buffer with
// reference counting). The clone keeps the receiver's view status.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
		offset: r.offset,
		view:   r.view,
	}
}

// Release decrements the buffer reference count and deallocates when no
// owner or view remains.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}
