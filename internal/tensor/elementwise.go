package tensor

import (
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/ember-ml/ember/bfloat16"
)

// binOp enumerates the elementwise binary operations.
type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opDiv
	opPow
	opMod
)

func (op binOp) String() string {
	switch op {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	case opMul:
		return "mul"
	case opDiv:
		return "div"
	case opPow:
		return "pow"
	case opMod:
		return "mod"
	default:
		return "unknown"
	}
}

// Add performs element-wise addition with broadcasting.
func Add(a, b *RawTensor) (*RawTensor, error) { return binary(opAdd, a, b) }

// Sub performs element-wise subtraction with broadcasting.
func Sub(a, b *RawTensor) (*RawTensor, error) { return binary(opSub, a, b) }

// Mul performs element-wise multiplication with broadcasting.
func Mul(a, b *RawTensor) (*RawTensor, error) { return binary(opMul, a, b) }

// Div performs element-wise division with broadcasting.
// Floating-point division by zero follows IEEE-754 (±Inf/NaN); integer
// division by zero is ErrDivisionByZero and allocates no result.
func Div(a, b *RawTensor) (*RawTensor, error) { return binary(opDiv, a, b) }

// Pow performs element-wise exponentiation with broadcasting.
// Integer bases use truncating semantics for negative exponents (0 for
// |base| > 1), and 0 raised to a negative power is ErrDivisionByZero.
func Pow(a, b *RawTensor) (*RawTensor, error) { return binary(opPow, a, b) }

// Mod performs element-wise remainder with broadcasting. Float dtypes use
// math.Mod; integer modulo by zero is ErrDivisionByZero.
func Mod(a, b *RawTensor) (*RawTensor, error) { return binary(opMod, a, b) }

// binary validates operands, broadcasts shapes and dispatches on dtype.
// Validation happens before the result buffer is allocated, so a failed
// operation leaves no partial state behind.
func binary(op binOp, a, b *RawTensor) (*RawTensor, error) {
	if a.dtype != b.dtype {
		return nil, fmt.Errorf("%w: %s of %s and %s", ErrDTypeMismatch, op, a.dtype, b.dtype)
	}
	if a.dtype == Bool {
		return nil, fmt.Errorf("%w: %s is not defined for bool tensors", ErrDTypeMismatch, op)
	}

	outShape, _, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if a.dtype.IsInteger() {
		if err := checkIntegerOperands(op, a, b); err != nil {
			return nil, err
		}
	}

	result, err := NewRaw(outShape, a.dtype, a.device)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch a.dtype {
	case Int8:
		broadcastBinary(result.AsInt8(), a, b, outShape, intFn[int8](op))
	case Int16:
		broadcastBinary(result.AsInt16(), a, b, outShape, intFn[int16](op))
	case Int32:
		broadcastBinary(result.AsInt32(), a, b, outShape, intFn[int32](op))
	case Int64:
		broadcastBinary(result.AsInt64(), a, b, outShape, intFn[int64](op))
	case Uint8:
		broadcastBinary(result.AsUint8(), a, b, outShape, uintFn[uint8](op))
	case Uint16:
		broadcastBinary(result.AsUint16(), a, b, outShape, uintFn[uint16](op))
	case Uint32:
		broadcastBinary(result.AsUint32(), a, b, outShape, uintFn[uint32](op))
	case Uint64:
		broadcastBinary(result.AsUint64(), a, b, outShape, uintFn[uint64](op))
	case Float32:
		broadcastBinary(result.AsFloat32(), a, b, outShape, floatFn[float32](op))
	case Float64:
		broadcastBinary(result.AsFloat64(), a, b, outShape, floatFn[float64](op))
	case Float16:
		broadcastBinary(result.AsFloat16(), a, b, outShape, narrowFn(op,
			float16.Float16.Float32, float16.Fromfloat32))
	case BFloat16:
		broadcastBinary(result.AsBFloat16(), a, b, outShape, narrowFn(op,
			bfloat16.BFloat16.Float32, bfloat16.FromFloat32))
	default:
		return nil, fmt.Errorf("%w: %s of %s", ErrDTypeMismatch, op, a.dtype)
	}

	return result, nil
}

// checkIntegerOperands rejects integer div/mod with a zero divisor and
// 0^negative before any allocation. Only elements the broadcast will
// actually read are inspected.
func checkIntegerOperands(op binOp, a, b *RawTensor) error {
	switch op {
	case opDiv, opMod:
		if anyInt(b, func(v int64) bool { return v == 0 }) {
			return fmt.Errorf("%w: integer %s", ErrDivisionByZero, op)
		}
	case opPow:
		switch b.dtype {
		case Uint8, Uint16, Uint32, Uint64:
			return nil // unsigned exponents are never negative
		}
		if !anyInt(b, func(v int64) bool { return v < 0 }) {
			return nil
		}
		if anyInt(a, func(v int64) bool { return v == 0 }) {
			return fmt.Errorf("%w: integer pow of 0 with negative exponent", ErrDivisionByZero)
		}
	}
	return nil
}

// anyInt reports whether any element of an integer tensor satisfies pred.
// The tensor is walked through its own strides, so view padding is never
// inspected.
func anyInt(x *RawTensor, pred func(int64) bool) bool {
	switch x.dtype {
	case Int8:
		return anyElement(x, func(v int8) bool { return pred(int64(v)) })
	case Int16:
		return anyElement(x, func(v int16) bool { return pred(int64(v)) })
	case Int32:
		return anyElement(x, func(v int32) bool { return pred(int64(v)) })
	case Int64:
		return anyElement(x, pred)
	case Uint8:
		return anyElement(x, func(v uint8) bool { return pred(int64(v)) })
	case Uint16:
		return anyElement(x, func(v uint16) bool { return pred(int64(v)) })
	case Uint32:
		return anyElement(x, func(v uint32) bool { return pred(int64(v)) })
	case Uint64:
		return anyElement(x, func(v uint64) bool { return pred(int64(v)) }) //nolint:gosec // predicate compares against 0
	default:
		return false
	}
}

// anyElement walks a tensor's index space via its strides.
func anyElement[T DType](x *RawTensor, pred func(T) bool) bool {
	data := rawSlice[T](x)
	n := x.NumElements()
	ndim := len(x.shape)
	if ndim == 0 {
		return pred(data[0])
	}

	coords := make([]int, ndim)
	flat := 0
	for i := 0; i < n; i++ {
		if pred(data[flat]) {
			return true
		}
		for d := ndim - 1; d >= 0; d-- {
			coords[d]++
			flat += x.stride[d]
			if coords[d] < x.shape[d] {
				break
			}
			coords[d] = 0
			flat -= x.shape[d] * x.stride[d]
		}
	}
	return false
}

// broadcastBinary fills the contiguous dst with fn applied across a and b
// iterated via broadcast strides. Same-shape contiguous operands take a
// flat loop, fanned out across goroutines for large tensors.
func broadcastBinary[T DType](dst []T, a, b *RawTensor, outShape Shape, fn func(T, T) T) {
	aData := rawSlice[T](a)
	bData := rawSlice[T](b)
	n := outShape.NumElements()

	if a.shape.Equal(b.shape) && a.IsContiguous() && b.IsContiguous() {
		parallelFor(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				dst[i] = fn(aData[i], bData[i])
			}
		})
		return
	}

	aStrides := BroadcastStrides(a.shape, a.stride, outShape)
	bStrides := BroadcastStrides(b.shape, b.stride, outShape)

	ndim := len(outShape)
	if ndim == 0 {
		dst[0] = fn(aData[0], bData[0])
		return
	}

	coords := make([]int, ndim)
	aFlat, bFlat := 0, 0
	for i := 0; i < n; i++ {
		dst[i] = fn(aData[aFlat], bData[bFlat])
		for d := ndim - 1; d >= 0; d-- {
			coords[d]++
			aFlat += aStrides[d]
			bFlat += bStrides[d]
			if coords[d] < outShape[d] {
				break
			}
			coords[d] = 0
			aFlat -= outShape[d] * aStrides[d]
			bFlat -= outShape[d] * bStrides[d]
		}
	}
}

// signedInt and unsignedInt group the integer element types for the
// generic kernels.
type signedInt interface {
	int8 | int16 | int32 | int64
}

type unsignedInt interface {
	uint8 | uint16 | uint32 | uint64
}

type floatType interface {
	float32 | float64
}

func intFn[T signedInt](op binOp) func(T, T) T {
	switch op {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	case opMul:
		return func(x, y T) T { return x * y }
	case opDiv:
		return func(x, y T) T { return x / y }
	case opMod:
		return func(x, y T) T { return x % y }
	case opPow:
		return func(x, y T) T { return ipow(x, int64(y)) }
	default:
		panic("unknown binary op")
	}
}

func uintFn[T unsignedInt](op binOp) func(T, T) T {
	switch op {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	case opMul:
		return func(x, y T) T { return x * y }
	case opDiv:
		return func(x, y T) T { return x / y }
	case opMod:
		return func(x, y T) T { return x % y }
	case opPow:
		return func(x, y T) T { return upow(x, uint64(y)) }
	default:
		panic("unknown binary op")
	}
}

func floatFn[T floatType](op binOp) func(T, T) T {
	switch op {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	case opMul:
		return func(x, y T) T { return x * y }
	case opDiv:
		// IEEE-754: x/0 is ±Inf, 0/0 is NaN.
		return func(x, y T) T { return x / y }
	case opPow:
		return func(x, y T) T { return T(math.Pow(float64(x), float64(y))) }
	case opMod:
		return func(x, y T) T { return T(math.Mod(float64(x), float64(y))) }
	default:
		panic("unknown binary op")
	}
}

// narrowFn builds a 16-bit float kernel: decode to float32, compute,
// encode back. This matches how bfloat16 hardware pipelines operate.
func narrowFn[T DType](op binOp, dec func(T) float32, enc func(float32) T) func(T, T) T {
	fn := floatFn[float32](op)
	return func(x, y T) T { return enc(fn(dec(x), dec(y))) }
}

// ipow computes integer exponentiation by squaring. Negative exponents
// truncate toward zero: 1 for base 1, ±1 for base -1, otherwise 0.
// base == 0 with a negative exponent is rejected before the kernel runs.
func ipow[T signedInt](base T, exp int64) T {
	if exp < 0 {
		switch {
		case base == 1:
			return 1
		case base == -1:
			if exp%2 == 0 {
				return 1
			}
			return -1
		default:
			return 0
		}
	}
	var result T = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func upow[T unsignedInt](base T, exp uint64) T {
	var result T = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
