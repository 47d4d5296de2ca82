package tensor

import "errors"

// Sentinel errors for the tensor package. Operations wrap these with
// fmt.Errorf("...: %w", ...) and operation-specific context, so callers
// match the kind with errors.Is while the message carries the details.
var (
	// ErrDTypeMismatch reports an operation applied to an unsupported
	// data type, or to operands whose data types disagree.
	ErrDTypeMismatch = errors.New("dtype mismatch")

	// ErrIncompatibleShapes reports two shapes that cannot be broadcast
	// together.
	ErrIncompatibleShapes = errors.New("incompatible shapes")

	// ErrShapeMismatch reports a shape that does not fit the operation,
	// such as a reshape with the wrong element count or a gradient shaped
	// unlike the forward output.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrAxisOutOfRange reports an axis outside [-rank, rank).
	ErrAxisOutOfRange = errors.New("axis out of range")

	// ErrIndexOutOfRange reports an element index, slice bound or
	// percentile outside its valid range.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrDivisionByZero reports integer division or modulo by a zero
	// element, and variance divisors N-ddof that are not positive.
	ErrDivisionByZero = errors.New("division by zero")
)
