package tensor

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrDTypeMismatch,
		ErrIncompatibleShapes,
		ErrShapeMismatch,
		ErrAxisOutOfRange,
		ErrIndexOutOfRange,
		ErrDivisionByZero,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v must not match %v", a, b)
			}
		}
	}
}

func TestSentinelErrorsMatchThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("add: %w", ErrIncompatibleShapes)
	if !errors.Is(wrapped, ErrIncompatibleShapes) {
		t.Error("wrapped sentinel should match with errors.Is")
	}
	if errors.Is(wrapped, ErrShapeMismatch) {
		t.Error("wrapped sentinel must not match a different sentinel")
	}
}
