package tensor

import (
	"testing"

	"github.com/ember-ml/ember/bfloat16"
)

func TestCastFloatToInt(t *testing.T) {
	x := fromFloat32(t, []float32{1.9, -1.9, 0.5, 100}, Shape{4})

	y, err := Cast(x, Int32)
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	// Conversion truncates toward zero.
	for i, want := range []int32{1, -1, 0, 100} {
		if y.AsInt32()[i] != want {
			t.Errorf("y[%d] = %v, want %v", i, y.AsInt32()[i], want)
		}
	}
}

func TestCastIntToFloat(t *testing.T) {
	x, _ := NewRaw(Shape{3}, Int64, CPU)
	copy(x.AsInt64(), []int64{-5, 0, 7})

	y, err := Cast(x, Float64)
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	for i, want := range []float64{-5, 0, 7} {
		if y.AsFloat64()[i] != want {
			t.Errorf("y[%d] = %v, want %v", i, y.AsFloat64()[i], want)
		}
	}
}

func TestCastBoolConversions(t *testing.T) {
	x := fromFloat32(t, []float32{0, 1.5, -2, 0}, Shape{4})
	b, err := Cast(x, Bool)
	if err != nil {
		t.Fatalf("cast to bool failed: %v", err)
	}
	for i, want := range []bool{false, true, true, false} {
		if b.AsBool()[i] != want {
			t.Errorf("b[%d] = %v, want %v", i, b.AsBool()[i], want)
		}
	}

	back, err := Cast(b, Int8)
	if err != nil {
		t.Fatalf("cast from bool failed: %v", err)
	}
	for i, want := range []int8{0, 1, 1, 0} {
		if back.AsInt8()[i] != want {
			t.Errorf("back[%d] = %v, want %v", i, back.AsInt8()[i], want)
		}
	}
}

func TestCastToNarrowFloats(t *testing.T) {
	x := fromFloat32(t, []float32{1, 0.5, 3.140625}, Shape{3})

	bf, err := Cast(x, BFloat16)
	if err != nil {
		t.Fatalf("cast to bfloat16 failed: %v", err)
	}
	for i := range x.AsFloat32() {
		want := bfloat16.FromFloat32(x.AsFloat32()[i])
		if bf.AsBFloat16()[i] != want {
			t.Errorf("bf[%d] = 0x%04X, want 0x%04X", i, bf.AsBFloat16()[i].Bits(), want.Bits())
		}
	}

	h, err := Cast(x, Float16)
	if err != nil {
		t.Fatalf("cast to float16 failed: %v", err)
	}
	if got := h.AsFloat16()[0].Float32(); got != 1 {
		t.Errorf("h[0] = %v, want 1", got)
	}
}

func TestCastSameDTypeSharesBuffer(t *testing.T) {
	x := fromFloat32(t, []float32{1, 2}, Shape{2})
	y, err := Cast(x, Float32)
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	y.AsFloat32()[0] = 9
	if x.AsFloat32()[0] != 9 {
		t.Error("same-dtype cast should be a buffer-sharing clone")
	}
}

func TestCastThroughView(t *testing.T) {
	// Casting a transposed view walks the strides, so the result is the
	// row-major order of the view, not of the underlying buffer.
	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	xt, _ := Transpose(x)

	y, err := Cast(xt, Float64)
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	want := []float64{1, 4, 2, 5, 3, 6}
	for i, v := range want {
		if y.AsFloat64()[i] != v {
			t.Errorf("y[%d] = %v, want %v", i, y.AsFloat64()[i], v)
		}
	}
}
