// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bfloat16

import (
	"math"
	"testing"
)

func TestFromFloat32Exact(t *testing.T) {
	// Values with at most 8 significant bits survive the round trip
	// exactly.
	cases := []float32{0, 1, -1, 0.5, 2, -2, 128, -128, 1.0 / 128.0, 0.25, 3, 100, -0.375}
	for _, v := range cases {
		got := FromFloat32(v).Float32()
		if got != v {
			t.Errorf("FromFloat32(%v).Float32() = %v, want exact round trip", v, got)
		}
	}
}

func TestFromFloat32RoundToNearestEven(t *testing.T) {
	cases := []struct {
		name string
		in   uint32
		want BFloat16
	}{
		// Mantissa tail exactly half, even low bit: round down.
		{"half_even_down", 0x3F800000 | 0x8000, 0x3F80},
		// Mantissa tail exactly half, odd low bit: round up to even.
		{"half_odd_up", 0x3F810000 | 0x8000, 0x3F82},
		// Tail just above half always rounds up.
		{"above_half_up", 0x3F800000 | 0x8001, 0x3F81},
		// Tail just below half always rounds down.
		{"below_half_down", 0x3F800000 | 0x7FFF, 0x3F80},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromFloat32(math.Float32frombits(tc.in))
			if got != tc.want {
				t.Errorf("FromFloat32(0x%08X) = 0x%04X, want 0x%04X", tc.in, uint16(got), uint16(tc.want))
			}
		})
	}
}

func TestRoundingOverflowToInfinity(t *testing.T) {
	// The largest finite float32 rounds past MaxValue into +Inf; the
	// carry propagates from mantissa into exponent.
	got := FromFloat32(math.MaxFloat32)
	if got != PositiveInfinity {
		t.Errorf("FromFloat32(MaxFloat32) = 0x%04X, want +Inf (0x%04X)", uint16(got), uint16(PositiveInfinity))
	}
	got = FromFloat32(-math.MaxFloat32)
	if got != NegativeInfinity {
		t.Errorf("FromFloat32(-MaxFloat32) = 0x%04X, want -Inf (0x%04X)", uint16(got), uint16(NegativeInfinity))
	}
}

func TestSpecials(t *testing.T) {
	if !FromFloat32(float32(math.NaN())).IsNaN() {
		t.Error("NaN should convert to NaN")
	}
	// NaN payloads collapse to the quiet pattern, sign preserved.
	negNaN := math.Float32frombits(0xFFC00001)
	if got := FromFloat32(negNaN); got != (QuietNaN | BFloat16(signMask)) {
		t.Errorf("negative NaN = 0x%04X, want sign-preserving quiet NaN", uint16(got))
	}

	if got := FromFloat32(float32(math.Inf(1))); got != PositiveInfinity {
		t.Errorf("+Inf = 0x%04X", uint16(got))
	}
	if got := FromFloat32(float32(math.Inf(-1))); got != NegativeInfinity {
		t.Errorf("-Inf = 0x%04X", uint16(got))
	}
	if !PositiveInfinity.IsInf(1) || !NegativeInfinity.IsInf(-1) {
		t.Error("IsInf sign checks failed")
	}
	if !PositiveInfinity.IsInf(0) || !NegativeInfinity.IsInf(0) {
		t.Error("IsInf(0) should match either infinity")
	}
}

func TestSignedZero(t *testing.T) {
	pos := FromFloat32(0)
	neg := FromFloat32(float32(math.Copysign(0, -1)))
	if !pos.IsZero() || !neg.IsZero() {
		t.Error("both zeros should report IsZero")
	}
	if pos.Signbit() || !neg.Signbit() {
		t.Error("zero sign bits wrong")
	}
	// Signed zeros compare equal as values.
	if !pos.Equal(neg) {
		t.Error("+0 and -0 should be Equal")
	}
}

func TestSubnormals(t *testing.T) {
	if !SmallestNonzero.IsSubnormal() {
		t.Error("SmallestNonzero should be subnormal")
	}
	// Smallest subnormal is 2^-133.
	want := float32(math.Ldexp(1, -133))
	if got := SmallestNonzero.Float32(); got != want {
		t.Errorf("SmallestNonzero.Float32() = %g, want %g", got, want)
	}
	if FromFloat32(0).IsSubnormal() {
		t.Error("zero is not subnormal")
	}
}

func TestComparisons(t *testing.T) {
	one := FromFloat32(1)
	two := FromFloat32(2)
	nan := QuietNaN

	if !one.Less(two) || two.Less(one) {
		t.Error("1 < 2 ordering wrong")
	}
	if nan.Equal(nan) {
		t.Error("NaN must not equal itself")
	}
	if nan.Less(one) || one.Less(nan) {
		t.Error("NaN must not order against numbers")
	}
}

func TestBitsRoundTrip(t *testing.T) {
	for _, bits := range []uint16{0x0000, 0x3F80, 0xBF80, 0x7F80, 0xFF80, 0x7FC0, 0x0001, 0x7F7F} {
		if got := FromBits(bits).Bits(); got != bits {
			t.Errorf("FromBits(0x%04X).Bits() = 0x%04X", bits, got)
		}
	}
}

func TestFromFloat64(t *testing.T) {
	// Conversion through float64 must not double-round differently for
	// representable values.
	for _, v := range []float64{0, 1, -1, 0.5, 3.0, 1e30, -1e-30} {
		want := FromFloat32(float32(v))
		if got := FromFloat64(v); got != want {
			t.Errorf("FromFloat64(%v) = 0x%04X, want 0x%04X", v, uint16(got), uint16(want))
		}
	}
	if !FromFloat64(math.NaN()).IsNaN() {
		t.Error("FromFloat64(NaN) should be NaN")
	}
}

func TestString(t *testing.T) {
	if s := FromFloat32(1.5).String(); s != "1.5" {
		t.Errorf("String() = %q, want %q", s, "1.5")
	}
}
