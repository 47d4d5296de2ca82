// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bfloat16 implements the 16-bit brain floating point format:
// 1 sign bit, 8 exponent bits, 7 mantissa bits. It shares the exponent
// width and bias of IEEE-754 binary32, so every BFloat16 widens to a
// float32 exactly and narrowing only drops the low 16 mantissa bits.
package bfloat16

import (
	"math"
	"strconv"
)

// BFloat16 is a brain floating point value represented as raw bits.
type BFloat16 uint16

const (
	signMask     = 0x8000
	exponentMask = 0x7F80
	mantissaMask = 0x007F

	// PositiveInfinity and NegativeInfinity are the BFloat16 infinities.
	PositiveInfinity = BFloat16(0x7F80)
	NegativeInfinity = BFloat16(0xFF80)

	// QuietNaN is the canonical NaN produced when narrowing a float32 NaN.
	QuietNaN = BFloat16(0x7FC0)

	// SmallestNonzero is the smallest positive subnormal (2^-133).
	SmallestNonzero = BFloat16(0x0001)

	// MaxValue is the largest finite BFloat16 (about 3.3895e38).
	MaxValue = BFloat16(0x7F7F)
)

// FromFloat32 narrows a float32 to BFloat16 with round-to-nearest-even
// on the 16 dropped mantissa bits.
//
// ±0, ±Inf and the NaN property are preserved exactly. Rounding a finite
// value whose magnitude exceeds MaxValue carries into the exponent and
// saturates to the corresponding infinity, matching binary32 semantics.
func FromFloat32(x float32) BFloat16 {
	bits := math.Float32bits(x)
	if x != x {
		// Keep the sign, force a quiet NaN so rounding cannot
		// carry the pattern into an infinity.
		return BFloat16(uint16(bits>>16)&signMask) | QuietNaN
	}
	// Round to nearest, ties to even: add 0x7FFF plus the lowest kept bit.
	bits += 0x7FFF + (bits >> 16 & 1)
	return BFloat16(bits >> 16)
}

// FromFloat64 narrows a float64 via float32.
func FromFloat64(x float64) BFloat16 {
	return FromFloat32(float32(x))
}

// Float32 widens to float32. This direction is always exact.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// FromBits reinterprets raw bits as a BFloat16.
func FromBits(b uint16) BFloat16 {
	return BFloat16(b)
}

// Bits returns the raw bit pattern.
func (f BFloat16) Bits() uint16 {
	return uint16(f)
}

// Signbit reports whether the sign bit is set (negative or -0 or -NaN).
func (f BFloat16) Signbit() bool {
	return f&signMask != 0
}

// IsZero reports whether f is +0 or -0.
func (f BFloat16) IsZero() bool {
	return f&^signMask == 0
}

// IsNaN reports whether f is a NaN: maximum exponent, nonzero mantissa.
func (f BFloat16) IsNaN() bool {
	return f&exponentMask == exponentMask && f&mantissaMask != 0
}

// IsInf reports whether f matches the given infinity sign.
// sign > 0 tests +Inf, sign < 0 tests -Inf, sign == 0 tests either.
func (f BFloat16) IsInf(sign int) bool {
	return (sign >= 0 && f == PositiveInfinity) ||
		(sign <= 0 && f == NegativeInfinity)
}

// IsSubnormal reports whether f is subnormal: zero exponent, nonzero
// mantissa.
func (f BFloat16) IsSubnormal() bool {
	return f&exponentMask == 0 && f&mantissaMask != 0
}

// Inf returns an infinity with the sign of the argument; sign >= 0 gives
// positive infinity.
func Inf(sign int) BFloat16 {
	if sign < 0 {
		return NegativeInfinity
	}
	return PositiveInfinity
}

// Equal compares by numeric value: -0 equals +0, NaN equals nothing
// including itself.
func (f BFloat16) Equal(other BFloat16) bool {
	return f.Float32() == other.Float32()
}

// Less compares by numeric value. Any comparison involving NaN is false.
func (f BFloat16) Less(other BFloat16) bool {
	return f.Float32() < other.Float32()
}

// String formats the decoded float32 value.
func (f BFloat16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'f', -1, 32)
}
