// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/backend/cpu"
	"github.com/ember-ml/ember/bfloat16"
	"github.com/ember-ml/ember/tensor"
)

func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.Backend)(nil)
}

func TestCreationFunctions(t *testing.T) {
	backend := cpu.New()

	z := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
	assert.True(t, z.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, z.DType())
	assert.Equal(t, float32(0), z.At(1, 2))

	o := tensor.Ones[float64](tensor.Shape{2}, backend)
	assert.Equal(t, float64(1), o.At(0))

	f := tensor.Full[int32](tensor.Shape{3}, 7, backend)
	assert.Equal(t, int32(7), f.At(2))

	eye := tensor.Eye[float32](3, backend)
	assert.Equal(t, float32(1), eye.At(1, 1))
	assert.Equal(t, float32(0), eye.At(0, 2))

	a := tensor.Arange[int64](2, 6, backend)
	assert.True(t, a.Shape().Equal(tensor.Shape{4}))
	assert.Equal(t, int64(5), a.At(3))

	l := tensor.Linspace[float64](0, 1, 5, backend)
	assert.Equal(t, float64(0.25), l.At(1))
	assert.Equal(t, float64(1), l.At(4))
}

func TestRandnSeedReproducible(t *testing.T) {
	backend := cpu.New()

	a := tensor.Randn[float64](tensor.Shape{16}, backend, 42)
	b := tensor.Randn[float64](tensor.Shape{16}, backend, 42)
	c := tensor.Randn[float64](tensor.Shape{16}, backend, 43)

	assert.Equal(t, a.Data(), b.Data())
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestFromSliceAndArithmetic(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	y, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	// (2, 3) + (3,) broadcasts the row.
	z := x.Add(y)
	assert.True(t, z.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, float32(11), z.At(0, 0))
	assert.Equal(t, float32(36), z.At(1, 2))

	_, err = tensor.FromSlice([]float32{1, 2}, tensor.Shape{3}, backend)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestViewChainAliasing(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	v := x.Reshape(tensor.Shape{6}).Slice([]int{2}, []int{5})
	assert.True(t, v.IsView())
	assert.True(t, v.Shape().Equal(tensor.Shape{3}))
	assert.Equal(t, float32(3), v.At(0))

	// Writing through the chained view reaches the origin.
	v.Set(99, 0)
	assert.Equal(t, float32(99), x.At(0, 2))
}

func TestTransposeThenContiguous(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	xt := x.Transpose()
	assert.False(t, xt.IsContiguous())

	c := xt.Contiguous()
	assert.True(t, c.IsContiguous())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, c.Data()[:6])

	// The materialized copy no longer aliases the origin.
	c.Set(100, 0, 0)
	assert.Equal(t, float32(1), x.At(0, 0))
}

func TestReductionsViaMethods(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	assert.Equal(t, float64(21), x.Sum().Item())
	assert.Equal(t, float64(3.5), x.Mean().Item())
	assert.Equal(t, float64(6), x.Max().Item())
	assert.Equal(t, float64(1), x.Min().Item())
	assert.Equal(t, float64(3.5), x.Median().Item())

	sd := x.SumDim(-1, true)
	assert.True(t, sd.Shape().Equal(tensor.Shape{2, 1}))
	assert.Equal(t, float64(6), sd.At(0, 0))
	assert.Equal(t, float64(15), sd.At(1, 0))

	v := x.VarianceDim(1, 0, false)
	assert.InDelta(t, 2.0/3.0, v.At(0), 1e-12)
}

func TestCastTo(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1.7, -2.7, 3.0}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	i := tensor.CastTo[int32](x)
	assert.Equal(t, tensor.Int32, i.DType())
	assert.Equal(t, []int32{1, -2, 3}, i.Data()[:3])

	bf := tensor.CastTo[bfloat16.BFloat16](x)
	assert.Equal(t, tensor.BFloat16, bf.DType())
	assert.Equal(t, bfloat16.FromFloat32(3), bf.At(2))
}

func TestNarrowFloatTensors(t *testing.T) {
	backend := cpu.New()

	x := tensor.Full[bfloat16.BFloat16](tensor.Shape{4}, bfloat16.FromFloat32(2), backend)
	y := tensor.Ones[bfloat16.BFloat16](tensor.Shape{4}, backend)

	z := x.Mul(y).Add(x)
	assert.Equal(t, float32(4), z.At(1).Float32())
}

func TestCheckGradientPublicSurface(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float64{0.4, -1.1, 2.3, 0.9}, tensor.Shape{4}, backend)
	require.NoError(t, err)

	grad, err := tensor.NewRaw(tensor.Shape{}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	grad.AsFloat64()[0] = 1

	forward := func(raw *tensor.RawTensor) (*tensor.RawTensor, error) {
		return backend.Mean(raw), nil
	}
	err = tensor.CheckGradient(forward, tensor.MeanBackward, x.Raw(), grad, 0, 1e-6, 1e-9)
	assert.NoError(t, err)
}

func TestErrorTaxonomy(t *testing.T) {
	_, err := tensor.NewRaw(tensor.Shape{0}, tensor.Float32, tensor.CPU)
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))

	_, _, err = tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{4, 5})
	assert.True(t, errors.Is(err, tensor.ErrIncompatibleShapes))
}

func TestItemPanicsOnNonScalar(t *testing.T) {
	backend := cpu.New()
	x := tensor.Zeros[float32](tensor.Shape{2}, backend)
	assert.Panics(t, func() { x.Item() })
}
