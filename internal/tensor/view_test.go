package tensor

import (
	"errors"
	"testing"
)

func fromFloat32(t *testing.T, data []float32, shape Shape) *RawTensor {
	t.Helper()
	raw, err := NewRaw(shape, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

func TestReshapeIsView(t *testing.T) {
	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})

	y, err := Reshape(x, Shape{3, 2})
	if err != nil {
		t.Fatalf("reshape failed: %v", err)
	}
	if !y.IsView() {
		t.Error("reshape result should be a view")
	}
	if !y.Shape().Equal(Shape{3, 2}) {
		t.Errorf("reshape shape = %v, want [3 2]", y.Shape())
	}

	// Writing through the view mutates the origin.
	y.AsFloat32()[0] = 99
	if x.AsFloat32()[0] != 99 {
		t.Error("write through reshape view should reach origin")
	}
}

func TestReshapeErrors(t *testing.T) {
	x := fromFloat32(t, make([]float32, 6), Shape{2, 3})

	_, err := Reshape(x, Shape{4, 2})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("element count mismatch: got %v, want ErrShapeMismatch", err)
	}

	// A transposed (non-contiguous) view cannot be reshaped.
	tr, err := Transpose(x)
	if err != nil {
		t.Fatalf("transpose failed: %v", err)
	}
	_, err = Reshape(tr, Shape{6})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("non-contiguous reshape: got %v, want ErrShapeMismatch", err)
	}
}

func TestTransposeDefaultReverses(t *testing.T) {
	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})

	y, err := Transpose(x)
	if err != nil {
		t.Fatalf("transpose failed: %v", err)
	}
	if !y.Shape().Equal(Shape{3, 2}) {
		t.Fatalf("transpose shape = %v, want [3 2]", y.Shape())
	}
	if y.IsContiguous() {
		t.Error("2D transpose should not be contiguous")
	}

	// y[i][j] == x[j][i], checked through strides.
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			yFlat, _ := y.FlatIndex(i, j)
			xFlat, _ := x.FlatIndex(j, i)
			if y.AsFloat32()[yFlat] != x.AsFloat32()[xFlat] {
				t.Errorf("y[%d,%d] != x[%d,%d]", i, j, j, i)
			}
		}
	}
}

func TestTransposeExplicitAxes(t *testing.T) {
	x, _ := NewRaw(Shape{2, 3, 4}, Float32, CPU)

	y, err := Transpose(x, 2, 0, 1)
	if err != nil {
		t.Fatalf("transpose failed: %v", err)
	}
	if !y.Shape().Equal(Shape{4, 2, 3}) {
		t.Errorf("transpose shape = %v, want [4 2 3]", y.Shape())
	}

	_, err = Transpose(x, 0, 1)
	if !errors.Is(err, ErrAxisOutOfRange) {
		t.Errorf("short axes: got %v, want ErrAxisOutOfRange", err)
	}
	_, err = Transpose(x, 0, 0, 1)
	if !errors.Is(err, ErrAxisOutOfRange) {
		t.Errorf("duplicate axis: got %v, want ErrAxisOutOfRange", err)
	}
	_, err = Transpose(x, 0, 1, 3)
	if !errors.Is(err, ErrAxisOutOfRange) {
		t.Errorf("axis out of range: got %v, want ErrAxisOutOfRange", err)
	}
}

func TestSqueezeUnsqueeze(t *testing.T) {
	x, _ := NewRaw(Shape{2, 1, 3}, Float32, CPU)

	y, err := Squeeze(x, 1)
	if err != nil {
		t.Fatalf("squeeze failed: %v", err)
	}
	if !y.Shape().Equal(Shape{2, 3}) {
		t.Errorf("squeeze shape = %v, want [2 3]", y.Shape())
	}

	_, err = Squeeze(x, 0)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("squeeze of size-2 axis: got %v, want ErrShapeMismatch", err)
	}

	z, err := Unsqueeze(y, -1)
	if err != nil {
		t.Fatalf("unsqueeze failed: %v", err)
	}
	if !z.Shape().Equal(Shape{2, 3, 1}) {
		t.Errorf("unsqueeze shape = %v, want [2 3 1]", z.Shape())
	}

	z2, err := Unsqueeze(y, 0)
	if err != nil {
		t.Fatalf("unsqueeze failed: %v", err)
	}
	if !z2.Shape().Equal(Shape{1, 2, 3}) {
		t.Errorf("unsqueeze shape = %v, want [1 2 3]", z2.Shape())
	}

	_, err = Unsqueeze(y, 5)
	if !errors.Is(err, ErrAxisOutOfRange) {
		t.Errorf("unsqueeze out of range: got %v, want ErrAxisOutOfRange", err)
	}
}

func TestSqueezeViewAliases(t *testing.T) {
	x := fromFloat32(t, []float32{1, 2, 3}, Shape{1, 3})
	y, err := Squeeze(x, 0)
	if err != nil {
		t.Fatalf("squeeze failed: %v", err)
	}
	y.AsFloat32()[1] = 42
	if x.AsFloat32()[1] != 42 {
		t.Error("write through squeeze view should reach origin")
	}
}

func TestSlice(t *testing.T) {
	// 3x4 matrix, rows 1..2 and columns 1..3.
	data := make([]float32, 12)
	for i := range data {
		data[i] = float32(i)
	}
	x := fromFloat32(t, data, Shape{3, 4})

	y, err := Slice(x, []int{1, 1}, []int{3, 3})
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if !y.Shape().Equal(Shape{2, 2}) {
		t.Fatalf("slice shape = %v, want [2 2]", y.Shape())
	}

	want := [][]float32{{5, 6}, {9, 10}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			flat, _ := y.FlatIndex(i, j)
			if got := y.AsFloat32()[flat]; got != want[i][j] {
				t.Errorf("slice[%d,%d] = %v, want %v", i, j, got, want[i][j])
			}
		}
	}

	// Writes alias the original.
	flat, _ := y.FlatIndex(0, 0)
	y.AsFloat32()[flat] = -1
	if x.AsFloat32()[5] != -1 {
		t.Error("write through slice view should reach origin")
	}
}

func TestSliceErrors(t *testing.T) {
	x, _ := NewRaw(Shape{3, 4}, Float32, CPU)

	_, err := Slice(x, []int{0}, []int{1})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("wrong arity: got %v, want ErrIndexOutOfRange", err)
	}
	_, err = Slice(x, []int{0, 0}, []int{4, 4})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("end beyond size: got %v, want ErrIndexOutOfRange", err)
	}
	_, err = Slice(x, []int{2, 0}, []int{2, 4})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("empty range: got %v, want ErrIndexOutOfRange", err)
	}
}

func TestContiguousMaterializesViews(t *testing.T) {
	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	tr, _ := Transpose(x)

	y, err := Contiguous(tr)
	if err != nil {
		t.Fatalf("contiguous failed: %v", err)
	}
	if !y.IsContiguous() || y.IsView() {
		t.Error("contiguous result should be an owned canonical tensor")
	}

	// Row-major of the transpose: [1 4 2 5 3 6].
	want := []float32{1, 4, 2, 5, 3, 6}
	got := y.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("contiguous data = %v, want %v", got[:6], want)
		}
	}

	// The copy is independent of the origin.
	y.AsFloat32()[0] = 100
	if x.AsFloat32()[0] == 100 {
		t.Error("contiguous copy must not alias the origin")
	}

	// Already-contiguous input shares the buffer through a fresh handle.
	same, err := Contiguous(x)
	if err != nil {
		t.Fatalf("contiguous failed: %v", err)
	}
	if same == x {
		t.Error("contiguous should return a separately releasable handle")
	}
	same.AsFloat32()[1] = 50
	if x.AsFloat32()[1] != 50 {
		t.Error("contiguous of a contiguous tensor should share the buffer")
	}
}

func TestContiguousHandleReleaseKeepsOriginAlive(t *testing.T) {
	x := fromFloat32(t, []float32{1, 2, 3}, Shape{3})

	c, err := Contiguous(x)
	if err != nil {
		t.Fatalf("contiguous failed: %v", err)
	}
	c.Release()

	if !x.IsUnique() {
		t.Error("origin should be the sole owner again after the handle is released")
	}
	if x.AsFloat32()[0] != 1 {
		t.Error("origin buffer must survive releasing the contiguous handle")
	}
}
