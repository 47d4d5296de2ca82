package tensor

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/x448/float16"

	"github.com/ember-ml/ember/bfloat16"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err)
	}
	// Storage from make() is already zeroed.
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, oneValue[T](), b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Eye creates a 2D identity matrix of size n by n.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, n}, b)
	one := oneValue[T]()
	for i := 0; i < n; i++ {
		t.Set(one, i, i)
	}
	return t
}

// oneValue is the multiplicative identity of T (true for bool).
func oneValue[T DType]() T {
	var dummy T
	var one any
	switch any(dummy).(type) {
	case int8:
		one = int8(1)
	case int16:
		one = int16(1)
	case int32:
		one = int32(1)
	case int64:
		one = int64(1)
	case uint8:
		one = uint8(1)
	case uint16:
		one = uint16(1)
	case uint32:
		one = uint32(1)
	case uint64:
		one = uint64(1)
	case bool:
		one = true
	case float16.Float16:
		one = float16.Fromfloat32(1)
	case bfloat16.BFloat16:
		one = bfloat16.FromFloat32(1)
	case float32:
		one = float32(1)
	case float64:
		one = float64(1)
	default:
		panic("unsupported element type")
	}
	return one.(T)
}

// Arange creates a 1D tensor counting from start to end (exclusive) in
// steps of one. Not defined for bool.
//
// Example:
//
//	t := tensor.Arange[int32](0, 10, backend) // [0, 1, 2, ..., 9]
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	n := int(math.Ceil(elementToFloat64(end) - elementToFloat64(start)))
	if n <= 0 {
		panic(fmt.Sprintf("arange: end %v must be greater than start %v", end, start))
	}

	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	s := elementToFloat64(start)
	for i := range data {
		data[i] = elementFromFloat64[T](s + float64(i))
	}
	return t
}

// Linspace creates a 1D tensor of num evenly spaced values from start to
// stop inclusive. Float element types only.
func Linspace[T DType, B Backend](start, stop float64, num int, b B) *Tensor[T, B] {
	if num < 1 {
		panic(fmt.Sprintf("linspace: num %d must be positive", num))
	}
	var dummy T
	if !inferDataType(dummy).IsFloat() {
		panic(fmt.Sprintf("linspace: %s is not a float type", inferDataType(dummy)))
	}

	t := Zeros[T, B](Shape{num}, b)
	data := t.Data()
	if num == 1 {
		data[0] = elementFromFloat64[T](start)
		return t
	}
	step := (stop - start) / float64(num-1)
	for i := range data {
		data[i] = elementFromFloat64[T](start + float64(i)*step)
	}
	// Land exactly on stop despite accumulated rounding.
	data[num-1] = elementFromFloat64[T](stop)
	return t
}

// Randn creates a tensor of samples from the standard normal
// distribution via the Box-Muller transform. float32 and float64 only.
// An optional seed gives a reproducible stream; generators are local, so
// concurrent callers never share state.
//
// Example:
//
//	t := tensor.Randn[float32](Shape{100, 100}, backend, 42)
func Randn[T DType, B Backend](shape Shape, b B, seed ...int64) *Tensor[T, B] {
	var src rand.Source
	if len(seed) > 0 {
		src = rand.NewSource(seed[0])
	} else {
		src = rand.NewSource(rand.Int63()) //nolint:gosec // statistical sampling, not crypto
	}
	rng := rand.New(src) //nolint:gosec // statistical sampling, not crypto

	t := Zeros[T, B](shape, b)
	var dummy T
	switch any(dummy).(type) {
	case float32:
		fillNormal(any(t.Data()).([]float32), rng)
	case float64:
		fillNormal(any(t.Data()).([]float64), rng)
	default:
		panic("randn only supports float32 and float64")
	}
	return t
}

func fillNormal[T floatType](data []T, rng *rand.Rand) {
	for i := 0; i < len(data); i += 2 {
		u1 := rng.Float64()
		u2 := rng.Float64()
		r := math.Sqrt(-2 * math.Log(1-u1)) // 1-u1 avoids log(0)
		data[i] = T(r * math.Cos(2*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = T(r * math.Sin(2*math.Pi*u2))
		}
	}
}

// elementToFloat64 and elementFromFloat64 move single elements through
// float64, mirroring what Cast does for whole tensors.
func elementToFloat64[T DType](v T) float64 {
	switch x := any(v).(type) {
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float16.Float16:
		return float64(x.Float32())
	case bfloat16.BFloat16:
		return float64(x.Float32())
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		panic("unsupported element type")
	}
}

func elementFromFloat64[T DType](v float64) T {
	var dummy T
	var out any
	switch any(dummy).(type) {
	case int8:
		out = int8(v)
	case int16:
		out = int16(v)
	case int32:
		out = int32(v)
	case int64:
		out = int64(v)
	case uint8:
		out = uint8(v)
	case uint16:
		out = uint16(v)
	case uint32:
		out = uint32(v)
	case uint64:
		out = uint64(v)
	case float16.Float16:
		out = float16.Fromfloat32(float32(v))
	case bfloat16.BFloat16:
		out = bfloat16.FromFloat64(v)
	case float32:
		out = float32(v)
	case float64:
		out = v
	default:
		panic("unsupported element type")
	}
	return out.(T)
}
