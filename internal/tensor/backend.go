package tensor

// Backend is the compute interface behind the typed Tensor API. A backend
// owns kernel dispatch for one device; the RawTensor layer underneath
// returns errors, the backend surfaces programmer errors as panics so the
// typed API stays fluent.
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor
	Pow(a, b *RawTensor) *RawTensor
	Mod(a, b *RawTensor) *RawTensor

	// Shape operations (zero-copy views where possible)
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Transpose(x *RawTensor, axes ...int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Slice(x *RawTensor, starts, ends []int) *RawTensor
	Contiguous(x *RawTensor) *RawTensor

	// Type conversion
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Reductions: scalar over all elements, or along one axis
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Mean(x *RawTensor) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Max(x *RawTensor) *RawTensor
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Min(x *RawTensor) *RawTensor
	MinDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Variance(x *RawTensor, ddof int) *RawTensor
	VarianceDim(x *RawTensor, dim, ddof int, keepDim bool) *RawTensor
	Std(x *RawTensor, ddof int) *RawTensor
	StdDim(x *RawTensor, dim, ddof int, keepDim bool) *RawTensor
	Median(x *RawTensor) *RawTensor
	MedianDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Percentile(x *RawTensor, p float64) *RawTensor
	PercentileDim(x *RawTensor, p float64, dim int, keepDim bool) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
