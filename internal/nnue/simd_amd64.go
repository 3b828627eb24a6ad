//go:build amd64 && goexperiment.simd

package nnue

import "simd"

// dotInt32Int8 is the vectorized counterpart of the scalar reference
// implementation in simd_scalar.go. It processes the inner product in
// lanes of simd.Int32x8 and must produce bit-identical results to the
// scalar path for any input, since it is only a performance variant, not an
// alternate arithmetic.
func dotInt32Int8(a []int32, b []int8) int32 {
	const lanes = 8
	n := len(a)
	i := 0
	var acc simd.Int32x8
	for ; i+lanes <= n; i += lanes {
		av := simd.LoadInt32x8Slice(a[i : i+lanes])
		var bw [lanes]int32
		for k := 0; k < lanes; k++ {
			bw[k] = int32(b[i+k])
		}
		bv := simd.LoadInt32x8Slice(bw[:])
		acc = acc.Add(av.Mul(bv))
	}
	var lane [lanes]int32
	acc.StoreSlice(lane[:])
	var sum int32
	for _, v := range lane {
		sum += v
	}
	for ; i < n; i++ {
		sum += a[i] * int32(b[i])
	}
	return sum
}
