//go:build !amd64 || !goexperiment.simd

package nnue

// dotInt32Int8 computes sum(a[i]*int32(b[i])) for i in range. This is the
// portable reference implementation; a vectorized variant with matching
// arithmetic lives in simd_amd64.go, gated to platforms where Go's
// experimental SIMD package is available.
func dotInt32Int8(a []int32, b []int8) int32 {
	var sum int32
	for i := range a {
		sum += a[i] * int32(b[i])
	}
	return sum
}
