package aecm

import "math"

// RealFFT implements the forward/inverse real FFT contract the engine
// consumes: given order k with 1 < k <= 10, N = 2^k, Forward transforms N
// real samples into a packed conjugate-symmetric spectrum of N+2 values
// arranged [R0, 0, R1, I1, ..., R(N/2-1), I(N/2-1), R(N/2), 0] and returns a
// scale exponent the caller uses to recover physical magnitudes; Inverse is
// the dual.
//
// No FFT library appears anywhere in the reference corpus this engine is
// otherwise grounded on, so this is a from-scratch fixed-point radix-2
// decimation-in-time transform rather than a port of any one source. To
// keep every butterfly stage within int32 range without per-sample
// amplitude tracking, each of the k stages divides its outputs by 2; the
// transform is therefore always scaled down by exactly k bits regardless
// of input amplitude (a "block floating-point" style fixed scale, not a
// dynamically chosen one), so Forward and Inverse always report scale==k.
// This sacrifices a little precision on quiet signals in exchange for a
// deterministic, input-independent scale — which BufferFarend/Process's
// callers rely on for run-to-run determinism (the comfort-noise LCG being
// the only other source of per-call variability).
type RealFFT struct {
	order int
	n     int
	cos   []float64
	sin   []float64
}

// NewRealFFT constructs a transform of order k, 1 < k <= 10.
func NewRealFFT(order int) *RealFFT {
	if order <= 1 || order > 10 {
		panic("aecm: RealFFT order out of range")
	}
	n := 1 << uint(order)
	f := &RealFFT{order: order, n: n, cos: make([]float64, n/2), sin: make([]float64, n/2)}
	for i := 0; i < n/2; i++ {
		angle := -2 * math.Pi * float64(i) / float64(n)
		f.cos[i] = math.Cos(angle)
		f.sin[i] = math.Sin(angle)
	}
	return f
}

// N returns the transform length (2^order).
func (f *RealFFT) N() int { return f.n }

// Forward transforms N real int16 samples into a packed N+2 spectrum and
// the fixed scale exponent (== order).
func (f *RealFFT) Forward(x []int16) ([]int16, int) {
	if len(x) != f.n {
		panic("aecm: RealFFT.Forward input length mismatch")
	}
	re := make([]int32, f.n)
	im := make([]int32, f.n)
	for i, v := range x {
		re[i] = int32(v)
	}
	f.transform(re, im, false)

	packed := make([]int16, f.n+2)
	packed[0] = clampInt16(re[0])
	packed[1] = 0
	for k := 1; k < f.n/2; k++ {
		packed[2*k] = clampInt16(re[k])
		packed[2*k+1] = clampInt16(im[k])
	}
	packed[f.n] = clampInt16(re[f.n/2])
	packed[f.n+1] = 0
	return packed, f.order
}

// Inverse is the dual of Forward: unpacks a conjugate-symmetric spectrum
// and returns N real time-domain samples plus the fixed scale exponent.
func (f *RealFFT) Inverse(packed []int16) ([]int16, int) {
	if len(packed) != f.n+2 {
		panic("aecm: RealFFT.Inverse input length mismatch")
	}
	re := make([]int32, f.n)
	im := make([]int32, f.n)
	re[0] = int32(packed[0])
	for k := 1; k < f.n/2; k++ {
		re[k] = int32(packed[2*k])
		im[k] = int32(packed[2*k+1])
		re[f.n-k] = re[k]
		im[f.n-k] = -im[k]
	}
	re[f.n/2] = int32(packed[f.n])

	f.transform(re, im, true)

	out := make([]int16, f.n)
	for i := range out {
		out[i] = clampInt16(re[i])
	}
	return out, f.order
}

// transform runs an in-place iterative radix-2 DIT FFT (or its inverse,
// selected by inverse) over re/im, dividing every stage's output by 2.
func (f *RealFFT) transform(re, im []int32, inverse bool) {
	n := f.n
	// bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j &^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := n / size
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				idx := (k * step) % n
				c := f.cos[idx]
				s := f.sin[idx]
				if inverse {
					s = -s
				}
				ur, ui := re[start+k], im[start+k]
				vr := float64(re[start+k+half])*c - float64(im[start+k+half])*s
				vi := float64(re[start+k+half])*s + float64(im[start+k+half])*c
				re[start+k] = (ur + int32(vr)) / 2
				im[start+k] = (ui + int32(vi)) / 2
				re[start+k+half] = (ur - int32(vr)) / 2
				im[start+k+half] = (ui - int32(vi)) / 2
			}
		}
	}
}
