package aecm

import "math/bits"

// satAddInt16 adds two int16 values with saturation to the int16 range.
func satAddInt16(a, b int16) int16 {
	sum := int32(a) + int32(b)
	return clampInt16(sum)
}

// satSubInt16 subtracts with saturation to the int16 range.
func satSubInt16(a, b int16) int16 {
	return clampInt16(int32(a) - int32(b))
}

func clampInt16(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

func clampInt32(v int64) int32 {
	switch {
	case v > 1<<31-1:
		return 1<<31 - 1
	case v < -(1 << 31):
		return -(1 << 31)
	default:
		return int32(v)
	}
}

// normalize32 returns the number of redundant sign bits in v (i.e. how far
// v can be left-shifted before it would overflow int32), used to compute
// pre-FFT scaling and Q-domain bookkeeping throughout the engine.
func normalize32(v int32) int {
	if v == 0 {
		return 31
	}
	u := uint32(v)
	if v < 0 {
		u = ^u
	}
	return bits.LeadingZeros32(u) - 1
}

// normalize16 is normalize32 restricted to values already known to fit in
// 16 bits, for call sites that track a 16-bit quantity's headroom.
func normalize16(v int16) int {
	return normalize32(int32(v)) - 16
}

// countLeadingZeros32 returns the number of leading zero bits in v.
//
// The upstream source this engine is modeled on carries an unreachable
// fallback branch here ("if (word > 0xffffff ...)") that references an
// identifier never declared in that scope. The branch cannot be reached
// from any 32-bit input under the algorithm this function implements;
// math/bits.LeadingZeros32 is used directly and the dead branch is not
// reproduced, but callers should not assume any particular behavior for
// inputs that would have driven that path in the original.
func countLeadingZeros32(word uint32) int {
	return bits.LeadingZeros32(word)
}

// isqrt32 returns floor(sqrt(v)) for a nonnegative 32-bit value, used by
// the magnitude approximation in time-to-frequency conversion.
func isqrt32(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	x := v
	y := x/2 + x&1 // (x+1)/2 without overflowing at MaxUint32
	for y < x {
		x = y
		y = (x + v/x) / 2
	}
	return x
}

// satDivQ divides num/den and returns the result in Q-domain q, saturating
// to int32 range rather than overflowing.
func satDivQ(num, den int64, q uint) int32 {
	if den == 0 {
		if num >= 0 {
			return 1<<31 - 1
		}
		return -(1 << 31)
	}
	return clampInt32((num << q) / den)
}
