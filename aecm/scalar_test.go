package aecm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSatAddInt16Saturates(t *testing.T) {
	assert.Equal(t, int16(32767), satAddInt16(32000, 1000))
	assert.Equal(t, int16(-32768), satSubInt16(-32000, 1000))
	assert.Equal(t, int16(30), satAddInt16(10, 20))
}

func TestIsqrt32(t *testing.T) {
	assert.Equal(t, uint32(0), isqrt32(0))
	assert.Equal(t, uint32(3), isqrt32(9))
	assert.Equal(t, uint32(3), isqrt32(15))
	assert.Equal(t, uint32(4), isqrt32(16))
}

func TestIsqrt32PropertyNeverOvershoots(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Uint32Range(0, 1<<30).Draw(rt, "v")
		r := isqrt32(v)
		assert.LessOrEqual(t, r*r, v)
		assert.Greater(t, (r+1)*(r+1), v)
	})
}

func TestNormalize32ZeroIsMaxHeadroom(t *testing.T) {
	assert.Equal(t, 31, normalize32(0))
}

func TestNormalize32PropertyShiftNeverOverflows(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Int32().Draw(rt, "v")
		n := normalize32(v)
		assert.GreaterOrEqual(t, n, 0)
		// v can be left-shifted by n bits without changing sign.
		shifted := int64(v) << uint(n)
		assert.LessOrEqual(t, shifted, int64(1<<31-1))
		assert.GreaterOrEqual(t, shifted, int64(-(1<<31)))
	})
}
