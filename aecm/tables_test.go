package aecm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSqrtHanningWindowBounds(t *testing.T) {
	for i, v := range sqrtHanningQ14 {
		assert.GreaterOrEqualf(t, v, int16(0), "index %d", i)
		assert.LessOrEqualf(t, v, int16(OneQ14), "index %d", i)
	}
	assert.Equal(t, int16(0), sqrtHanningQ14[0])
	assert.InDelta(t, OneQ14, int(sqrtHanningQ14[PartLen]), 2)
}

func TestWindowSynthSymmetric(t *testing.T) {
	for i := 0; i <= PartLen; i++ {
		assert.Equal(t, windowSynth(i), windowSynth(PartLen2-i))
	}
}

func TestCosSinTableQ13Bounded(t *testing.T) {
	for i := 0; i < 360; i++ {
		assert.LessOrEqual(t, cosTableQ13[i], int16(1<<13))
		assert.GreaterOrEqual(t, cosTableQ13[i], int16(-(1 << 13)))
		assert.LessOrEqual(t, sinTableQ13[i], int16(1<<13))
		assert.GreaterOrEqual(t, sinTableQ13[i], int16(-(1 << 13)))
	}
}
