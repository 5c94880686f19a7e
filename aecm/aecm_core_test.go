package aecm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAecmCoreChannelMirrorInvariant(t *testing.T) {
	core, err := NewAecmCore(8000)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	far := make([]int16, PartLen)
	near := make([]int16, PartLen)
	out := make([]int16, PartLen)

	for b := 0; b < 50; b++ {
		for i := range far {
			far[i] = int16(rng.Intn(2000) - 1000)
			near[i] = int16(rng.Intn(2000) - 1000)
		}
		require.NoError(t, core.ProcessBlock(far, near, nil, out))

		for i, v32 := range core.channelAdapt32 {
			assert.GreaterOrEqual(t, v32, int32(0))
			assert.Equal(t, core.channelAdapt16[i], int16(v32>>(ResolutionChannel32-ResolutionChannel16)))
		}
	}
}

func TestAecmCoreProcessBlockOutputBounded(t *testing.T) {
	core, err := NewAecmCore(8000)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))
	far := make([]int16, PartLen)
	near := make([]int16, PartLen)
	out := make([]int16, PartLen)

	for b := 0; b < 30; b++ {
		for i := range far {
			far[i] = int16(rng.Intn(60000) - 30000)
			near[i] = int16(rng.Intn(60000) - 30000)
		}
		require.NoError(t, core.ProcessBlock(far, near, nil, out))
		for _, v := range out {
			assert.GreaterOrEqual(t, int(v), -32768)
			assert.LessOrEqual(t, int(v), 32767)
		}
	}
}

func TestAecmCoreSilenceInSilenceOut(t *testing.T) {
	core, err := NewAecmCore(8000)
	require.NoError(t, err)
	far := make([]int16, PartLen)
	near := make([]int16, PartLen)
	out := make([]int16, PartLen)

	require.NoError(t, core.ProcessBlock(far, near, nil, out))
	for _, v := range out {
		assert.Equal(t, int16(0), v)
	}
}

func TestAecmCoreInitIdempotent(t *testing.T) {
	core, err := NewAecmCore(8000)
	require.NoError(t, err)
	require.NoError(t, core.Init(8000))
	assert.Equal(t, channelStored8kHz, core.channelStored)
	assert.Equal(t, -1, core.fixedDelay)
}

func TestAecmCoreRejectsUnsupportedRate(t *testing.T) {
	_, err := NewAecmCore(44100)
	require.Error(t, err)
}
