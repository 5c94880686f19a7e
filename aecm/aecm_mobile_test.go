package aecm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArmedMobile(t *testing.T, sampleRate int) *AecMobile {
	t.Helper()
	a := NewAecMobile()
	require.NoError(t, a.Init(sampleRate))

	far := make([]int16, a.frameLen)
	near := make([]int16, a.frameLen)
	out := make([]int16, a.frameLen)
	for i := 0; i < 60 && !a.armed; i++ {
		require.NoError(t, a.BufferFarend(far))
		require.NoError(t, a.Process(near, nil, out, 40))
	}
	require.True(t, a.armed, "engine failed to arm within 60 frames")
	return a
}

func TestAecMobileStartsInPassthrough(t *testing.T) {
	a := NewAecMobile()
	require.NoError(t, a.Init(8000))
	assert.True(t, a.ecStartup)
	assert.False(t, a.armed)

	near := make([]int16, a.frameLen)
	out := make([]int16, a.frameLen)
	for i := range near {
		near[i] = int16(i)
	}
	require.NoError(t, a.Process(near, nil, out, 40))
	assert.Equal(t, near, out, "unarmed engine must pass near-end through unchanged")
}

func TestAecMobileArmsAfterFifoFills(t *testing.T) {
	a := newArmedMobile(t, 8000)
	assert.False(t, a.ecStartup)
	assert.True(t, a.armed)
}

func TestAecMobileRejectsFrameLengthMismatch(t *testing.T) {
	a := NewAecMobile()
	require.NoError(t, a.Init(8000))
	err := a.BufferFarend(make([]int16, a.frameLen+1))
	require.Error(t, err)
}

func TestAecMobileClampsSndCardBufWithWarning(t *testing.T) {
	a := NewAecMobile()
	require.NoError(t, a.Init(8000))
	near := make([]int16, a.frameLen)
	out := make([]int16, a.frameLen)

	err := a.Process(near, nil, out, -5)
	require.Error(t, err)
	var warn *AecmWarning
	require.ErrorAs(t, err, &warn)
	assert.Equal(t, CodeBadParameterWarning, warn.Code)

	err = a.Process(near, nil, out, 10000)
	require.Error(t, err)
	require.ErrorAs(t, err, &warn)
}

func TestAecMobileProcessOutputBoundedOnceArmed(t *testing.T) {
	a := newArmedMobile(t, 8000)
	rng := rand.New(rand.NewSource(3))
	far := make([]int16, a.frameLen)
	near := make([]int16, a.frameLen)
	out := make([]int16, a.frameLen)

	for f := 0; f < 20; f++ {
		for i := range far {
			far[i] = int16(rng.Intn(40000) - 20000)
			near[i] = int16(rng.Intn(40000) - 20000)
		}
		require.NoError(t, a.BufferFarend(far))
		require.NoError(t, a.Process(near, nil, out, 40))
		for _, v := range out {
			assert.GreaterOrEqual(t, int(v), -32768)
			assert.LessOrEqual(t, int(v), 32767)
		}
	}
}

func TestAecMobileSilenceStaysSilenceOnceArmed(t *testing.T) {
	a := newArmedMobile(t, 8000)
	far := make([]int16, a.frameLen)
	near := make([]int16, a.frameLen)
	out := make([]int16, a.frameLen)

	require.NoError(t, a.BufferFarend(far))
	require.NoError(t, a.Process(near, nil, out, 40))
	for _, v := range out {
		assert.Equal(t, int16(0), v)
	}
}

func TestAecMobileEchoPathRoundTrip(t *testing.T) {
	a := NewAecMobile()
	require.NoError(t, a.Init(8000))

	path := make([]byte, EchoPathSizeBytes())
	for i := range path {
		path[i] = byte(i)
	}
	require.NoError(t, a.InitEchoPath(path))

	got := make([]byte, EchoPathSizeBytes())
	require.NoError(t, a.GetEchoPath(got))
	assert.Equal(t, path, got)
}

func TestAecMobileEchoPathRejectsWrongLength(t *testing.T) {
	a := NewAecMobile()
	require.NoError(t, a.Init(8000))
	err := a.InitEchoPath(make([]byte, EchoPathSizeBytes()-1))
	require.Error(t, err)
}

func TestAecMobileSetConfigPropagates(t *testing.T) {
	a := NewAecMobile()
	require.NoError(t, a.Init(8000))
	cfg := AecmConfig{CngMode: false, EchoMode: 0}
	require.NoError(t, a.SetConfig(cfg))
	assert.Equal(t, cfg, a.cfg)
}

func TestAecMobileProcessBeforeInitFails(t *testing.T) {
	a := NewAecMobile()
	err := a.Process(make([]int16, FrameLen), nil, make([]int16, FrameLen), 40)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUninitialized)
}

func TestAecMobileCloseThenProcessFails(t *testing.T) {
	a := NewAecMobile()
	require.NoError(t, a.Init(8000))
	require.NoError(t, a.Close())
	err := a.Process(make([]int16, FrameLen), nil, make([]int16, FrameLen), 40)
	require.Error(t, err)
}

func TestAecMobileWidebandFrameLen(t *testing.T) {
	a := NewAecMobile()
	require.NoError(t, a.Init(16000))
	assert.Equal(t, 2*FrameLen, a.frameLen)
}
