package aecm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRingBufferWriteThenReadRoundTrip(t *testing.T) {
	rb := NewRingBuffer[int16](16)
	src := []int16{1, 2, 3, 4, 5}
	n := rb.Write(src)
	require.Equal(t, 5, n)

	scratch := make([]int16, 5)
	out, zeroCopy := rb.Read(5, scratch)
	assert.True(t, zeroCopy)
	assert.Equal(t, src, out)
	assert.Equal(t, 0, rb.AvailableRead())
	assert.Equal(t, 16, rb.AvailableWrite())
}

func TestRingBufferWrapAroundReadUsesScratch(t *testing.T) {
	rb := NewRingBuffer[int16](8)
	rb.Write([]int16{1, 2, 3, 4, 5, 6})
	scratch5 := make([]int16, 5)
	rb.Read(5, scratch5) // readPos now 5
	rb.Write([]int16{7, 8, 9, 10})

	scratch := make([]int16, 5)
	out, zeroCopy := rb.Read(5, scratch)
	require.False(t, zeroCopy)
	assert.Equal(t, []int16{6, 7, 8, 9, 10}, out)
}

func TestRingBufferWriteTruncatesAtCapacity(t *testing.T) {
	rb := NewRingBuffer[int16](4)
	n := rb.Write([]int16{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, rb.AvailableWrite())
}

func TestRingBufferMoveReadPtrClampsAndReplays(t *testing.T) {
	rb := NewRingBuffer[int16](8)
	rb.Write([]int16{1, 2, 3, 4})
	scratch := make([]int16, 4)
	rb.Read(4, scratch)
	assert.Equal(t, 0, rb.AvailableRead())

	moved := rb.MoveReadPtr(-2)
	assert.Equal(t, -2, moved)
	assert.Equal(t, 2, rb.AvailableRead())
	out, _ := rb.Read(2, scratch)
	assert.Equal(t, []int16{3, 4}, out)

	// Over-rewind clamps to available write capacity, not a crash.
	moved = rb.MoveReadPtr(-1000)
	assert.GreaterOrEqual(t, moved, -8)
}

func TestRingBufferInvariantPropertyBased(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cap := rapid.IntRange(1, 32).Draw(rt, "cap")
		rb := NewRingBuffer[int16](cap)
		ops := rapid.IntRange(1, 50).Draw(rt, "ops")
		var expected []int16
		scratch := make([]int16, cap)

		for i := 0; i < ops; i++ {
			if rapid.Bool().Draw(rt, "doWrite") {
				n := rapid.IntRange(0, cap).Draw(rt, "writeN")
				src := make([]int16, n)
				for j := range src {
					src[j] = int16(rapid.IntRange(-100, 100).Draw(rt, "val"))
				}
				written := rb.Write(src)
				expected = append(expected, src[:written]...)
			} else {
				n := rapid.IntRange(0, cap).Draw(rt, "readN")
				out, _ := rb.Read(n, scratch)
				require.LessOrEqual(rt, len(out), len(expected))
				for j, v := range out {
					require.Equal(rt, expected[j], v)
				}
				expected = expected[len(out):]
			}
			require.Equal(rt, cap, rb.AvailableRead()+rb.AvailableWrite())
		}
	})
}
