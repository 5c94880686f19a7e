package aecm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryEstimatorStartsUnlocked(t *testing.T) {
	farend := NewDelayEstimatorFarend(50)
	est := NewDelayEstimator(farend, false)
	spectrum := make([]int32, PartLen1)
	delay := est.Process(spectrum)
	assert.Equal(t, -2, delay)
}

func TestBinaryEstimatorLastDelayInvariant(t *testing.T) {
	farend := NewDelayEstimatorFarend(50)
	est := NewDelayEstimator(farend, false)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		far := randomSpectrum(rng)
		farend.AddFarSpectrum(far)
		near := randomSpectrum(rng)
		delay := est.Process(near)
		if delay != -2 {
			assert.GreaterOrEqual(t, delay, 0)
			assert.Less(t, delay, farend.binary.HistorySize())
		}
	}
}

func TestBinaryEstimatorLocksOntoKnownDelay(t *testing.T) {
	const lockDelay = 10
	farend := NewDelayEstimatorFarend(50)
	est := NewDelayEstimator(farend, false)
	rng := rand.New(rand.NewSource(2))

	history := make([][]int32, 0, 600)
	var lastDelay int
	for i := 0; i < 600; i++ {
		far := randomSpectrum(rng)
		farend.AddFarSpectrum(far)
		history = append(history, far)

		var near []int32
		if len(history) > lockDelay {
			near = history[len(history)-1-lockDelay]
		} else {
			near = randomSpectrum(rng)
		}
		lastDelay = est.Process(near)
	}
	assert.Equal(t, lockDelay, lastDelay)
}

// TestBinaryEstimatorLocksOntoKnownDelayRobustValidation exercises the
// histogram-based robust-validation path (robustValidation=true), which is
// what NewAecmCore actually wires up. Without this test the candidate_hits
// debounce and the histogram window/fraction logic could regress silently.
func TestBinaryEstimatorLocksOntoKnownDelayRobustValidation(t *testing.T) {
	const lockDelay = 10
	farend := NewDelayEstimatorFarend(50)
	est := NewDelayEstimator(farend, true)
	rng := rand.New(rand.NewSource(3))

	history := make([][]int32, 0, 1000)
	var lastDelay int
	for i := 0; i < 1000; i++ {
		far := randomSpectrum(rng)
		farend.AddFarSpectrum(far)
		history = append(history, far)

		var near []int32
		if len(history) > lockDelay {
			near = history[len(history)-1-lockDelay]
		} else {
			near = randomSpectrum(rng)
		}
		lastDelay = est.Process(near)
	}
	assert.Equal(t, lockDelay, lastDelay)
}

// TestBinaryEstimatorRobustValidationResetsCandidateHits verifies that
// candidateHits doesn't ratchet forever once the candidate delay stops
// being the observed one: switching to a new, consistently-observed delay
// must still eventually be accepted, which would never happen if hits from
// the old candidate leaked into the new one's debounce count.
func TestBinaryEstimatorRobustValidationResetsCandidateHits(t *testing.T) {
	const firstDelay = 5
	const secondDelay = 20
	farend := NewDelayEstimatorFarend(50)
	est := NewDelayEstimator(farend, true)
	rng := rand.New(rand.NewSource(4))

	history := make([][]int32, 0, 2000)
	var lastDelay int
	for i := 0; i < 800; i++ {
		far := randomSpectrum(rng)
		farend.AddFarSpectrum(far)
		history = append(history, far)
		var near []int32
		if len(history) > firstDelay {
			near = history[len(history)-1-firstDelay]
		} else {
			near = randomSpectrum(rng)
		}
		lastDelay = est.Process(near)
	}
	assert.Equal(t, firstDelay, lastDelay)

	for i := 0; i < 1500; i++ {
		far := randomSpectrum(rng)
		farend.AddFarSpectrum(far)
		history = append(history, far)
		near := history[len(history)-1-secondDelay]
		lastDelay = est.Process(near)
	}
	assert.Equal(t, secondDelay, lastDelay)
}

func randomSpectrum(rng *rand.Rand) []int32 {
	s := make([]int32, PartLen1)
	for i := KBandFirst; i <= KBandLast; i++ {
		s[i] = int32(rng.Intn(30000))
	}
	return s
}
