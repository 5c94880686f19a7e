package aecm

import "encoding/binary"

const farendBufFrames = 50 // far-end FIFO depth, in 10 ms frames

// AecMobile is the public frame wrapper: it accepts 10 ms far/near frames,
// splits them into PartLen-sample blocks aligned against a caller-supplied
// sound-card latency hint, and drives the per-block AecmCore engine. It
// stays in a startup ("ECstartup") pass-through mode until the caller's
// latency hint stabilizes and the far-end FIFO has filled enough to begin
// compensating for sound-card buffering.
type AecMobile struct {
	core *AecmCore

	frameLen   int
	sampleRate int

	initFlag bool

	farendBuf    *RingBuffer[int16]
	nearBuf      *RingBuffer[int16]
	nearCleanBuf *RingBuffer[int16]
	outFIFO      *RingBuffer[int16]
	farendOld    [2][]int16

	ecStartup    bool
	armed        bool
	stableCount  int
	firstVal     int
	blocksSeen   int
	bufSizeStart int

	filtDelay          int
	filtDelayInit      bool
	knownDelay         int
	lastDelayDiff      int
	timeForDelayChange int

	cfg AecmConfig
}

// NewAecMobile allocates an uninitialized frame wrapper; call Init before
// use.
func NewAecMobile() *AecMobile {
	return &AecMobile{}
}

// Init (re)initializes the wrapper for sampleRateHz (8000 or 16000).
// Idempotent: calling it twice in a row yields the same state as calling
// it once.
func (a *AecMobile) Init(sampleRateHz int) error {
	core, err := NewAecmCore(sampleRateHz)
	if err != nil {
		return err
	}
	a.core = core
	a.sampleRate = sampleRateHz
	a.frameLen = FrameLen * core.mult

	a.farendBuf = NewRingBuffer[int16](farendBufFrames * a.frameLen)
	a.nearBuf = NewRingBuffer[int16](4 * a.frameLen)
	a.nearCleanBuf = NewRingBuffer[int16](4 * a.frameLen)
	a.outFIFO = NewRingBuffer[int16](4 * a.frameLen)
	a.farendOld = [2][]int16{make([]int16, PartLen), make([]int16, PartLen)}

	a.ecStartup = true
	a.armed = false
	a.stableCount = 0
	a.firstVal = 0
	a.blocksSeen = 0
	a.bufSizeStart = 0

	a.filtDelay = 0
	a.filtDelayInit = false
	a.knownDelay = 0
	a.lastDelayDiff = 0
	a.timeForDelayChange = 0

	a.cfg = DefaultConfig()
	a.initFlag = true
	return nil
}

// BufferFarend pushes one 10 ms far-end frame (what the loudspeaker is
// about to play) into the far-end FIFO.
func (a *AecMobile) BufferFarend(samples []int16) error {
	if !a.initFlag {
		return ErrUninitialized
	}
	if len(samples) != a.frameLen {
		return newError(CodeBadParameter, "far-end frame length mismatch")
	}
	a.farendBuf.Write(samples)
	return nil
}

// SetConfig applies cngMode/echoMode.
func (a *AecMobile) SetConfig(cfg AecmConfig) error {
	if !a.initFlag {
		return ErrUninitialized
	}
	if err := a.core.SetConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// InitEchoPath seeds the stored channel from a previously persisted echo
// path (see EchoPathSizeBytes for the expected length).
func (a *AecMobile) InitEchoPath(path []byte) error {
	if !a.initFlag {
		return ErrUninitialized
	}
	if len(path) != EchoPathSizeBytes() {
		return newError(CodeBadParameter, "echo path has wrong length")
	}
	samples := make([]int16, PartLen1)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(path[2*i:]))
	}
	return a.core.InitEchoPath(samples)
}

// GetEchoPath copies the current persisted echo path into out (must have
// length EchoPathSizeBytes()).
func (a *AecMobile) GetEchoPath(out []byte) error {
	if !a.initFlag {
		return ErrUninitialized
	}
	if len(out) != EchoPathSizeBytes() {
		return newError(CodeBadParameter, "output buffer has wrong length")
	}
	samples := make([]int16, PartLen1)
	a.core.EchoPath(samples)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return nil
}

// Close releases the wrapper. AecMobile holds no external resources, so
// this only marks the handle unusable; it exists so callers can `defer
// aec.Close()` per the spec's create/destroy handle lifecycle.
func (a *AecMobile) Close() error {
	a.initFlag = false
	return nil
}

func absIntLocal(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampMsInSndCardBuf(ms int) (int, *AecmWarning) {
	switch {
	case ms < 0:
		return 0, newWarning(CodeBadParameterWarning, "msInSndCardBuf below range, clamped to 0")
	case ms > 500:
		return 500, newWarning(CodeBadParameterWarning, "msInSndCardBuf above range, clamped to 500")
	default:
		return ms, nil
	}
}

// updateStartup tracks whether the caller's reported latency has settled
// and, once it has (or after 50 frames, forced), computes bufSizeStart and
// leaves ECstartup.
func (a *AecMobile) updateStartup(ms int) {
	if a.stableCount == 0 {
		a.firstVal = ms
	}
	threshold := 8
	if t := a.firstVal / 5; t > threshold { // 0.2 * ms
		threshold = t
	}
	if absIntLocal(ms-a.firstVal) < threshold {
		a.stableCount++
	} else {
		a.stableCount = 0
		a.firstVal = ms
	}
	a.blocksSeen++

	if a.ecStartup && (a.stableCount >= 6 || a.blocksSeen >= 50) {
		bufSizeStart := 3 * ms * a.core.mult / 40
		if bufSizeStart > 50 {
			bufSizeStart = 50
		}
		if bufSizeStart < 0 {
			bufSizeStart = 0
		}
		a.bufSizeStart = bufSizeStart
		a.ecStartup = false
		Logger.Debug("left ECstartup", "bufSizeStart", bufSizeStart, "msInSndCardBuf", ms)
	}
}

// tryArm checks whether the far-end FIFO has reached bufSizeStart frames
// worth of fill and, if so, arms the engine, flushing any excess.
func (a *AecMobile) tryArm() {
	if a.ecStartup || a.armed {
		return
	}
	needed := a.bufSizeStart * a.frameLen
	if a.farendBuf.AvailableRead() >= needed {
		a.armed = true
		if excess := a.farendBuf.AvailableRead() - needed; excess > 0 {
			a.farendBuf.MoveReadPtr(excess)
		}
		Logger.Debug("engine armed", "bufSizeStart", a.bufSizeStart)
	}
}

// estBufDelay converts the caller's latency hint to a block count, smooths
// it into filtDelay, and nudges knownDelay (stuffing or flushing the
// far-end FIFO to match) once the drift has been consistent for 25 frames.
func (a *AecMobile) estBufDelay(ms int) {
	delayBlocks := ms * a.core.mult * 8 / PartLen // 8*mult samples per ms
	if !a.filtDelayInit {
		a.filtDelay = delayBlocks
		a.filtDelayInit = true
	} else {
		a.filtDelay += (delayBlocks - a.filtDelay) >> 2
	}

	diff := a.filtDelay - a.knownDelay
	if diff == a.lastDelayDiff {
		a.timeForDelayChange++
	} else {
		a.timeForDelayChange = 0
	}
	a.lastDelayDiff = diff

	if a.timeForDelayChange > 25 && diff != 0 {
		stuff := diff * PartLen
		const maxStuff = 10 * PartLen
		if stuff > maxStuff {
			stuff = maxStuff
		} else if stuff < -maxStuff {
			stuff = -maxStuff
		}
		a.farendBuf.MoveReadPtr(-stuff)
		a.knownDelay += diff
		a.timeForDelayChange = 0
		Logger.Debug("sound-card buffer drift compensated", "knownDelay", a.knownDelay, "stuffedSamples", -stuff)
	}
}

// Process runs one 10 ms near-end frame (and implicitly the far-end frames
// already buffered) through the engine, writing exactly one 10 ms frame to
// out. nearClean may be nil. msInSndCardBuf is clamped to [0,500] with a
// warning returned (not aborting) when out of range.
func (a *AecMobile) Process(nearNoisy, nearClean, out []int16, msInSndCardBuf int) error {
	if !a.initFlag {
		return ErrUninitialized
	}
	if len(nearNoisy) != a.frameLen || len(out) != a.frameLen {
		return newError(CodeBadParameter, "frame length mismatch")
	}
	if nearClean != nil && len(nearClean) != a.frameLen {
		return newError(CodeBadParameter, "clean frame length mismatch")
	}

	clamped, warn := clampMsInSndCardBuf(msInSndCardBuf)
	a.updateStartup(clamped)
	a.tryArm()

	if !a.armed {
		src := nearNoisy
		if nearClean != nil {
			src = nearClean
		}
		copy(out, src)
		if warn != nil {
			return warn
		}
		return nil
	}

	a.estBufDelay(clamped)

	// FrameLen (10 ms) is not a multiple of PartLen: the engine only ever
	// runs on whole PartLen blocks, so near-end input and output each pass
	// through their own FIFO and blocks are drained whenever enough near
	// samples have accumulated, independent of the 10 ms frame boundary.
	a.nearBuf.Write(nearNoisy)
	haveClean := nearClean != nil
	if haveClean {
		a.nearCleanBuf.Write(nearClean)
	}

	nearScratch := make([]int16, PartLen)
	cleanScratch := make([]int16, PartLen)
	farScratch := make([]int16, PartLen)
	farBlock := make([]int16, PartLen)
	outBlock := make([]int16, PartLen)

	for a.nearBuf.AvailableRead() >= PartLen {
		nb, _ := a.nearBuf.Read(PartLen, nearScratch)

		var cleanBlock []int16
		if haveClean && a.nearCleanBuf.AvailableRead() >= PartLen {
			cb, _ := a.nearCleanBuf.Read(PartLen, cleanScratch)
			cleanBlock = cb
		}

		fb, _ := a.farendBuf.Read(PartLen, farScratch)
		if len(fb) < PartLen {
			copy(farBlock, a.farendOld[0])
		} else {
			copy(farBlock, fb)
			a.farendOld[1], a.farendOld[0] = a.farendOld[0], append([]int16(nil), farBlock...)
		}

		if err := a.core.ProcessBlock(farBlock, nb, cleanBlock, outBlock); err != nil {
			return err
		}
		a.outFIFO.Write(outBlock)
	}

	outScratch := make([]int16, a.frameLen)
	drained, _ := a.outFIFO.Read(a.frameLen, outScratch)
	n := copy(out, drained)
	for ; n < a.frameLen; n++ {
		out[n] = 0
	}
	if warn != nil {
		return warn
	}
	return nil
}
