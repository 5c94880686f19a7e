package aecm

import (
	"math"
	"math/bits"
)

// farHistoryEntry is one slot of the per-block far-magnitude-spectrum
// history used for delay alignment (spec.md's far_history).
type farHistoryEntry struct {
	mag     []int32
	qDomain int
}

// freqBlock is the windowed-FFT result for one PartLen2 time buffer: the
// packed conjugate-symmetric spectrum, its magnitude per bin, the Q-domain
// the magnitudes were computed in, and their sum (used for energy).
type freqBlock struct {
	packed    []int16
	mag       []int32
	qDomain   int
	energySum int64
}

// AecmCore is the per-block signal-processing engine: windowed FFT,
// magnitude/VAD/energy tracking, NLMS dual-channel estimation with MSE
// arbitration, and Wiener/NLP/comfort-noise suppression.
type AecmCore struct {
	ops coreOps
	fft *RealFFT

	mult int // 1 at 8 kHz, 2 at 16 kHz

	channelStored  [PartLen1]int16
	channelAdapt16 [PartLen1]int16
	channelAdapt32 [PartLen1]int32

	farHistory    []farHistoryEntry
	farHistoryPos int

	xBuf      [PartLen2]int16
	dBufNoisy [PartLen2]int16
	dBufClean [PartLen2]int16
	outBuf    [PartLen]int16

	nearLogEnergy       [MaxBufLen]int16
	echoStoredLogEnergy [MaxBufLen]int16
	echoAdaptLogEnergy  [MaxBufLen]int16

	noiseEst          [PartLen1]int32
	noiseEstLowCtr    [PartLen1]int16
	noiseEstHighCtr   [PartLen1]int16

	mseStoredOld     int64
	mseAdaptOld      int64
	mseThreshold     int64
	mseThresholdInit bool
	mseChannelCount  int
	storedWasWorse   bool
	delayLocked      bool

	farEnergyMin int32
	farEnergyMax int32
	farEnergyVAD int32
	farEnergyMSE int32
	firstVAD     bool

	currentVADValue int

	sg  supgainParams
	cfg AecmConfig

	echoFilt [PartLen1]int32
	nearFilt [PartLen1]int32

	totCount     int64
	startupState int
	seed         uint32
	fixedDelay   int // -1 means "not fixed", use the delay estimator

	delayFarend *DelayEstimatorFarend
	delay       *DelayEstimator
}

// NewAecmCore constructs and initializes a core for the given sample rate
// (8000 or 16000 Hz).
func NewAecmCore(sampleRateHz int) (*AecmCore, error) {
	c := &AecmCore{}
	if err := c.Init(sampleRateHz); err != nil {
		return nil, err
	}
	return c, nil
}

// Init (re)initializes the core for sampleRateHz. Safe to call repeatedly
// on a live core; idempotent in the sense that calling it twice in a row
// with the same rate yields the same state as calling it once.
func (c *AecmCore) Init(sampleRateHz int) error {
	switch sampleRateHz {
	case 8000:
		c.mult = 1
		c.channelStored = channelStored8kHz
	case 16000:
		c.mult = 2
		c.channelStored = channelStored16kHz
	default:
		return newError(CodeBadParameter, "unsupported sample rate, want 8000 or 16000")
	}
	c.ops = scalarOps{}
	c.fft = NewRealFFT(7) // N = PartLen2 = 128
	for i := range c.channelStored {
		c.channelAdapt16[i] = c.channelStored[i]
		c.channelAdapt32[i] = int32(c.channelStored[i]) << (ResolutionChannel32 - ResolutionChannel16)
	}
	c.farHistory = make([]farHistoryEntry, MaxDelay)
	for i := range c.farHistory {
		c.farHistory[i] = farHistoryEntry{mag: make([]int32, PartLen1)}
	}
	c.farHistoryPos = 0

	c.xBuf = [PartLen2]int16{}
	c.dBufNoisy = [PartLen2]int16{}
	c.dBufClean = [PartLen2]int16{}
	c.outBuf = [PartLen]int16{}

	c.nearLogEnergy = [MaxBufLen]int16{}
	c.echoStoredLogEnergy = [MaxBufLen]int16{}
	c.echoAdaptLogEnergy = [MaxBufLen]int16{}

	c.noiseEst = [PartLen1]int32{}
	c.noiseEstLowCtr = [PartLen1]int16{}
	c.noiseEstHighCtr = [PartLen1]int16{}

	c.mseStoredOld = 0
	c.mseAdaptOld = 0
	c.mseThreshold = 0
	c.mseThresholdInit = false
	c.mseChannelCount = 0
	c.storedWasWorse = false
	c.delayLocked = false

	c.farEnergyMin = 0
	c.farEnergyMax = 0
	c.farEnergyVAD = FarEnergyMin
	c.farEnergyMSE = 0
	c.firstVAD = false
	c.currentVADValue = 0

	c.cfg = DefaultConfig()
	c.sg = newSupgainParams(c.cfg.EchoMode)

	c.echoFilt = [PartLen1]int32{}
	c.nearFilt = [PartLen1]int32{}

	c.totCount = 0
	c.startupState = 0
	c.seed = 666
	c.fixedDelay = -1

	c.delayFarend = NewDelayEstimatorFarend(MaxDelay)
	c.delay = NewDelayEstimator(c.delayFarend, true)
	return nil
}

// InitEchoPath seeds the stored (and mirrored adaptive) channel from a
// previously persisted echo path of exactly PartLen1 bins.
func (c *AecmCore) InitEchoPath(path []int16) error {
	if len(path) != PartLen1 {
		return newError(CodeBadParameter, "echo path must have PartLen1 bins")
	}
	copy(c.channelStored[:], path)
	for i := range c.channelStored {
		c.channelAdapt16[i] = c.channelStored[i]
		c.channelAdapt32[i] = int32(c.channelStored[i]) << (ResolutionChannel32 - ResolutionChannel16)
	}
	c.echoFilt = [PartLen1]int32{}
	return nil
}

// EchoPath copies the current stored channel (the persisted echo path) into out.
func (c *AecmCore) EchoPath(out []int16) {
	copy(out, c.channelStored[:])
}

// SetConfig applies an AecmConfig, recomputing the echoMode-shifted
// suppression-gain parameter set.
func (c *AecmCore) SetConfig(cfg AecmConfig) error {
	if cfg.EchoMode < 0 || cfg.EchoMode > 4 {
		return newError(CodeBadParameter, "echoMode must be 0..4")
	}
	c.cfg = cfg
	c.sg = newSupgainParams(cfg.EchoMode)
	return nil
}

// SetFixedDelay overrides the binary delay estimator with a fixed block
// delay; pass -1 to go back to using the estimator.
func (c *AecmCore) SetFixedDelay(blocks int) { c.fixedDelay = blocks }

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// shiftRightQ applies a signed Q-domain shift: v >> q for q >= 0, v << -q for
// q < 0. qDomain can go negative once the FFT's own attenuation is folded
// in (timeToFrequency's pre-scale can undershoot the transform's fixed
// divide-by-2^order), so every site converting a magnitude back to its
// physical value needs this instead of a bare `>> uint(q)`.
func shiftRightQ(v int64, q int) int64 {
	if q >= 0 {
		return v >> uint(q)
	}
	return v << uint(-q)
}

func shiftLeftQ32(v int32, q int) int32 {
	if q >= 0 {
		return v << uint(q)
	}
	return v >> uint(-q)
}

// log2Q8 returns an approximate base-2 logarithm of v in Q8, normalized by
// qDomain so that log-energies computed from blocks at different Q-domains
// (timeToFrequency's pre-scale varies block-to-block with signal amplitude)
// are comparable. v <= 0 maps to 0.
func log2Q8(v int64, qDomain int) int16 {
	if v <= 0 {
		return 0
	}
	n := bits.Len64(uint64(v)) - 1
	frac := float64(v) / float64(int64(1)<<uint(n))
	val := (float64(n) + math.Log2(frac))*256 - float64(qDomain)*256
	return clampInt16(int32(val))
}

// timeToFrequency shifts newBlock into buf (dropping the oldest PartLen
// samples), windows the result, and runs the forward FFT, returning the
// packed spectrum, its per-bin magnitude, and their Q-domain (the pre-scale
// applied before the transform minus the transform's own scale). This is
// step (a) of the per-block engine.
func (c *AecmCore) timeToFrequency(buf *[PartLen2]int16, newBlock []int16) freqBlock {
	copy(buf[:PartLen], buf[PartLen:])
	copy(buf[PartLen:], newBlock)

	var maxAbs int32
	for _, v := range buf {
		a := int32(v)
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}
	shift := 0
	if maxAbs > 0 {
		shift = normalize32(maxAbs) - 16
		if shift < 0 {
			shift = 0
		}
		if shift > 8 {
			shift = 8
		}
	}

	windowed := make([]int16, PartLen2)
	for i := 0; i < PartLen2; i++ {
		w := int64(windowSynth(i))
		v := (int64(buf[i]) << uint(shift)) * w >> 14
		windowed[i] = clampInt16(clampInt32(v))
	}

	packed, fscale := c.fft.Forward(windowed)
	// Complex-conjugate to match the algorithm's sign convention.
	for i := 1; i < PartLen; i++ {
		packed[2*i+1] = -packed[2*i+1]
	}

	mag := make([]int32, PartLen1)
	var energy int64
	for k := 0; k <= PartLen; k++ {
		re := int32(packed[2*k])
		var im int32
		if k != 0 && k != PartLen {
			im = int32(packed[2*k+1])
		}
		var m int32
		switch {
		case re == 0:
			m = absInt32(im)
		case im == 0:
			m = absInt32(re)
		default:
			sum := int64(re)*int64(re) + int64(im)*int64(im)
			m = int32(isqrt32(uint32(sum)))
		}
		mag[k] = m
		energy += int64(m)
	}
	// The FFT itself divides every one of its `order` butterfly stages by
	// 2, attenuating the packed spectrum by 2^order relative to windowed:
	// the pre-scale applied before the transform and the transform's own
	// scale combine into a single Q-domain for everything downstream. Step
	// (l) of ProcessBlock adds the order back before applying Inverse's
	// scale, so that only the pre-scale is undone there.
	return freqBlock{packed: packed, mag: mag, qDomain: shift - fscale, energySum: energy}
}

// shiftLogEnergy pushes v onto the front of hist, dropping the oldest entry.
func shiftLogEnergy(hist *[MaxBufLen]int16, v int16) {
	copy(hist[1:], hist[:MaxBufLen-1])
	hist[0] = v
}

func sumAbsDiffQ8(a, b *[MaxBufLen]int16, n int) int64 {
	var sum int64
	for i := 0; i < n; i++ {
		d := int64(a[i]) - int64(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// ProcessBlock runs one PartLen-sample block through the engine: delay
// alignment, energy/VAD tracking, NLMS channel adaptation with MSE
// arbitration, and Wiener/NLP/comfort-noise suppression, writing PartLen
// output samples to out. nearClean may be nil.
func (c *AecmCore) ProcessBlock(far, nearNoisy, nearClean, out []int16) error {
	if len(far) != PartLen || len(nearNoisy) != PartLen || len(out) != PartLen {
		return newError(CodeBadParameter, "block size must be PartLen")
	}
	if nearClean != nil && len(nearClean) != PartLen {
		return newError(CodeBadParameter, "clean block size must be PartLen")
	}

	// (a) Time -> Frequency
	farBlock := c.timeToFrequency(&c.xBuf, far)
	noisyBlock := c.timeToFrequency(&c.dBufNoisy, nearNoisy)
	var cleanBlock freqBlock
	haveClean := nearClean != nil
	if haveClean {
		cleanBlock = c.timeToFrequency(&c.dBufClean, nearClean)
	}

	// (b) Delay alignment
	entry := farHistoryEntry{mag: farBlock.mag, qDomain: farBlock.qDomain}
	c.farHistory[c.farHistoryPos] = entry
	c.delayFarend.AddFarSpectrum(farBlock.mag)
	estimated := c.delay.Process(noisyBlock.mag)
	if estimated < 0 && estimated != -2 {
		return ErrUnspecified
	}

	locked := estimated != -2
	if locked != c.delayLocked {
		if locked {
			Logger.Debug("delay locked", "delay", estimated)
		} else {
			Logger.Debug("delay lost")
		}
		c.delayLocked = locked
	}

	delayIdx := estimated
	if c.fixedDelay >= 0 {
		delayIdx = c.fixedDelay
	} else if estimated == -2 {
		delayIdx = 0
	}
	if delayIdx < 0 {
		delayIdx = 0
	}
	if delayIdx >= MaxDelay {
		delayIdx = MaxDelay - 1
	}
	alignedIdx := ((c.farHistoryPos-delayIdx)%MaxDelay + MaxDelay) % MaxDelay
	farAligned := c.farHistory[alignedIdx]
	c.farHistoryPos = (c.farHistoryPos + 1) % MaxDelay

	// (c) Energies and VAD
	echoEst, energyAdapt, energyStored := c.ops.calcLinearEnergies(c, farAligned.mag)
	var farEnergy int64
	for _, v := range farAligned.mag {
		farEnergy += int64(v)
	}
	nearLogE := log2Q8(noisyBlock.energySum, noisyBlock.qDomain)
	echoAdaptLogE := log2Q8(energyAdapt, farAligned.qDomain)
	echoStoredLogE := log2Q8(energyStored, farAligned.qDomain)
	farLogE := log2Q8(farEnergy, farAligned.qDomain)

	shiftLogEnergy(&c.nearLogEnergy, nearLogE)
	shiftLogEnergy(&c.echoAdaptLogEnergy, echoAdaptLogE)
	shiftLogEnergy(&c.echoStoredLogEnergy, echoStoredLogE)

	if c.totCount == 0 {
		c.farEnergyMin = int32(farLogE)
		c.farEnergyMax = int32(farLogE)
	} else {
		riseShift, fallShift := 2, 6
		if c.startupState > 0 {
			riseShift, fallShift = 4, 6
		}
		if int32(farLogE) > c.farEnergyMax {
			c.farEnergyMax += (int32(farLogE) - c.farEnergyMax) >> uint(riseShift)
		} else {
			c.farEnergyMax += (int32(farLogE) - c.farEnergyMax) >> uint(fallShift)
		}
		if int32(farLogE) < c.farEnergyMin {
			c.farEnergyMin += (int32(farLogE) - c.farEnergyMin) >> uint(riseShift)
		} else {
			c.farEnergyMin += (int32(farLogE) - c.farEnergyMin) >> uint(fallShift)
		}
	}
	dynamicRange := c.farEnergyMax - c.farEnergyMin
	c.farEnergyVAD = c.farEnergyMin + FarEnergyVADRegion

	c.currentVADValue = 0
	if int32(farLogE) > c.farEnergyVAD && (dynamicRange > FarEnergyDiff || c.startupState == 0) {
		c.currentVADValue = 1
	}
	if !c.firstVAD && c.currentVADValue == 1 {
		c.firstVAD = true
		if echoAdaptLogE > nearLogE {
			for i := range c.channelAdapt16 {
				c.channelAdapt16[i] >>= 3
				c.channelAdapt32[i] >>= 3
			}
		}
	}

	// (d) Step size
	var mu int
	switch {
	case c.currentVADValue == 0:
		mu = 0
	case c.startupState == 0:
		mu = MuMax
	default:
		rng := c.farEnergyMax - c.farEnergyMin
		frac := 0.0
		if rng > 0 {
			frac = float64(int32(farLogE)-c.farEnergyMin) / float64(rng)
			if frac < 0 {
				frac = 0
			}
			if frac > 1 {
				frac = 1
			}
		}
		mu = int(math.Round(float64(MuMax) + frac*float64(MuMin-MuMax)))
	}

	// (e) NLMS channel update
	if mu > 0 {
		for k := 0; k < PartLen1; k++ {
			farVal := farAligned.mag[k]
			if farVal <= shiftLeftQ32(ChannelVAD, farAligned.qDomain) {
				continue
			}
			farPhys := shiftRightQ(int64(farVal), farAligned.qDomain)
			if farPhys == 0 {
				continue
			}
			nearPhys := shiftRightQ(int64(noisyBlock.mag[k]), noisyBlock.qDomain)
			estEcho := (int64(c.channelAdapt32[k]) >> ResolutionChannel32) * farPhys
			residual := nearPhys - estEcho
			denom := int64(k+1) * farPhys
			step := (residual << ResolutionChannel32) / denom >> uint(mu)
			next := int64(c.channelAdapt32[k]) + step
			c.channelAdapt32[k] = clampInt32(next)
			if c.channelAdapt32[k] < 0 {
				c.channelAdapt32[k] = 0
			}
			c.channelAdapt16[k] = int16(c.channelAdapt32[k] >> (ResolutionChannel32 - ResolutionChannel16))
		}
	}

	// (f) Channel arbitration (MSE)
	mseAdapt := sumAbsDiffQ8(&c.echoAdaptLogEnergy, &c.nearLogEnergy, MinMSECount) / MinMSECount
	mseStored := sumAbsDiffQ8(&c.echoStoredLogEnergy, &c.nearLogEnergy, MinMSECount) / MinMSECount
	c.mseChannelCount++
	if int32(farLogE) >= c.farEnergyMSE {
		if c.mseChannelCount >= MinMSECount+MSERouteMargin {
			switch {
			case c.startupState == 0 && c.currentVADValue == 1:
				Logger.Debug("channel promoted during startup", "mseAdapt", mseAdapt)
				c.ops.storeAdaptiveChannel(c, farAligned.mag, echoEst)
			case (mseStored<<MSEResolution) < MinMSEDiff*mseAdapt && c.storedWasWorse:
				Logger.Debug("adaptive channel reset", "mseStored", mseStored, "mseAdapt", mseAdapt)
				c.ops.resetAdaptiveChannel(c)
			case MinMSEDiff*mseStored > (mseAdapt<<MSEResolution) &&
				(!c.mseThresholdInit || (mseStored < c.mseThreshold && mseAdapt < c.mseThreshold)):
				Logger.Debug("channel promoted", "mseStored", mseStored, "mseAdapt", mseAdapt)
				c.ops.storeAdaptiveChannel(c, farAligned.mag, echoEst)
				if !c.mseThresholdInit {
					c.mseThreshold = mseAdapt
					c.mseThresholdInit = true
				} else {
					c.mseThreshold += (mseAdapt - (c.mseThreshold*5)/8) * 205 / 256
				}
			}
			c.mseChannelCount = 0
			c.mseStoredOld = mseStored
			c.mseAdaptOld = mseAdapt
		}
	}
	c.storedWasWorse = (mseStored << MSEResolution) < MinMSEDiff*mseAdapt
	c.farEnergyMSE = int32(farLogE)

	// (g) Suppression gain
	dE := absInt32(int32(nearLogE) - int32(echoStoredLogE) - EnergyDevOffset)
	var target int32
	if dE < EnergyDevTol && c.currentVADValue == 1 {
		frac := float64(dE) / float64(EnergyDevTol)
		target = int32(float64(c.sg.errParamA) - frac*float64(c.sg.errParamA-c.sg.errParamD))
	} else {
		target = c.sg.errParamD
	}
	if c.currentVADValue == 0 {
		target = 0
	}
	// hold is the larger of this block's target and the previous block's
	// (kept in supGainOld). The upstream routine this smoothing is ported
	// from branches on hold < supGain vs. not, but both arms of that
	// branch run the identical (hold-supGain)>>4 update; there is no
	// asymmetric attack/decay here despite appearances. Kept as one
	// expression rather than reproducing the dead branch.
	hold := target
	if c.sg.supGainOld > hold {
		hold = c.sg.supGainOld
	}
	c.sg.supGainOld = target
	c.sg.supGain += (hold - c.sg.supGain) >> 4

	// (h) Wiener mask
	var hnl [PartLen1]int32
	positiveCount := 0
	for k := 0; k < PartLen1; k++ {
		diff := echoEst[k] - c.echoFilt[k]
		c.echoFilt[k] += (diff * 50) >> 8

		// Ported from a fixed-point Q-domain tracker that guarded this
		// update with `tmp16no2 & (-qDomainDiff > zeros16)`, mixing a
		// headroom bit-test with a boolean comparison; the guard only
		// ever mattered when far and near magnitudes sat in very
		// different Q-domains, which int32 accumulation here doesn't
		// need to track.
		nearAbs := noisyBlock.mag[k]
		diffN := nearAbs - c.nearFilt[k]
		c.nearFilt[k] += diffN >> 2

		var h int32
		if c.nearFilt[k] == 0 {
			h = OneQ14
		} else {
			h = OneQ14 - int32((int64(c.echoFilt[k])*int64(c.sg.supGain))/int64(c.nearFilt[k]))
		}
		if h < 0 {
			h = 0
		}
		if h > OneQ14 {
			h = OneQ14
		}
		hnl[k] = h
		if h > 0 {
			positiveCount++
		}
	}

	// (i) Wideband post-shaping
	if c.mult == 2 {
		for k := range hnl {
			hnl[k] = int32((int64(hnl[k]) * int64(hnl[k])) >> 14)
		}
		var avg int64
		const lo, hi = 4, 24
		for k := lo; k <= hi; k++ {
			avg += int64(hnl[k])
		}
		avg /= (hi - lo + 1)
		for k := hi + 1; k < PartLen1; k++ {
			if int64(hnl[k]) > avg {
				hnl[k] = int32(avg)
			}
		}
	}

	// (j) NLP
	for k := range hnl {
		if hnl[k] <= NLPCompLow {
			hnl[k] = 0
		} else if hnl[k] >= NLPCompHigh {
			hnl[k] = OneQ14
		}
	}
	if positiveCount < 3 {
		for k := range hnl {
			hnl[k] = 0
		}
	}

	srcBlock := noisyBlock
	outQDomain := noisyBlock.qDomain
	if haveClean {
		srcBlock = cleanBlock
		outQDomain = cleanBlock.qDomain
	}
	packed := make([]int16, len(srcBlock.packed))
	copy(packed, srcBlock.packed)
	for k := 0; k <= PartLen; k++ {
		re := int64(packed[2*k]) * int64(hnl[k]) >> 14
		packed[2*k] = clampInt16(clampInt32(re))
		if k != 0 && k != PartLen {
			im := int64(packed[2*k+1]) * int64(hnl[k]) >> 14
			packed[2*k+1] = clampInt16(clampInt32(im))
		}
	}

	// (k) Comfort noise
	if c.cfg.CngMode {
		c.generateComfortNoise(packed, hnl[:])
	}

	// (l) Frequency -> Time
	for i := 1; i < PartLen; i++ {
		packed[2*i+1] = -packed[2*i+1]
	}
	timeSamples, scale := c.fft.Inverse(packed)
	// outQDomain + order is the pre-scale timeToFrequency applied.
	shift := scale - (outQDomain + c.fft.order)
	synthesized := make([]int16, PartLen2)
	for i := 0; i < PartLen2; i++ {
		v := int64(timeSamples[i])
		if shift > 0 {
			v <<= uint(shift)
		} else if shift < 0 {
			v >>= uint(-shift)
		}
		v = (v * int64(windowSynth(i))) >> 14
		synthesized[i] = clampInt16(clampInt32(v))
	}
	for i := 0; i < PartLen; i++ {
		out[i] = satAddInt16(synthesized[i], c.outBuf[i])
	}
	copy(c.outBuf[:], synthesized[PartLen:])

	c.totCount++
	if c.startupState == 0 && c.totCount > 200 {
		c.startupState = 1
	} else if c.startupState == 1 && c.totCount > 1000 {
		c.startupState = 2
	}
	return nil
}

// minTrackShift returns the comfort-noise downward-tracking shift: 6 (fast)
// for the first 100 blocks, then 9 (the slower steady-state rate).
func (c *AecmCore) minTrackShift() uint {
	if c.totCount < 100 {
		return 6
	}
	return 9
}

// generateComfortNoise is step (k): per-bin running-minimum noise
// estimate plus LCG-driven random-phase synthesis added into the
// suppressed spectrum, scaled by how much that bin was suppressed.
func (c *AecmCore) generateComfortNoise(packed []int16, hnl []int32) {
	shift := c.minTrackShift()
	for k := 0; k < PartLen1; k++ {
		v := absInt32(int32(packed[2*k]))
		if k != 0 && k != PartLen {
			im := absInt32(int32(packed[2*k+1]))
			if im > v {
				v = im
			}
		}
		if v < c.noiseEst[k] {
			c.noiseEst[k] -= (c.noiseEst[k] - v) >> shift
			c.noiseEstLowCtr[k]++
			c.noiseEstHighCtr[k] = 0
		} else {
			if c.noiseEstHighCtr[k] >= KNoiseEstIncCount {
				// +1 lets small estimates (including the initial 0) rise.
				c.noiseEst[k] = int32((int64(c.noiseEst[k])*2049)>>11) + 1
			}
			c.noiseEstHighCtr[k]++
			c.noiseEstLowCtr[k] = 0
		}

		c.seed = c.seed*69069 + 1
		idx := int((c.seed >> 23) % 360)
		noiseMag := (int64(OneQ14-hnl[k]) * int64(c.noiseEst[k])) >> 14
		nRe := int32((noiseMag * int64(cosTableQ13[idx])) >> 13)
		packed[2*k] = satAddInt16(packed[2*k], clampInt16(nRe))
		if k != 0 && k != PartLen {
			nIm := int32((noiseMag * int64(sinTableQ13[idx])) >> 13)
			packed[2*k+1] = satAddInt16(packed[2*k+1], clampInt16(nIm))
		} else {
			packed[2*k+1] = 0
		}
	}
}
