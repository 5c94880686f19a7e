package aecm

// Frame and block geometry. FrameLen is the 10 ms narrowband frame size;
// wideband frames are 2*FrameLen (mult == 2). Neither is a multiple of
// PartLen, so frames are buffered and processed as whole PartLen blocks.
const (
	FrameLen  = 80
	PartLen   = 64
	PartLen1  = PartLen + 1
	PartLen2  = PartLen * 2
	MaxDelay  = 100
	MaxBufLen = 64
)

// MSE arbitration between the stored and adaptive channel.
const (
	MinMSECount     = 20
	MinMSEDiff      = 29
	MSEResolution   = 5
	MSERouteMargin  = 10 // additional blocks required beyond MinMSECount before arbitration fires
)

// Channel Q-domains. The 32-bit adaptive channel keeps RESOLUTION_CHANNEL32
// fractional bits; per spec.md design note (d), this is deliberately more
// than the 16-bit mirror's RESOLUTION_CHANNEL16 bits to preserve headroom
// for LMS precision between updates, not a typo.
const (
	ResolutionChannel16 = 12
	ResolutionChannel32 = 28
	ResolutionSupgain   = 8
)

// Suppression-gain defaults (echoMode 3, the unshifted baseline).
const (
	SupgainDefault       = 256
	SupgainErrParamA     = 3072
	SupgainErrParamB     = 1536
	SupgainErrParamD     = 256
	ChannelVAD           = 16
	OneQ14               = 16384
	NLPCompLow           = 3277
	NLPCompHigh          = OneQ14
	FarEnergyMin         = 1025
	FarEnergyDiff        = 929
	FarEnergyVADRegion   = 230
	EnergyDevTol         = 400
	EnergyDevOffset      = 0
	MuMin                = 10
	MuMax                = 1
)

// Binary delay estimator spectral band and Q9 probability constants.
const (
	KBandFirst             = 12
	KBandLast              = 43
	KProbabilityOffset     = 1024
	KProbabilityLowerLimit = 8704
	KProbabilityMinSpread  = 2816
)

// Comfort-noise hysteresis.
const KNoiseEstIncCount = 5

// EchoPathSizeBytes is the size in bytes of the persisted echo path: exactly
// PartLen1 16-bit little-endian samples.
func EchoPathSizeBytes() int {
	return PartLen1 * 2
}
