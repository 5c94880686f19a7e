package aecm

// coreOps is the capability object the per-block engine dispatches
// through for the three routines the upstream source historically
// selected via function pointers set once at init time for a scalar,
// NEON, or MIPS-DSP implementation. This module only ever runs on the Go
// scalar path, but keeps the seam as an interface (selected once in
// NewAecmCore) rather than a package-level function-pointer variable, so
// a future SIMD-backed implementation can be substituted without
// touching ProcessBlock.
type coreOps interface {
	// calcLinearEnergies computes, for one aligned far-end spectrum, the
	// per-bin expected-echo magnitude from the stored channel
	// (echoEst), and the scalar energies summed from the stored and
	// adaptive channels.
	calcLinearEnergies(c *AecmCore, far []int32) (echoEst []int32, energyAdapt, energyStored int64)
	// storeAdaptiveChannel copies the adaptive channel into the stored
	// channel (channel promotion).
	storeAdaptiveChannel(c *AecmCore, far []int32, echoEst []int32)
	// resetAdaptiveChannel copies the stored channel into the adaptive
	// channel (adaptive channel reset after it has diverged).
	resetAdaptiveChannel(c *AecmCore)
}

type scalarOps struct{}

func (scalarOps) calcLinearEnergies(c *AecmCore, far []int32) (echoEst []int32, energyAdapt, energyStored int64) {
	echoEst = make([]int32, PartLen1)
	for i := 0; i < PartLen1; i++ {
		echoEst[i] = int32((int64(c.channelStored[i]) * int64(far[i])) >> ResolutionChannel16)
		energyStored += int64(echoEst[i])
		energyAdapt += (int64(c.channelAdapt16[i]) * int64(far[i])) >> ResolutionChannel16
	}
	return echoEst, energyAdapt, energyStored
}

func (scalarOps) storeAdaptiveChannel(c *AecmCore, far []int32, echoEst []int32) {
	for i := 0; i < PartLen1; i++ {
		c.channelStored[i] = c.channelAdapt16[i]
		echoEst[i] = int32((int64(c.channelStored[i]) * int64(far[i])) >> ResolutionChannel16)
	}
}

func (scalarOps) resetAdaptiveChannel(c *AecmCore) {
	for i := 0; i < PartLen1; i++ {
		c.channelAdapt16[i] = c.channelStored[i]
		c.channelAdapt32[i] = int32(c.channelStored[i]) << (ResolutionChannel32 - ResolutionChannel16)
	}
}
