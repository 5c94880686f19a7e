package aecm

// AecmConfig is the caller-tunable configuration, set via SetConfig.
type AecmConfig struct {
	CngMode  bool // inject comfort noise in place of suppressed residual
	EchoMode int  // 0..4, suppression-strength preset; 3 is the default
}

// DefaultConfig returns the baseline configuration (cngMode on, echoMode 3).
func DefaultConfig() AecmConfig {
	return AecmConfig{CngMode: true, EchoMode: 3}
}

// echoModeShift maps echoMode 0..4 to the left-shift applied to the
// suppression-gain parameter set; negative values are right-shifts.
var echoModeShift = [5]int{-3, -2, -1, 0, 1}

func shiftParam(v int, shift int) int {
	if shift >= 0 {
		return v << uint(shift)
	}
	return v >> uint(-shift)
}

// supgainParams is the shifted SUPGAIN_* parameter set for one echoMode.
type supgainParams struct {
	supGain       int32
	supGainOld    int32
	errParamA     int32
	errParamD     int32
	errParamDiffAB int32
	errParamDiffBD int32
}

func newSupgainParams(echoMode int) supgainParams {
	shift := echoModeShift[echoMode]
	a := int32(shiftParam(SupgainErrParamA, shift))
	b := int32(shiftParam(SupgainErrParamB, shift))
	d := int32(shiftParam(SupgainErrParamD, shift))
	g := int32(shiftParam(SupgainDefault, shift))
	return supgainParams{
		supGain:        g,
		supGainOld:     g,
		errParamA:      a,
		errParamD:      d,
		errParamDiffAB: a - b,
		errParamDiffBD: b - d,
	}
}
