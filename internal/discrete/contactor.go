package discrete

import "math"

// ContactorEnergized implements the pull-in rule: the coil is energized iff the
// larger of the DC and AC voltage-magnitude deltas across its two coil
// terminals, plus the tolerance, reaches the pull-in voltage. Either
// voltage may be unavailable (nil) when a terminal isn't mapped to a
// node; if both are, the contactor is de-energized.
func ContactorEnergized(dcDelta, acDelta *float64, pullInVoltage float64) bool {
	var dv float64
	have := false
	if dcDelta != nil {
		dv = math.Abs(*dcDelta)
		have = true
	}
	if acDelta != nil {
		if v := math.Abs(*acDelta); !have || v > dv {
			dv = v
		}
		have = true
	}
	if !have {
		return false
	}
	return dv+Tolerance >= pullInVoltage
}
