package control

import "github.com/chewxy/math32"

// Sign returns -1, 0 or 1, matching the signf helper this package's
// heading-error computation is grounded on.
func Sign(value float32) float32 {
	switch {
	case value > 0:
		return 1
	case value < 0:
		return -1
	default:
		return 0
	}
}

// MinimalAngleDifference returns the unsigned smallest angle (radians)
// between a and b, wrapping both into [0, 2pi) first (P6).
func MinimalAngleDifference(a, b float32) float32 {
	twoPi := float32(2 * 3.14159265358979323846)
	angle1 := math32.Mod(a, twoPi)
	if angle1 < 0 {
		angle1 += twoPi
	}
	angle2 := math32.Mod(b, twoPi)
	if angle2 < 0 {
		angle2 += twoPi
	}
	diff := math32.Abs(angle1 - angle2)
	if diff > twoPi-diff {
		return twoPi - diff
	}
	return diff
}
