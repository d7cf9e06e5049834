package control

// Limits bounds the per-tick change (units/second) allowed on each axis of
// an AbsoluteSpeed, grounded on Device::forwardMaxAccel/strafeMaxAccel/
// angularMaxAccel.
type Limits struct {
	ForwardMS  float32
	StrafeMS   float32
	AngularRad float32
}

// Ramp accel-limits a commanded axis value toward target, clamping the
// per-tick delta to maxRate*dt and returning the new value (P2: the
// ramped value never overshoots target and moves monotonically toward it).
func Ramp(current, target, maxRate, dt float32) float32 {
	delta := target - current
	maxDelta := maxRate * dt
	switch {
	case delta > maxDelta:
		delta = maxDelta
	case delta < -maxDelta:
		delta = -maxDelta
	}
	return current + delta
}

// RampedSpeed holds the three accel-limited axis values persisted across
// ticks (the RampedForwardMS/RampedStrafeMS/RampedOmegaRad fields of
// condition.DriveState).
type RampedSpeed struct {
	ForwardMS, StrafeMS, AngularRad float32
}

// Apply advances all three axes of a RampedSpeed one tick toward target,
// subject to limits.
func (l Limits) Apply(current RampedSpeed, target RampedSpeed, dt float32) RampedSpeed {
	return RampedSpeed{
		ForwardMS:  Ramp(current.ForwardMS, target.ForwardMS, l.ForwardMS, dt),
		StrafeMS:   Ramp(current.StrafeMS, target.StrafeMS, l.StrafeMS, dt),
		AngularRad: Ramp(current.AngularRad, target.AngularRad, l.AngularRad, dt),
	}
}
