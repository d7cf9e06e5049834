// Package speed holds the normalized Speed and SI-unit AbsoluteSpeed
// triples (§3) and the pluggable SpeedFunction built-ins (§4.3, C6).
package speed

import "github.com/stpmotion/motioncore/condition"

// Speed is a normalized (forward, strafe, angular) command, each component
// in [-1, 1]. Forward positive drives the chassis forward, strafe positive
// moves right, angular positive spins clockwise viewed from above.
type Speed struct {
	Forward, Strafe, Angular float32
}

// Predefined magnitudes for forward speed, matching the teacher's named
// presets in spirit (Slowest..Fastest).
const (
	Slowest = 0.1
	Slow    = 0.2
	Medium  = 0.5
	Fast    = 0.9
	Fastest = 1.0
)

func New(forward, strafe, angular float32) Speed {
	return Speed{Forward: forward, Strafe: strafe, Angular: angular}
}

// Stop is the zero speed.
func Stop() Speed { return Speed{} }

// Backward negates all three components, so a speed can be driven in
// reverse without recomputing it from scratch.
func (s Speed) Backward() Speed {
	return Speed{-s.Forward, -s.Strafe, -s.Angular}
}

// FromWheels builds a no-strafe differential-drive speed from two
// normalized per-wheel commands.
func FromWheels(left, right float32) Speed {
	return Speed{
		Forward: (left + right) / 2,
		Angular: (right - left) / 2,
	}
}

// AbsoluteSpeed is a Speed scaled into SI units by a device's max speeds.
type AbsoluteSpeed struct {
	ForwardMS, StrafeMS float32
	AngularRad          float32
}

// MaxSpeeds is the per-axis scaling a device exposes for ToAbsolute.
type MaxSpeeds struct {
	ForwardMS, StrafeMS float32
	AngularRad          float32
}

// ToAbsolute scales a normalized Speed into AbsoluteSpeed using max. When
// throttle is true (the motion engine's do_correction path), the result is
// scaled by 95% to leave headroom for PID correction (§4.5 step 3).
func (s Speed) ToAbsolute(max MaxSpeeds, throttle bool) AbsoluteSpeed {
	scale := float32(1.0)
	if throttle {
		scale = 0.95
	}
	return AbsoluteSpeed{
		ForwardMS:  s.Forward * max.ForwardMS * scale,
		StrafeMS:   s.Strafe * max.StrafeMS * scale,
		AngularRad: s.Angular * max.AngularRad * scale,
	}
}

// Function computes a Speed from the current conditional result, called
// once per motion tick (§4.3).
type Function func(result condition.Result) Speed

// Constant ignores the result and always returns s.
func Constant(s Speed) Function {
	return func(condition.Result) Speed { return s }
}

// Lerp interpolates componentwise from a to b by the result's progress.
func Lerp(a, b Speed) Function {
	return func(result condition.Result) Speed {
		t := result.Progress()
		return Speed{
			Forward: a.Forward + (b.Forward-a.Forward)*t,
			Strafe:  a.Strafe + (b.Strafe-a.Strafe)*t,
			Angular: a.Angular + (b.Angular-a.Angular)*t,
		}
	}
}

// Generator calls f every tick, ignoring the conditional result.
func Generator(f func() Speed) Function {
	return func(condition.Result) Speed { return f() }
}
