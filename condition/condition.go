// Package condition implements the ConditionalResult variants and the
// pluggable loop-termination predicates of §3/§4.3 (C5). Go has no tagged
// union, so each variant is a concrete type satisfying the small Result
// interface; Variant() reports the tag for dispatch (P8) without a type
// switch at call sites that only care about progress/running.
package condition

import "time"

// DriveState is the per-device motion state a Result reads and mutates
// each tick (§3). It is owned by the device and borrowed by the engine and
// by Results for the duration of one setSpeedWhile call — see the
// "cyclic references" design note.
type DriveState struct {
	CurrentHeading, DesiredHeading float32

	RampedForwardMS, RampedStrafeMS, RampedOmegaRad float32

	// DrivenDistance reports accumulated (dx, dy) in the robot frame since
	// the device was constructed (or last reset). Set once by the owning
	// device; a closure, not a back-pointer, to avoid a state<->device
	// reference cycle.
	DrivenDistance func() (dx, dy float32)
}

// Reset zeroes the ramps and re-bases desired_heading relative to the
// current heading, implementing §4.5 step 1 and the DriveState invariant
// that successive setSpeedWhile calls are independent.
func (s *DriveState) Reset() {
	s.RampedForwardMS = 0
	s.RampedStrafeMS = 0
	s.RampedOmegaRad = 0
	s.DesiredHeading -= s.CurrentHeading
	s.CurrentHeading = 0
}

// Variant tags the concrete ConditionalResult kind, per §3.
type Variant int

const (
	VariantUndefined Variant = iota
	VariantTimed
	VariantDistance
	VariantForwardDistance
	VariantSideDistance
	VariantRotation
	VariantMotorTicks
)

// Result is satisfied by every ConditionalResult variant.
type Result interface {
	// Update advances the result from the current drive state and wall
	// clock; called once per tick by the motion engine.
	Update(state *DriveState, now time.Time)
	// Progress is current/target, used by lerp-style speed functions.
	Progress() float32
	// IsLoopRunning reports whether the motion engine should keep ticking.
	IsLoopRunning() bool
	Variant() Variant
}

// Function is a conditional function (§4.3): called with typeCheck=true
// once at loop start to learn the variant without mutating state, and with
// typeCheck=false every tick thereafter to obtain the live, mutating
// result.
type Function func(typeCheck bool) Result

// defined is the shared Defined(target, current, running) shape (§3) that
// every non-Undefined variant embeds.
type defined struct {
	Target, Current float32
	Running         bool
}

func (d *defined) Progress() float32 {
	if d.Target == 0 {
		return 0
	}
	return d.Current / d.Target
}

func (d *defined) IsLoopRunning() bool { return d.Running }
