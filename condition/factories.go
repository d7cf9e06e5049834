package condition

import (
	"time"

	"github.com/chewxy/math32"
)

// ---- Undefined: WhileTrue / WhileFalse ----

type undefinedResult struct {
	predicate func() bool
	running   bool
}

func (u *undefinedResult) Variant() Variant { return VariantUndefined }
func (u *undefinedResult) Progress() float32 { return 0 }
func (u *undefinedResult) IsLoopRunning() bool { return u.running }
func (u *undefinedResult) Update(_ *DriveState, _ time.Time) {
	u.running = u.predicate()
}

// WhileTrue keeps the loop running for as long as f returns true.
func WhileTrue(f func() bool) Function {
	return func(bool) Result {
		return &undefinedResult{predicate: f, running: true}
	}
}

// WhileFalse keeps the loop running for as long as f returns false.
func WhileFalse(f func() bool) Function {
	return func(bool) Result {
		return &undefinedResult{predicate: func() bool { return !f() }, running: true}
	}
}

// ---- Timed ----

type timedResult struct {
	defined
	start   time.Time
	started bool
}

func (t *timedResult) Variant() Variant { return VariantTimed }

func (t *timedResult) Update(_ *DriveState, now time.Time) {
	if !t.started {
		t.start = now
		t.started = true
	}
	elapsed := float32(now.Sub(t.start) / time.Millisecond)
	t.Current = elapsed
	t.Running = elapsed < t.Target
}

// ForTime builds a Timed conditional for the given wall-clock duration.
func ForTime(d time.Duration) Function {
	target := float32(d / time.Millisecond)
	live := &timedResult{defined: defined{Target: target, Running: true}}
	return func(typeCheck bool) Result {
		if typeCheck {
			return &timedResult{defined: defined{Target: target}}
		}
		return live
	}
}

// ForSeconds is ForTime expressed in seconds, matching the lineage's
// forSeconds helper.
func ForSeconds(seconds float32) Function {
	return ForTime(time.Duration(seconds * float32(time.Second)))
}

// ---- Distance / ForwardDistance / SideDistance ----

type distanceResult struct {
	defined
	axis distanceAxis
}

type distanceAxis int

const (
	axisRadial distanceAxis = iota
	axisForward
	axisSide
)

func (d *distanceResult) Variant() Variant {
	switch d.axis {
	case axisForward:
		return VariantForwardDistance
	case axisSide:
		return VariantSideDistance
	default:
		return VariantDistance
	}
}

func (d *distanceResult) Update(state *DriveState, _ time.Time) {
	dx, dy := state.DrivenDistance()
	switch d.axis {
	case axisForward:
		d.Current = dx
	case axisSide:
		d.Current = dy
	default:
		d.Current = math32.Sqrt(dx*dx + dy*dy)
	}
	d.Running = math32.Abs(d.Current) <= d.Target/100
}

func newDistance(targetCM float32, axis distanceAxis) Function {
	live := &distanceResult{defined: defined{Target: targetCM, Running: true}, axis: axis}
	return func(typeCheck bool) Result {
		if typeCheck {
			return &distanceResult{defined: defined{Target: targetCM}, axis: axis}
		}
		return live
	}
}

// ForDistance terminates once the radial driven distance reaches the given
// number of centimeters.
func ForDistance(cm float32) Function { return newDistance(cm, axisRadial) }

// ForForwardDistance is the omni-only forward-axis variant.
func ForForwardDistance(cm float32) Function { return newDistance(cm, axisForward) }

// ForSideDistance is the omni-only strafe-axis variant.
func ForSideDistance(cm float32) Function { return newDistance(cm, axisSide) }

// ---- Rotation ----

type rotationResult struct {
	defined
	targetDeg float32
}

func (r *rotationResult) Variant() Variant { return VariantRotation }

func (r *rotationResult) Update(state *DriveState, _ time.Time) {
	state.DesiredHeading = r.targetDeg * math32.Pi / 180
	r.Target = state.DesiredHeading
	r.Current = state.CurrentHeading
	r.Running = math32.Abs(math32.Abs(r.Current)-math32.Abs(r.Target)) >= 0.01
}

// newRotation builds a Rotation conditional for a signed target in
// degrees. ForCWRotation and ForCCWRotation resolve the CW/CCW pair of the
// lineage's forCWRotation / forCCWRotation builtins by the sign they pass
// in, against §3's angular-sign convention (positive = clockwise viewed
// from above).
func newRotation(deg float32) Function {
	live := &rotationResult{defined: defined{Running: true}, targetDeg: deg}
	return func(typeCheck bool) Result {
		if typeCheck {
			return &rotationResult{targetDeg: deg}
		}
		return live
	}
}

// ForCWRotation rotates clockwise (viewed from above) by deg degrees.
func ForCWRotation(deg float32) Function { return newRotation(deg) }

// ForCCWRotation rotates counter-clockwise by deg degrees.
func ForCCWRotation(deg float32) Function { return newRotation(-deg) }

// ---- MotorTicks ----

type motorTicksResult struct {
	defined
	absolute bool
}

func (m *motorTicksResult) Variant() Variant { return VariantMotorTicks }

// Update is a placeholder: the motor-ticks variant short-circuits the main
// engine loop (§4.3) in favor of the move_to_ticks re-issue-until-done
// protocol, so its progress is driven by the motor primitive that consumes
// it rather than by DriveState.
func (m *motorTicksResult) Update(_ *DriveState, _ time.Time) {}

// ForTicks builds a MotorTicks conditional for a relative tick target.
func ForTicks(n int) Function {
	return func(bool) Result {
		return &motorTicksResult{defined: defined{Target: float32(n)}, absolute: false}
	}
}

// ForAbsoluteTicks builds a MotorTicks conditional for an absolute tick
// target.
func ForAbsoluteTicks(n int) Function {
	return func(bool) Result {
		return &motorTicksResult{defined: defined{Target: float32(n)}, absolute: true}
	}
}
