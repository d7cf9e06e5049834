// Package kinematics defines the narrow Model trait shared by the
// differential and mecanum drivetrains (C4), per the "polymorphism over
// devices" design note: one small interface, two concrete implementations,
// no type switch and no deep hierarchy.
package kinematics

import "github.com/stpmotion/motioncore/speed"

// Model converts between chassis-frame velocities and per-wheel angular
// rates, and reports the per-device speed ceilings used to scale a
// normalized Speed into an AbsoluteSpeed.
type Model interface {
	// DOF is the number of independently actuated wheels (2 or 4).
	DOF() int

	// Forward computes chassis-frame (vx, vy, omega) from a per-wheel
	// angular-rate vector (rad/s), reading len(wheelRateRadS) == DOF().
	Forward(wheelRateRadS []float32) (vx, vy, omega float32)

	// Inverse computes the per-wheel angular-rate vector (rad/s) that
	// realizes chassis-frame (vx, vy, omega).
	Inverse(vx, vy, omega float32) (wheelRateRadS []float32)

	// MaxSpeeds reports the per-axis ceiling this model can reach given its
	// calibrated wheel radius, track geometry and encoder ticks/rev.
	MaxSpeeds() speed.MaxSpeeds

	// TicksPerRevolution and WheelRadius are exposed so encoder deltas can
	// be converted to/from wheel angular rate outside the model (§4.2's
	// tick<->rad/s conversions are identical for both drivetrains).
	TicksPerRevolution() float32
	WheelRadius() float32
}
