// Package differential implements the two-wheel kinematic model (§4.2),
// grounded on the teacher's wheels.diff struct shape (wheel radius +
// wheelbase fields, Forward/Inverse pair) adapted to the kinematics.Model
// interface and the spec's exact formulas.
package differential

import (
	"fmt"

	"github.com/stpmotion/motioncore/kinematics"
	"github.com/stpmotion/motioncore/speed"
)

const twoPi = 2 * 3.14159265358979323846

// Model is the two-wheel differential drivetrain.
type Model struct {
	wheelRadiusM    float32
	wheelbaseM      float32
	ticksPerRev     float32
	maxTicksPerSecA float32 // encoder-reported ceiling, shared by both wheels
}

var _ kinematics.Model = (*Model)(nil)

// New builds a differential-drive model. maxTicksPerSec is the motor's
// rated encoder-tick ceiling (N_ticks_max in §4.2).
func New(wheelRadiusM, wheelbaseM, ticksPerRev, maxTicksPerSec float32) (*Model, error) {
	if wheelRadiusM <= 0 || wheelbaseM <= 0 || ticksPerRev <= 0 {
		return nil, fmt.Errorf("differential: wheel radius, wheelbase and ticks/rev must be positive")
	}
	return &Model{
		wheelRadiusM:    wheelRadiusM,
		wheelbaseM:      wheelbaseM,
		ticksPerRev:     ticksPerRev,
		maxTicksPerSecA: maxTicksPerSec,
	}, nil
}

func (m *Model) DOF() int                    { return 2 }
func (m *Model) TicksPerRevolution() float32 { return m.ticksPerRev }
func (m *Model) WheelRadius() float32        { return m.wheelRadiusM }

// Forward recovers (vx, omega) from per-wheel angular rate (rad/s); strafe
// is always zero for a differential drivetrain.
func (m *Model) Forward(wheelRateRadS []float32) (vx, vy, omega float32) {
	left, right := wheelRateRadS[0], wheelRateRadS[1]
	vLeft := left * m.wheelRadiusM
	vRight := right * m.wheelRadiusM
	vx = (vLeft + vRight) / 2
	omega = (vRight - vLeft) / m.wheelbaseM
	return vx, 0, omega
}

// Inverse computes per-wheel angular rate (rad/s) for a desired (vx, _, omega);
// strafe is ignored, as this drivetrain cannot realize it.
func (m *Model) Inverse(vx, _ float32, omega float32) []float32 {
	vLeft := vx - omega*m.wheelbaseM/2
	vRight := vx + omega*m.wheelbaseM/2
	return []float32{vLeft / m.wheelRadiusM, vRight / m.wheelRadiusM}
}

func (m *Model) MaxSpeeds() speed.MaxSpeeds {
	vMax := twoPi * m.wheelRadiusM * m.maxTicksPerSecA / m.ticksPerRev
	omegaMax := 2 * vMax / m.wheelbaseM
	return speed.MaxSpeeds{ForwardMS: vMax, StrafeMS: 0, AngularRad: omegaMax}
}
