// Package mecanum implements the four-wheel omni/mecanum kinematic model
// (§4.2), using the spec's K^-1 matrix and wheel ordering rather than the
// differing sign/ordering convention the teacher's own mecanum package
// uses — grounded on that package's struct shape (wheel radius + chassis
// factor fields) only, not its matrix. K's omega row divides by L instead
// of multiplying by it, so that Forward exactly inverts Inverse (see
// Forward).
package mecanum

import (
	"fmt"

	"github.com/stpmotion/motioncore/kinematics"
	"github.com/stpmotion/motioncore/speed"
)

const twoPi = 2 * 3.14159265358979323846

// Wheel indices, in the order the K / K^-1 matrices of §4.2 assume.
const (
	FrontRight = 0
	FrontLeft  = 1
	RearLeft   = 2
	RearRight  = 3
)

// Model is the four-wheel omni/mecanum drivetrain.
type Model struct {
	wheelRadiusM float32
	// chassisFactor is L, the half-wheelbase + half-track sum that scales
	// the omega column/row of K^-1 / K.
	chassisFactor   float32
	ticksPerRev     float32
	maxTicksPerSecA float32
}

var _ kinematics.Model = (*Model)(nil)

// New builds a mecanum model. chassisFactor is L = (half-wheelbase +
// half-track), the single geometric constant the spec's K/K^-1 matrices
// use in place of separate length and width terms.
func New(wheelRadiusM, chassisFactor, ticksPerRev, maxTicksPerSec float32) (*Model, error) {
	if wheelRadiusM <= 0 || chassisFactor <= 0 || ticksPerRev <= 0 {
		return nil, fmt.Errorf("mecanum: wheel radius, chassis factor and ticks/rev must be positive")
	}
	return &Model{
		wheelRadiusM:    wheelRadiusM,
		chassisFactor:   chassisFactor,
		ticksPerRev:     ticksPerRev,
		maxTicksPerSecA: maxTicksPerSec,
	}, nil
}

func (m *Model) DOF() int                    { return 4 }
func (m *Model) TicksPerRevolution() float32 { return m.ticksPerRev }
func (m *Model) WheelRadius() float32        { return m.wheelRadiusM }

// Forward applies K (scale r/4, rows [1,1,1,1] / [1,-1,1,-1] /
// (1/L)·[-1,1,1,-1]) to the four wheel angular rates (rad/s), in
// FrontRight/FrontLeft/RearLeft/RearRight order. This is the Moore-Penrose
// pseudo-inverse of Inverse's K^-1: since J^T J is diagonal with a 1/L²
// term on the omega row, omega's scale divides by L rather than multiplying
// it, unlike the vx/vy rows.
func (m *Model) Forward(wheelRateRadS []float32) (vx, vy, omega float32) {
	fr, fl, rl, rr := wheelRateRadS[FrontRight], wheelRateRadS[FrontLeft], wheelRateRadS[RearLeft], wheelRateRadS[RearRight]
	scale := m.wheelRadiusM / 4
	vx = scale * (fr + fl + rl + rr)
	vy = scale * (fr - fl + rl - rr)
	omega = (scale / m.chassisFactor) * (-fr + fl + rl - rr)
	return vx, vy, omega
}

// Inverse applies K^-1 (scale 1/r, rows [+1,+1,-L] / [+1,-1,+L] / [+1,+1,+L]
// / [+1,-1,-L]) to a desired chassis-frame (vx, vy, omega).
func (m *Model) Inverse(vx, vy, omega float32) []float32 {
	inv := 1 / m.wheelRadiusM
	l := m.chassisFactor
	rates := make([]float32, 4)
	rates[FrontRight] = inv * (vx + vy - l*omega)
	rates[FrontLeft] = inv * (vx - vy + l*omega)
	rates[RearLeft] = inv * (vx + vy + l*omega)
	rates[RearRight] = inv * (vx - vy - l*omega)
	return rates
}

func (m *Model) MaxSpeeds() speed.MaxSpeeds {
	vMax := twoPi * m.wheelRadiusM * m.maxTicksPerSecA / m.ticksPerRev
	omegaMax := vMax / m.chassisFactor
	return speed.MaxSpeeds{ForwardMS: vMax, StrafeMS: vMax, AngularRad: omegaMax}
}
