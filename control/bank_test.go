package control

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stpmotion/motioncore/speed"
)

func TestDirection_Sign(t *testing.T) {
	assert.Equal(t, float32(1), Forward.Sign())
	assert.Equal(t, float32(-1), Backward.Sign())
}

func TestCombineToOmega_ExplicitRotationWinsOverNoHeadingTarget(t *testing.T) {
	got := CombineToOmega(1.0, 0.2, 99, 0)
	assert.InDelta(t, 1.2, got, 1e-6)
}

func TestCombineToOmega_HeadingHoldWhenNoRotationCommanded(t *testing.T) {
	got := CombineToOmega(0, 0.2, 0.5, 1.0)
	assert.InDelta(t, 0.5, got, 1e-6)
}

func TestCombineToOmega_HeadingHoldWinsWhenBothSet(t *testing.T) {
	got := CombineToOmega(1.0, 0.2, 0.5, 1.0)
	assert.InDelta(t, 0.5, got, 1e-6)
}

func TestBank_Calculate_ZeroErrorHoldsCommand(t *testing.T) {
	bank := NewBank(
		NewPID(1, 0, 0, -10, 10),
		NewPID(1, 0, 0, -10, 10),
		NewPID(1, 0, 0, -10, 10),
		NewPID(1, 0, 0, -10, 10),
	)
	cmd := speed.AbsoluteSpeed{ForwardMS: 0.3, StrafeMS: 0, AngularRad: 0}
	vx, vy, omega := bank.Calculate(cmd, cmd, 0, 0, Forward, 0.02)
	assert.InDelta(t, 0.3, vx, 1e-6)
	assert.InDelta(t, 0, vy, 1e-6)
	assert.InDelta(t, 0, omega, 1e-6)
}

func TestBank_Calculate_BackwardFlipsHeadingSign(t *testing.T) {
	bank := NewBank(
		NewPID(0, 0, 0, -10, 10),
		NewPID(0, 0, 0, -10, 10),
		NewPID(0, 0, 0, -10, 10),
		NewPID(2, 0, 0, -10, 10),
	)
	cmd := speed.AbsoluteSpeed{}
	desiredHeading := float32(1.0)

	_, _, omegaForward := bank.Calculate(cmd, cmd, desiredHeading, 0, Forward, 0.02)
	bank.Reset()
	_, _, omegaBackward := bank.Calculate(cmd, cmd, desiredHeading, 0, Backward, 0.02)

	assert.NotEqual(t, omegaForward, omegaBackward)
}

func TestBank_Reset_ClearsAllAxes(t *testing.T) {
	bank := NewBank(
		NewPID(0, 1, 0, -10, 10),
		NewPID(0, 1, 0, -10, 10),
		NewPID(0, 1, 0, -10, 10),
		NewPID(0, 1, 0, -10, 10),
	)
	cmd := speed.AbsoluteSpeed{ForwardMS: 1, StrafeMS: 1, AngularRad: 1}
	measured := speed.AbsoluteSpeed{}
	bank.Calculate(cmd, measured, 0, 0, Forward, 0.02)
	bank.Reset()

	assert.Equal(t, float32(0), bank.Vx.iTerm)
	assert.Equal(t, float32(0), bank.Vy.iTerm)
	assert.Equal(t, float32(0), bank.W.iTerm)
	assert.Equal(t, float32(0), bank.Heading.iTerm)
}
