package motion

import (
	"context"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/device"
	"github.com/stpmotion/motioncore/speed"
)

// Tunables for the line_up three-phase sequence (§4.6, Open Question (b)).
// The original's commented-out implementation used absolute m/s values
// (0.4, 0.05/0.015, -0.01); this module's Speed is normalized, so these are
// chosen conservatively in that spirit rather than copied literally.
const (
	lineUpApproachSpeed = 0.2
	lineUpNudgeSpeed    = 0.05
	lineUpRetreatCM     = 3.0
)

// LineUp runs the three-phase squaring maneuver against a line, resolving
// Open Question (b): phase 1 approaches until both sensors read black,
// phase 2 micro-corrects per side while either sensor still reads black,
// phase 3 retreats a fixed short distance so the chassis parks just behind
// the line. approachSign is +1 for forward_line_up, -1 for
// backward_line_up.
func LineUp(ctx context.Context, dev *device.Device, sensors device.LineSensors, approachSign float32, opts ...device.SpeedWhileOption) error {
	bothBlack := func() bool { return sensors.LeftBlack() && sensors.RightBlack() }
	eitherBlack := func() bool { return sensors.LeftBlack() || sensors.RightBlack() }

	approach := speed.Constant(speed.Speed{Forward: approachSign * lineUpApproachSpeed})
	if err := dev.SetSpeedWhile(ctx, condition.WhileFalse(bothBlack), approach, opts...); err != nil {
		return err
	}

	nudge := func(condition.Result) speed.Speed {
		left := sensors.LeftBlack()
		right := sensors.RightBlack()
		var angular float32
		switch {
		case left && !right:
			angular = -approachSign * lineCorrection
		case right && !left:
			angular = approachSign * lineCorrection
		}
		return speed.Speed{Angular: angular * lineUpNudgeSpeed / lineCorrection}
	}
	if err := dev.SetSpeedWhile(ctx, condition.WhileTrue(eitherBlack), nudge, opts...); err != nil {
		return err
	}

	retreat := speed.Constant(speed.Speed{Forward: -approachSign * lineUpApproachSpeed / 2})
	return dev.SetSpeedWhile(ctx, condition.ForDistance(lineUpRetreatCM), retreat, opts...)
}

// ForwardLineUp squares the chassis against the line while approaching
// forward.
func ForwardLineUp(ctx context.Context, dev *device.Device, sensors device.LineSensors, opts ...device.SpeedWhileOption) error {
	return LineUp(ctx, dev, sensors, 1, opts...)
}

// BackwardLineUp squares the chassis against the line while approaching
// backward.
func BackwardLineUp(ctx context.Context, dev *device.Device, sensors device.LineSensors, opts ...device.SpeedWhileOption) error {
	return LineUp(ctx, dev, sensors, -1, opts...)
}
