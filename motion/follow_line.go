package motion

import (
	"context"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/control"
	"github.com/stpmotion/motioncore/device"
	"github.com/stpmotion/motioncore/speed"
)

// lineCorrection is the fixed angular nudge magnitude follow_line applies
// when a sensor reads black, matching the original's hard-coded 0.26.
// line_up's micro-correct phase takes its sign from it but scales the
// nudge down to lineUpNudgeSpeed.
const lineCorrection = 0.26

// FollowLine drives forward while nudging the heading away from whichever
// floor sensor reads black, per §4.6: forward passes through unchanged;
// angular becomes sign(forward)*lineCorrection when the left sensor is on
// black (whatever the right one reads), sign(forward)*-lineCorrection when
// only the right one is, and zero when neither is.
func FollowLine(ctx context.Context, dev *device.Device, sensors device.LineSensors, cond condition.Function, sf speed.Function, opts ...device.SpeedWhileOption) error {
	wrapped := func(result condition.Result) speed.Speed {
		current := sf(result)
		direction := control.Sign(current.Forward)

		var angular float32
		switch {
		case sensors.LeftBlack():
			angular = direction * lineCorrection
		case sensors.RightBlack():
			angular = direction * -lineCorrection
		}
		return speed.Speed{Forward: current.Forward, Angular: angular}
	}
	return dev.SetSpeedWhile(ctx, cond, wrapped, opts...)
}
