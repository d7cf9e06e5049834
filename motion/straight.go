// Package motion implements the motion-primitive family (C9): thin wrappers
// around Device.SetSpeedWhile that shape a SpeedFunction for one particular
// maneuver, grounded on libstp::motion's drive_straight/rotate/follow_line/
// line_up family.
package motion

import (
	"context"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/device"
	"github.com/stpmotion/motioncore/speed"
)

func zeroStrafeAngular(sf speed.Function) speed.Function {
	return func(result condition.Result) speed.Speed {
		s := sf(result)
		return speed.Speed{Forward: s.Forward}
	}
}

func zeroForwardStrafe(sf speed.Function) speed.Function {
	return func(result condition.Result) speed.Speed {
		s := sf(result)
		return speed.Speed{Angular: s.Angular}
	}
}

// DriveStraight drives forward (or backward, for negative forward speeds)
// with no strafe or rotation, per §4.6: it wraps sf to zero its strafe and
// angular components before handing it to SetSpeedWhile.
func DriveStraight(ctx context.Context, dev *device.Device, cond condition.Function, sf speed.Function, opts ...device.SpeedWhileOption) error {
	return dev.SetSpeedWhile(ctx, cond, zeroStrafeAngular(sf), opts...)
}

// Rotate spins the chassis in place, per §4.6: it wraps sf to zero forward
// and strafe, keeping only the angular component.
func Rotate(ctx context.Context, dev *device.Device, cond condition.Function, sf speed.Function, opts ...device.SpeedWhileOption) error {
	return dev.SetSpeedWhile(ctx, cond, zeroForwardStrafe(sf), opts...)
}
