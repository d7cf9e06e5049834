package motion

import (
	"context"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/control"
	"github.com/stpmotion/motioncore/device"
	"github.com/stpmotion/motioncore/speed"
)

// DriveArc drives a constant-radius arc at the given forward throttle,
// per §4.6: each tick returns (fwdPct, 0, (v_max·fwdPct/radius)/ω_max), so
// the commanded angular percent produces the angular rate that keeps a
// wheel travelling at v_max·fwdPct on a circle of the given radius. dir
// flips the sign of both forward and angular components ("reverse around
// the same arc" rather than "mirror the arc").
func DriveArc(ctx context.Context, dev *device.Device, cond condition.Function, radiusCM, fwdPct float32, dir control.Direction, opts ...device.SpeedWhileOption) error {
	radiusM := radiusCM / 100
	max := dev.MaxSpeeds()
	sign := dir.Sign()

	wrapped := func(condition.Result) speed.Speed {
		forward := fwdPct * sign
		var angular float32
		if radiusM != 0 && max.AngularRad != 0 {
			angular = (max.ForwardMS * forward / radiusM) / max.AngularRad
		}
		return speed.Speed{Forward: forward, Angular: angular}
	}
	return dev.SetSpeedWhile(ctx, cond, wrapped, opts...)
}
