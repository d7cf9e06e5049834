package motion

import (
	"context"

	"github.com/chewxy/math32"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/device"
	"github.com/stpmotion/motioncore/speed"
)

// Strafe holds a constant strafe percent with zero forward and angular
// components, per §4.6's omni-only primitive.
func Strafe(ctx context.Context, dev *device.Device, cond condition.Function, strafePct float32, opts ...device.SpeedWhileOption) error {
	return dev.SetSpeedWhile(ctx, cond, speed.Constant(speed.Speed{Strafe: strafePct}), opts...)
}

// StrafeAtAngle drives at speedPct split between forward and strafe by a
// fixed angle in radians (0 = straight ahead, π/2 = pure right strafe),
// the absolute-angle variant named in §4.6.
func StrafeAtAngle(ctx context.Context, dev *device.Device, cond condition.Function, speedPct, angleRad float32, opts ...device.SpeedWhileOption) error {
	return StrafeAtAngleFunc(ctx, dev, cond, speedPct, func(condition.Result) float32 { return angleRad }, opts...)
}

// StrafeAtAngleFunc is the angle-function variant of StrafeAtAngle: angle
// is recomputed from the conditional result every tick, e.g. for strafing
// along a slowly rotating heading.
func StrafeAtAngleFunc(ctx context.Context, dev *device.Device, cond condition.Function, speedPct float32, angle func(condition.Result) float32, opts ...device.SpeedWhileOption) error {
	wrapped := func(result condition.Result) speed.Speed {
		a := angle(result)
		return speed.Speed{
			Forward: speedPct * math32.Cos(a),
			Strafe:  speedPct * math32.Sin(a),
		}
	}
	return dev.SetSpeedWhile(ctx, cond, wrapped, opts...)
}
