package device

import (
	"context"
	"time"

	"github.com/chewxy/math32"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/control"
	"github.com/stpmotion/motioncore/speed"
)

const twoPi = 2 * 3.14159265358979323846

// Hard and soft safety bounds for per-wheel velocity commands (§4.7/§7).
const (
	hardVelocityLimit = 1500
	softVelocityLimit = 1000
)

// SetSpeedWhile is the central motion loop (§4.5/C8): it drives the
// chassis with sf's speed commands for as long as cond's result reports
// the loop running, at the session's tick rate, returning when the
// condition terminates, the context is cancelled, or an error occurs.
func (d *Device) SetSpeedWhile(ctx context.Context, cond condition.Function, sf speed.Function, opts ...SpeedWhileOption) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)

	s := newSession(cond, sf, opts)
	d.session = s
	defer func() { d.session = nil }()

	if d.useGoroutine {
		d.startEstimatorGoroutine(ctx)
	}

	ticker := time.NewTicker(s.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.autoStop {
				_ = d.wheels.Stop()
			}
			return ctx.Err()
		case now := <-ticker.C:
			running, err := d.tick(now)
			if err != nil {
				if s.autoStop {
					_ = d.wheels.Stop()
				}
				return err
			}
			if !running {
				if s.autoStop {
					_ = d.wheels.Stop()
				}
				return nil
			}
		}
	}
}

// tick runs one iteration of the §4.5 step sequence against the active
// session. It is unexported: the public surface is SetSpeedWhile, which
// owns the session's lifetime and calls tick once per ticker period (the
// design note's coroutine step, kept internal since this module has no
// external host scheduler to hand ticks to).
func (d *Device) tick(now time.Time) (running bool, err error) {
	s := d.session

	if !s.started {
		if s.resetRamps {
			d.state.Reset()
			d.accumDx, d.accumDy = 0, 0
		}
		d.lastTick = now
		d.prevPos = d.wheels.Positions()
		s.started = true
		s.result = s.cond(false)
		return true, nil
	}

	dt := float32(now.Sub(d.lastTick).Seconds())
	d.lastTick = now
	if dt <= 0 {
		return true, nil
	}

	s.result.Update(&d.state, now)
	if !s.result.IsLoopRunning() {
		return false, nil
	}

	cmd := s.sf(s.result).ToAbsolute(d.maxSpeeds, s.doCorrection)

	vxMeas, vyMeas, omegaWheels := d.measureWheelVelocities(dt)

	omegaMeas := omegaWheels
	if s.doCorrection && d.estimator != nil {
		if d.useGoroutine {
			// The estimator runs on its own goroutine; read its latest
			// published values rather than touching it from here.
			omegaMeas = d.publishedOmega()
			d.state.CurrentHeading = d.publishedYaw()
		} else {
			if reading, rerr := d.imu.Read(); rerr == nil {
				_ = d.estimator.Update(reading.Gyro, reading.Accel, reading.Magneto, float64(dt))
			}
			omegaMeas = d.estimator.GyroReading(yawAxis)
			d.state.CurrentHeading += omegaMeas * dt
		}
	} else {
		// No gyro fusion available (do_correction off, or no IMU attached):
		// fall back to wheel-encoder-derived omega so heading tracking
		// still works in encoder-only mode (§7's "missing sensor" policy).
		d.state.CurrentHeading += omegaMeas * dt
	}

	d.accumDx += vxMeas * dt
	d.accumDy += vyMeas * dt

	target := control.RampedSpeed{ForwardMS: cmd.ForwardMS, StrafeMS: cmd.StrafeMS, AngularRad: cmd.AngularRad}
	current := control.RampedSpeed{ForwardMS: d.state.RampedForwardMS, StrafeMS: d.state.RampedStrafeMS, AngularRad: d.state.RampedOmegaRad}
	ramped := d.limits.Apply(current, target, dt)
	d.state.RampedForwardMS, d.state.RampedStrafeMS, d.state.RampedOmegaRad = ramped.ForwardMS, ramped.StrafeMS, ramped.AngularRad

	var finalVx, finalVy, finalOmega float32
	if s.doCorrection {
		finalVx, finalVy, finalOmega = d.bank.Calculate(
			speed.AbsoluteSpeed{ForwardMS: ramped.ForwardMS, StrafeMS: ramped.StrafeMS, AngularRad: ramped.AngularRad},
			speed.AbsoluteSpeed{ForwardMS: vxMeas, StrafeMS: vyMeas, AngularRad: omegaMeas},
			d.state.DesiredHeading, d.state.CurrentHeading, d.direction, dt,
		)
	} else {
		finalVx = ramped.ForwardMS + d.bank.Vx.Calculate(ramped.ForwardMS-vxMeas, dt)
		finalVy = ramped.StrafeMS + d.bank.Vy.Calculate(ramped.StrafeMS-vyMeas, dt)
		finalOmega = ramped.AngularRad
	}

	if d.maxSpeeds.ForwardMS != 0 {
		finalVx = math32.Max(-d.maxSpeeds.ForwardMS, math32.Min(d.maxSpeeds.ForwardMS, finalVx))
	}
	if d.maxSpeeds.StrafeMS != 0 {
		finalVy = math32.Max(-d.maxSpeeds.StrafeMS, math32.Min(d.maxSpeeds.StrafeMS, finalVy))
	}
	if d.maxSpeeds.AngularRad != 0 {
		finalOmega = math32.Max(-d.maxSpeeds.AngularRad, math32.Min(d.maxSpeeds.AngularRad, finalOmega))
	}

	wheelRateRadS := d.model.Inverse(finalVx, finalVy, finalOmega)
	ticksPerSec := make([]float32, len(wheelRateRadS))
	ticksPerRev := d.model.TicksPerRevolution()
	for i, rate := range wheelRateRadS {
		ticksPerSec[i] = d.clampVelocity(i, rate/twoPi*ticksPerRev)
	}

	return true, d.wheels.SetVelocities(ticksPerSec)
}

// clampVelocity applies the hard/soft safety bounds of §4.7/§7: hard-clamp
// to [-1500, 1500], and emit a rate-limited warning when the commanded
// value exceeds the soft [-1000, 1000] safety range.
func (d *Device) clampVelocity(wheel int, ticksPerSec float32) float32 {
	if math32.Abs(ticksPerSec) > softVelocityLimit {
		key := portKey(wheel)
		if d.warnLimiter.Allow(key, time.Now()) {
			d.logger.Warn("wheel velocity exceeds safety range", "wheel", wheel, "ticks_per_sec", ticksPerSec)
		}
	}
	return math32.Max(-hardVelocityLimit, math32.Min(hardVelocityLimit, ticksPerSec))
}

func portKey(wheel int) string {
	const digits = "0123456789"
	if wheel < 10 {
		return "wheel-" + string(digits[wheel])
	}
	return "wheel-n"
}

// measureWheelVelocities reads encoder deltas since the previous tick and
// converts them to chassis-frame (vx, vy, omega) via forward kinematics
// (§4.5 step 5).
func (d *Device) measureWheelVelocities(dt float32) (vx, vy, omega float32) {
	positions := d.wheels.Positions()
	rates := make([]float32, len(positions))
	ticksPerRev := d.model.TicksPerRevolution()
	for i, pos := range positions {
		delta := float32(pos - d.prevPos[i])
		rates[i] = delta / ticksPerRev * twoPi / dt
	}
	d.prevPos = positions
	return d.model.Forward(rates)
}
