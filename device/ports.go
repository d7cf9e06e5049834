// Package device implements the Device type (C1 bridge + C8 motion engine):
// the per-chassis owner of a kinematics model, PID bank, optional attitude
// estimator, and the motor/sensor ports it drives, grounded on
// libstp::device::Device's field layout and setSpeedWhile contract.
package device

import "github.com/stpmotion/motioncore/imu"

// WheelDrive is the per-wheel motor bridge (§4.7/C1), grounded on
// set_motor_velocity/get_motor_position_counter: it accepts one velocity
// command (encoder ticks/s) per wheel, already safety-clamped by the
// Device before the call, and reports cumulative signed tick position per
// wheel, ordered per the owning kinematics.Model.
type WheelDrive interface {
	// SetVelocities commands one velocity (ticks/s) per wheel.
	SetVelocities(ticksPerSec []float32) error
	// Positions returns the cumulative signed encoder tick count per wheel.
	Positions() []int64
	// Stop commands zero velocity on every wheel.
	Stop() error
}

// IMUSource supplies one raw (gyro, accel, magneto) reading per call, the
// bridge to the firmware-level accel_x/gyro_x/magneto_x family (§6).
type IMUSource interface {
	Read() (imu.Reading, error)
}

// LineSensors reports the two floor sensors used by follow_line and
// line_up (§4.6), each true when reading black.
type LineSensors interface {
	LeftBlack() bool
	RightBlack() bool
}
