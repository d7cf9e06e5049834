package device

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stpmotion/motioncore/attitude"
	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/control"
	"github.com/stpmotion/motioncore/imu"
	"github.com/stpmotion/motioncore/internal/logging"
	"github.com/stpmotion/motioncore/internal/quat"
	"github.com/stpmotion/motioncore/internal/ratelimit"
	"github.com/stpmotion/motioncore/kinematics"
	"github.com/stpmotion/motioncore/speed"
)

// package-level registry of live devices, used only for orderly shutdown —
// the "global mutable state" design note's one deliberate exception.
var shutdownRegistry = struct {
	mu      sync.Mutex
	devices []*Device
}{}

func registerDevice(d *Device) {
	shutdownRegistry.mu.Lock()
	defer shutdownRegistry.mu.Unlock()
	shutdownRegistry.devices = append(shutdownRegistry.devices, d)
}

func deregisterDevice(d *Device) {
	shutdownRegistry.mu.Lock()
	defer shutdownRegistry.mu.Unlock()
	for i, dev := range shutdownRegistry.devices {
		if dev == d {
			shutdownRegistry.devices = append(shutdownRegistry.devices[:i], shutdownRegistry.devices[i+1:]...)
			return
		}
	}
}

// ShutdownAll stops motors and disables every registered device, the Go
// translation of the "kill all threads" external operation (§5).
func ShutdownAll() {
	shutdownRegistry.mu.Lock()
	devices := append([]*Device(nil), shutdownRegistry.devices...)
	shutdownRegistry.mu.Unlock()
	for _, d := range devices {
		d.Shutdown()
	}
}

// Device is the per-chassis motion controller: a kinematics model, a PID
// bank, accel-limited ramps, an optional attitude estimator, and the motor
// ports it commands. It is safe for exactly one motion task at a time; a
// second concurrent SetSpeedWhile call returns ErrAlreadyRunning rather
// than blocking.
type Device struct {
	model kinematics.Model
	wheels WheelDrive
	imu    IMUSource
	// imuCalibration, if set via WithIMUCalibration, wraps imu in an
	// imu.CalibratedSource once New finishes applying options.
	imuCalibration *imu.Calibration

	bank      control.Bank
	limits    control.Limits
	maxSpeeds speed.MaxSpeeds
	direction control.Direction

	estimator       *attitude.Estimator
	useGoroutine    bool
	estimatorFreq   float64
	yawBits         atomic.Uint32
	omegaBits       atomic.Uint32
	cancelEstimator context.CancelFunc

	state condition.DriveState

	// accumDx/accumDy accumulate driven distance in the robot frame since
	// construction, or since the start of the last SetSpeedWhile call that
	// reset its ramps, read by DriveState's distance conditionals via the
	// drivenDistance closure.
	accumDx, accumDy float32

	running  atomic.Bool
	session  *session
	lastTick time.Time
	prevPos  []int64

	logger      logging.Logger
	warnLimiter *ratelimit.Limiter
}

// Option configures a Device at construction time.
type Option func(*Device)

// WithPIDs installs the four-axis PID bank (§4.4).
func WithPIDs(bank control.Bank) Option { return func(d *Device) { d.bank = bank } }

// WithLimits sets the per-axis accel-ramp limits (§4.5 step 7).
func WithLimits(limits control.Limits) Option { return func(d *Device) { d.limits = limits } }

// WithMaxSpeeds overrides the kinematics model's own MaxSpeeds; zero
// fields fall back to the model's reported ceiling.
func WithMaxSpeeds(max speed.MaxSpeeds) Option { return func(d *Device) { d.maxSpeeds = max } }

// WithDirection sets the configured drive direction used by the heading
// controller's direction_sign (§4.4).
func WithDirection(dir control.Direction) Option { return func(d *Device) { d.direction = dir } }

// WithIMU attaches the raw sensor source and the attitude estimator's
// sample rate (Hz); without this option do_correction silently degrades
// to encoder-only control (§7's "missing sensor" policy).
func WithIMU(src IMUSource, frequencyHz float64) Option {
	return func(d *Device) {
		d.imu = src
		d.estimatorFreq = frequencyHz
		d.estimator = attitude.NewEstimator(frequencyHz)
	}
}

// WithIMUCalibration wraps the source installed by WithIMU in an
// imu.CalibratedSource, so every reading the estimator sees has the fitted
// bias/hard-iron/soft-iron correction (C3, §3) applied before use. Order
// relative to WithIMU does not matter; the wrap happens once New applies
// all options.
func WithIMUCalibration(cal imu.Calibration) Option {
	return func(d *Device) { d.imuCalibration = &cal }
}

// WithEstimatorGoroutine resolves Open Question (c): true runs the
// attitude estimator on its own goroutine at estimatorFreq, publishing yaw
// via an atomic; false runs the EKF update inline inside each motion tick.
func WithEstimatorGoroutine(enabled bool) Option {
	return func(d *Device) { d.useGoroutine = enabled }
}

// WithLogger overrides the package-default logger.
func WithLogger(l logging.Logger) Option { return func(d *Device) { d.logger = l } }

// New builds a Device around a kinematics model and its motor ports.
func New(model kinematics.Model, wheels WheelDrive, opts ...Option) (*Device, error) {
	if model == nil || wheels == nil {
		return nil, fmt.Errorf("device: model and wheels are required")
	}
	d := &Device{
		model:       model,
		wheels:      wheels,
		maxSpeeds:   model.MaxSpeeds(),
		logger:      logging.Default,
		warnLimiter: ratelimit.New(time.Second),
	}
	d.state.DrivenDistance = d.drivenDistance
	for _, opt := range opts {
		opt(d)
	}
	modelMax := model.MaxSpeeds()
	if d.maxSpeeds.ForwardMS == 0 {
		d.maxSpeeds.ForwardMS = modelMax.ForwardMS
	}
	if d.maxSpeeds.StrafeMS == 0 {
		d.maxSpeeds.StrafeMS = modelMax.StrafeMS
	}
	if d.maxSpeeds.AngularRad == 0 {
		d.maxSpeeds.AngularRad = modelMax.AngularRad
	}
	if d.imu != nil && d.imuCalibration != nil {
		d.imu = imu.CalibratedSource{Raw: d.imu, Calibration: *d.imuCalibration}
	}
	registerDevice(d)
	return d, nil
}

// ResetState zeroes the drive state's ramps and re-bases desired heading,
// per the DriveState.Reset contract (§9 "cyclic references").
func (d *Device) ResetState() {
	d.state.Reset()
}

// GetCurrentHeading returns the device's current heading estimate in
// radians.
func (d *Device) GetCurrentHeading() float32 { return d.state.CurrentHeading }

// MaxSpeeds reports the per-axis ceiling the device scales normalized
// Speed commands against, the value motion primitives need to compute an
// absolute angular rate (e.g. drive_arc) outside the engine's own tick.
func (d *Device) MaxSpeeds() speed.MaxSpeeds { return d.maxSpeeds }

// SetQuaternion seeds the attached attitude estimator's orientation
// directly, e.g. after an external calibration pass has computed an
// initial attitude.
func (d *Device) SetQuaternion(q quat.Quaternion) {
	if d.estimator != nil {
		d.estimator.SetOrientation(q)
	}
}

// Shutdown stops the motors, stops the estimator goroutine (if running)
// and deregisters the device.
func (d *Device) Shutdown() {
	_ = d.wheels.Stop()
	if d.cancelEstimator != nil {
		d.cancelEstimator()
	}
	deregisterDevice(d)
}

// startEstimatorGoroutine launches the fixed-rate attitude-estimator loop
// (§5's "fully-on" design), publishing yaw via an atomic so the motion
// tick can read it without locking.
func (d *Device) startEstimatorGoroutine(ctx context.Context) {
	if d.estimator == nil || !d.useGoroutine || d.cancelEstimator != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	d.cancelEstimator = cancel
	freq := d.estimatorFreq
	if freq <= 0 {
		freq = 100
	}
	go func() {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / freq))
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				dt := now.Sub(last).Seconds()
				last = now
				reading, err := d.imu.Read()
				if err != nil {
					d.logger.Warn("attitude estimator read failed", "error", err)
					continue
				}
				if err := d.estimator.Update(reading.Gyro, reading.Accel, reading.Magneto, dt); err != nil {
					d.logger.Warn("attitude estimator update failed", "error", err)
					continue
				}
				d.yawBits.Store(math.Float32bits(d.estimator.CurrentHeading()))
				d.omegaBits.Store(math.Float32bits(float32(reading.Gyro[yawAxis])))
			}
		}
	}()
}

// publishedYaw and publishedOmega read the atomically-shared estimates the
// goroutine-driven estimator publishes; the motion tick reads these
// instead of calling into the estimator directly, since in goroutine mode
// the estimator is owned by a different goroutine (§5's "relaxed atomic"
// sharing contract).
func (d *Device) publishedYaw() float32 {
	return math.Float32frombits(d.yawBits.Load())
}

func (d *Device) publishedOmega() float32 {
	return math.Float32frombits(d.omegaBits.Load())
}

// drivenDistance reports accumulated (dx, dy) in the robot frame (see
// accumDx/accumDy for when it restarts from zero), derived from the
// kinematics model's forward calculation integrated over successive ticks.
// New installs it as the DriveState.DrivenDistance closure.
func (d *Device) drivenDistance() (dx, dy float32) {
	return d.accumDx, d.accumDy
}
