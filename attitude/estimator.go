package attitude

import "github.com/stpmotion/motioncore/internal/quat"

// Estimator wraps an EKF with the last orientation and gyro reading, the
// "contract for the motion core" surface: gyro_reading(axis) and
// current_heading().
type Estimator struct {
	ekf       *EKF
	q         quat.Quaternion
	lastGyro  Sample3
	calibrate struct {
		gyroVariance, accelVariance, magVariance float64
	}
}

// NewEstimator builds an Estimator sampled at frequencyHz, initially at the
// identity orientation.
func NewEstimator(frequencyHz float64) *Estimator {
	return &Estimator{ekf: New(frequencyHz), q: quat.Identity}
}

// Calibrate seeds the estimator from N stationary samples: it computes the
// measurement-noise variances from the sample spread and calls
// ComputeInitialAttitude to seed the orientation.
func (e *Estimator) Calibrate(gyroSamples, accelSamples, magSamples []Sample3) error {
	gv := sampleVariance(gyroSamples)
	av := sampleVariance(accelSamples)
	mv := sampleVariance(magSamples)
	e.ekf.SetMeasurementNoiseCovariance(gv, av, mv)

	if len(magSamples) > 0 {
		e.ekf.SetMagReference(mean(magSamples))
	}

	q, err := e.ekf.ComputeInitialAttitude(gyroSamples, accelSamples, magSamples)
	if err != nil {
		return err
	}
	e.q = q
	return nil
}

// Update records the gyro sample for GyroReading and runs one EKF tick;
// the orientation is left unchanged when the EKF step fails.
func (e *Estimator) Update(gyro, accel, mag Sample3, dt float64) error {
	e.lastGyro = gyro
	q, err := e.ekf.Update(e.q, gyro, accel, mag, dt)
	if err != nil {
		return err
	}
	e.q = q
	return nil
}

// Orientation returns the current quaternion estimate.
func (e *Estimator) Orientation() quat.Quaternion { return e.q }

// SetOrientation overrides the current quaternion estimate directly,
// e.g. to seed it from a pre-computed initial attitude.
func (e *Estimator) SetOrientation(q quat.Quaternion) { e.q = q.Normalized() }

// CurrentHeading returns yaw (radians) derived from the current
// orientation estimate.
func (e *Estimator) CurrentHeading() float32 { return float32(e.q.Yaw()) }

// GyroReading returns the last gyro sample's component along the given
// axis (0=x, 1=y, 2=z), used to fuse encoder-derived omega with the gyro.
func (e *Estimator) GyroReading(axis int) float32 { return float32(e.lastGyro[axis]) }

func mean(samples []Sample3) Sample3 {
	var sum Sample3
	for _, s := range samples {
		sum[0] += s[0]
		sum[1] += s[1]
		sum[2] += s[2]
	}
	n := float64(len(samples))
	if n == 0 {
		return sum
	}
	return Sample3{sum[0] / n, sum[1] / n, sum[2] / n}
}

func sampleVariance(samples []Sample3) float64 {
	if len(samples) < 2 {
		return 0
	}
	m := mean(samples)
	var sumSq float64
	for _, s := range samples {
		dx, dy, dz := s[0]-m[0], s[1]-m[1], s[2]-m[2]
		sumSq += dx*dx + dy*dy + dz*dz
	}
	return sumSq / float64(len(samples)-1) / 3
}
