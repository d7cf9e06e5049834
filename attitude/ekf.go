// Package attitude implements the quaternion Extended Kalman Filter (C2)
// fusing gyroscope, accelerometer and magnetometer samples into an
// orientation estimate, grounded on the original ExtendedKalmanFilter's
// predict/correct split and closed-form Jacobians (Omega/f/dfdq/h/dhdq).
// Unlike the rest of this module, this package uses float64 throughout:
// the 1e-9 unit-quaternion tolerance and the Eigen::Quaterniond original
// both assume double precision.
package attitude

import (
	"errors"
	"fmt"
	"math"

	"github.com/stpmotion/motioncore/internal/mat"
	"github.com/stpmotion/motioncore/internal/quat"
)

// Sample3 is a raw 3-axis sensor reading (gyro rad/s, accel m/s^2, or
// magnetometer field in consistent units — the EKF only ever compares
// like to like).
type Sample3 = [3]float64

var (
	// ErrNonPositiveDt is returned by Update when dt <= 0.
	ErrNonPositiveDt = errors.New("attitude: dt must be positive")
	// ErrNotUnitQuaternion is returned by Update when the a-priori
	// quaternion deviates from unit norm by more than 1e-9 (P4).
	ErrNotUnitQuaternion = errors.New("attitude: a-priori quaternion must be unit length")
	// ErrDegenerateVector is returned by Ecompass when a reference vector
	// (or a cross product derived from it) has near-zero magnitude.
	ErrDegenerateVector = errors.New("attitude: reference vector is degenerate")
)

// EKF is a quaternion-state Extended Kalman Filter for attitude estimation.
type EKF struct {
	frequencyHz float64
	deltaTime   float64

	varGyro, varAccel, varMagneto float64

	p mat.Matrix // 4x4 state covariance
	r mat.Matrix // 6x6 measurement noise covariance

	aRef Sample3 // gravity reference, chosen frame
	mRef Sample3 // magnetic reference, chosen frame
}

// New builds an EKF sampled at frequencyHz (default 100 per §4.1), with
// gravity reference (0,0,1) ("down" in NED), zero measurement-noise
// variances until SetMeasurementNoiseCovariance is called, and a zero
// magnetic reference until SetMagReference is called.
func New(frequencyHz float64) *EKF {
	if frequencyHz <= 0 {
		frequencyHz = 100
	}
	e := &EKF{
		frequencyHz: frequencyHz,
		deltaTime:   1 / frequencyHz,
		p:           mat.Identity(4),
		aRef:        Sample3{0, 0, 1},
	}
	e.r = e.measurementNoiseCovariance()
	return e
}

func (e *EKF) measurementNoiseCovariance() mat.Matrix {
	diag := make([]float64, 6)
	for i := 0; i < 3; i++ {
		diag[i] = e.varAccel
		diag[i+3] = e.varMagneto
	}
	m := mat.New(6, 6)
	for i, v := range diag {
		m.Set(i, i, v)
	}
	return m
}

// SetMeasurementNoiseCovariance sets the diagonal measurement-noise
// covariance from per-axis variances (gyro variance is used by Update's
// process-noise term, not R itself).
func (e *EKF) SetMeasurementNoiseCovariance(gyroVariance, accelVariance, magVariance float64) {
	e.varGyro = gyroVariance
	e.varAccel = accelVariance
	e.varMagneto = magVariance
	e.r = e.measurementNoiseCovariance()
}

// SetMagReference sets the magnetic reference vector (normalized) and
// resets the gravity reference to the NED "down" unit vector.
func (e *EKF) SetMagReference(magReference Sample3) {
	n := vecNorm(magReference)
	if n < 1e-12 {
		n = 1
	}
	e.mRef = Sample3{magReference[0] / n, magReference[1] / n, magReference[2] / n}
	e.aRef = Sample3{0, 0, 1}
}

func vecNorm(v Sample3) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func vecCross(a, b Sample3) Sample3 {
	return Sample3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func vecNormalize(v Sample3) (Sample3, float64) {
	n := vecNorm(v)
	if n < 1e-12 {
		return v, n
	}
	return Sample3{v[0] / n, v[1] / n, v[2] / n}, n
}

// Ecompass computes an initial orientation (the "triad" method) from a
// single accelerometer + magnetometer sample, both in the same frame.
func Ecompass(acc, mag Sample3) (quat.Quaternion, error) {
	rz, aNorm := vecNormalize(acc)
	if aNorm < 1e-12 {
		return quat.Identity, fmt.Errorf("%w: accelerometer", ErrDegenerateVector)
	}
	mNormed, mNorm := vecNormalize(mag)
	if mNorm < 1e-12 {
		return quat.Identity, fmt.Errorf("%w: magnetometer", ErrDegenerateVector)
	}

	ry, ryNorm := vecNormalize(vecCross(rz, mNormed))
	if ryNorm < 1e-12 {
		return quat.Identity, fmt.Errorf("%w: accelerometer and magnetometer are parallel", ErrDegenerateVector)
	}
	rx, rxNorm := vecNormalize(vecCross(ry, rz))
	if rxNorm < 1e-12 {
		return quat.Identity, fmt.Errorf("%w: degenerate triad geometry", ErrDegenerateVector)
	}

	return quat.FromRotationMatrix(rx, ry, rz), nil
}

// ComputeInitialAttitude seeds the filter from a short burst of stationary
// samples: the first orientation comes from Ecompass on the first
// accel+mag pair, then every subsequent sample runs one Update step. It
// returns the final orientation estimate.
func (e *EKF) ComputeInitialAttitude(gyroSamples, accelSamples, magSamples []Sample3) (quat.Quaternion, error) {
	if len(gyroSamples) != len(accelSamples) || len(gyroSamples) != len(magSamples) {
		return quat.Identity, errors.New("attitude: gyro, accel and mag sample counts must match")
	}
	if len(gyroSamples) == 0 {
		return quat.Identity, errors.New("attitude: at least one sample is required")
	}

	q, err := Ecompass(accelSamples[0], magSamples[0])
	if err != nil {
		return quat.Identity, err
	}
	q = q.Normalized()

	for i := 1; i < len(gyroSamples); i++ {
		q, err = e.Update(q, gyroSamples[i], accelSamples[i], magSamples[i], e.deltaTime)
		if err != nil {
			return quat.Identity, err
		}
	}
	return q, nil
}

// omega builds the 4x4 skew-symmetric operator used by the process model.
func omega(x Sample3) mat.Matrix {
	return mat.FromRows([][]float64{
		{0, -x[0], -x[1], -x[2]},
		{x[0], 0, x[2], -x[1]},
		{x[1], -x[2], 0, x[0]},
		{x[2], x[1], -x[0], 0},
	})
}

// f is the discrete-time process model: first-order quaternion
// integration of angular velocity over dt.
func f(q quat.Quaternion, gyro Sample3, dt float64) quat.Quaternion {
	half := Sample3{0.5 * dt * gyro[0], 0.5 * dt * gyro[1], 0.5 * dt * gyro[2]}
	delta := quat.New(1, half[0], half[1], half[2]).Normalized()
	return q.Product(delta)
}

// dfdq is the Jacobian of f with respect to q: F = I + Omega(0.5*dt*gyro).
func dfdq(gyro Sample3, dt float64) mat.Matrix {
	half := Sample3{0.5 * dt * gyro[0], 0.5 * dt * gyro[1], 0.5 * dt * gyro[2]}
	return mat.Identity(4).Add(omega(half))
}

// h is the measurement model: the expected accel+mag reading given the
// predicted orientation, by rotating the gravity and magnetic references
// into the body frame.
func (e *EKF) h(q quat.Quaternion) [6]float64 {
	ax, ay, az := q.RotateVector(e.aRef[0], e.aRef[1], e.aRef[2])
	mx, my, mz := q.RotateVector(e.mRef[0], e.mRef[1], e.mRef[2])
	return [6]float64{ax, ay, az, mx, my, mz}
}

// dhdqBlock is the closed-form 3x4 Jacobian of one reference vector's
// rotation with respect to q, shared by the accel and magnetometer halves
// of dhdq.
func dhdqBlock(ref Sample3, q quat.Quaternion) [3][4]float64 {
	qw, qx, qy, qz := q.W, q.X, q.Y, q.Z
	r0, r1, r2 := ref[0], ref[1], ref[2]
	return [3][4]float64{
		{
			r0*qw + r1*qz - r2*qy,
			r0*qx + r1*qy + r2*qz,
			-r0*qy + r1*qx - r2*qw,
			-r0*qz + r1*qw + r2*qx,
		},
		{
			-r0*qz + r1*qw + r2*qx,
			r0*qy - r1*qx + r2*qw,
			r0*qx + r1*qy + r2*qz,
			-r0*qw - r1*qz + r2*qy,
		},
		{
			r0*qy - r1*qx + r2*qw,
			r0*qz - r1*qw - r2*qx,
			r0*qw + r1*qz - r2*qy,
			r0*qx + r1*qy + r2*qz,
		},
	}
}

// dhdq assembles the 6x4 measurement Jacobian from the accel and
// magnetometer reference blocks, scaled by 2 as in the closed-form
// derivative of a quaternion rotation.
func (e *EKF) dhdq(q quat.Quaternion) mat.Matrix {
	aBlock := dhdqBlock(e.aRef, q)
	mBlock := dhdqBlock(e.mRef, q)
	rows := make([][]float64, 6)
	for i := 0; i < 3; i++ {
		rows[i] = []float64{2 * aBlock[i][0], 2 * aBlock[i][1], 2 * aBlock[i][2], 2 * aBlock[i][3]}
		rows[i+3] = []float64{2 * mBlock[i][0], 2 * mBlock[i][1], 2 * mBlock[i][2], 2 * mBlock[i][3]}
	}
	return mat.FromRows(rows)
}

// Update runs one predict/correct cycle given the a-priori quaternion and
// one sample of gyro/accel/mag data, returning the a-posteriori estimate.
func (e *EKF) Update(qPrev quat.Quaternion, gyro, accel, mag Sample3, dt float64) (quat.Quaternion, error) {
	if dt <= 0 {
		return quat.Identity, ErrNonPositiveDt
	}
	if math.Abs(qPrev.Norm()-1) > 1e-9 {
		return quat.Identity, ErrNotUnitQuaternion
	}

	// Predict.
	qPred := f(qPrev, gyro, dt)
	fJac := dfdq(gyro, dt)
	qProcess := fJac.Mul(fJac.Transpose()).Scale(e.varGyro)
	pPred := fJac.Mul(e.p).Mul(fJac.Transpose()).Add(qProcess)

	// Correct.
	zPred := e.h(qPred)
	h := e.dhdq(qPred)
	hT := h.Transpose()
	s := h.Mul(pPred).Mul(hT).Add(e.r)
	sInv, err := s.Inverse()
	if err != nil {
		return quat.Identity, fmt.Errorf("attitude: innovation covariance is singular: %w", err)
	}
	k := pPred.Mul(hT).Mul(sInv)

	innovation := mat.ColVector([]float64{
		accel[0] - zPred[0], accel[1] - zPred[1], accel[2] - zPred[2],
		mag[0] - zPred[3], mag[1] - zPred[4], mag[2] - zPred[5],
	})
	dqVec := k.Mul(innovation)
	col := dqVec.Col(0)
	dq := quat.New(1, 0.5*col[0], 0.5*col[1], 0.5*col[2]).Normalized()

	qUpd := qPred.Product(dq).Normalized()

	ident4 := mat.Identity(4)
	e.p = ident4.Sub(k.Mul(h)).Mul(pPred)

	return qUpd, nil
}
