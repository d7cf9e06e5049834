// Package imu implements IMU calibration (C3): per-axis bias and variance
// from a batch of stationary samples, gravity-axis/sign detection for the
// accelerometer, and hard/soft-iron correction for the magnetometer.
// Grounded on GyroSensor/AccelSensor/MagnetoSensor's median-bias
// calibrate() routines.
package imu

import (
	"errors"
	"fmt"
	"sort"

	"github.com/stpmotion/motioncore/attitude"
	"github.com/stpmotion/motioncore/internal/mat"
)

// Sample3 matches attitude.Sample3: a raw 3-axis reading.
type Sample3 = attitude.Sample3

// GyroCalibration is the bias/variance pair fit to a batch of stationary
// gyro samples.
type GyroCalibration struct {
	Bias     Sample3
	Variance Sample3
}

// Apply subtracts the fitted bias from a raw sample.
func (c GyroCalibration) Apply(raw Sample3) Sample3 {
	return Sample3{raw[0] - c.Bias[0], raw[1] - c.Bias[1], raw[2] - c.Bias[2]}
}

// CalibrateGyro fits bias as the per-axis median (robust to occasional
// spikes) and variance as the mean squared residual from that bias.
func CalibrateGyro(samples []Sample3) (GyroCalibration, error) {
	if len(samples) == 0 {
		return GyroCalibration{}, errors.New("imu: at least one sample is required")
	}
	bias := medianAxes(samples)
	return GyroCalibration{Bias: bias, Variance: residualVariance(samples, bias)}, nil
}

// AccelCalibration is the bias/variance/gravity triple fit to a batch of
// stationary accelerometer samples.
type AccelCalibration struct {
	Bias     Sample3
	Variance Sample3
	// Gravity is the detected (axis, sign) gravity vector, magnitude
	// 9.81 m/s^2 on whichever axis read the largest bias.
	Gravity Sample3
}

// Apply subtracts the fitted bias from a raw sample.
func (c AccelCalibration) Apply(raw Sample3) Sample3 {
	return Sample3{raw[0] - c.Bias[0], raw[1] - c.Bias[1], raw[2] - c.Bias[2]}
}

// CalibrateAccel fits bias as the per-axis median, then detects which axis
// is aligned with gravity (the one with the largest-magnitude median) and
// removes exactly 9.81 m/s^2 from that axis's bias so the corrected
// gravity reading is (0,0,...,9.81,...,0) rather than zero.
func CalibrateAccel(samples []Sample3) (AccelCalibration, error) {
	if len(samples) == 0 {
		return AccelCalibration{}, errors.New("imu: at least one sample is required")
	}
	bias := medianAxes(samples)

	axis := 0
	for i := 1; i < 3; i++ {
		if abs(bias[i]) > abs(bias[axis]) {
			axis = i
		}
	}
	sign := 1.0
	if bias[axis] < 0 {
		sign = -1.0
	}
	const g = 9.81
	bias[axis] -= g * sign

	var gravity Sample3
	gravity[axis] = g * sign

	return AccelCalibration{Bias: bias, Variance: residualVariance(samples, bias), Gravity: gravity}, nil
}

// Matrix3 is a row-major 3x3 matrix, exported as a plain array so it
// survives YAML round-tripping (calibration.Artifact marshals
// MagnetoCalibration directly via yaml.v3 reflection; internal/mat.Matrix's
// fields are unexported and would not).
type Matrix3 [3][3]float64

func identity3() Matrix3 {
	return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Apply performs the matrix-vector product m*v.
func (m Matrix3) Apply(v Sample3) Sample3 {
	return Sample3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// MagnetoCalibration holds the magnetometer's variance plus the hard-iron
// offset and soft-iron correction matrix, set independently of the batch
// variance fit (they typically come from a separate figure-eight sweep).
//
// SoftIron is stored already inverted, per §9: the raw soft-iron matrix
// fit from a sweep is inverted once (FitSoftIron), so Apply is a single
// matrix-vector multiply per sample rather than an inversion every call.
type MagnetoCalibration struct {
	Variance     Sample3
	HardIronBias Sample3
	SoftIron     Matrix3 `yaml:"soft_iron"`
}

// CalibrateMagneto computes per-axis variance (of the raw, uncentered
// samples, matching the original's colwise squaredNorm) and defaults the
// hard/soft-iron correction to identity (zero HardIronBias, identity
// SoftIron); setting HardIronBias and calling FitSoftIron refine it from a
// dedicated sweep.
func CalibrateMagneto(samples []Sample3) (MagnetoCalibration, error) {
	if len(samples) == 0 {
		return MagnetoCalibration{}, errors.New("imu: at least one sample is required")
	}
	var sumSq Sample3
	for _, s := range samples {
		sumSq[0] += s[0] * s[0]
		sumSq[1] += s[1] * s[1]
		sumSq[2] += s[2] * s[2]
	}
	return MagnetoCalibration{Variance: sumSq, SoftIron: identity3()}, nil
}

// FitSoftIron inverts a raw soft-iron matrix (typically fit from a
// dedicated figure-eight sweep, not the stationary batch CalibrateMagneto
// uses) once, storing the inverse so Apply never inverts per sample (§9).
func (c MagnetoCalibration) FitSoftIron(raw Matrix3) (MagnetoCalibration, error) {
	m := mat.FromRows([][]float64{raw[0][:], raw[1][:], raw[2][:]})
	inv, err := m.Inverse()
	if err != nil {
		return c, fmt.Errorf("imu: soft-iron matrix is not invertible: %w", err)
	}
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			c.SoftIron[r][col] = inv.At(r, col)
		}
	}
	return c, nil
}

// Apply removes hard-iron offset then applies the inverted soft-iron
// matrix: calibrated = SoftIron * (raw - HardIronBias).
func (c MagnetoCalibration) Apply(raw Sample3) Sample3 {
	centered := Sample3{raw[0] - c.HardIronBias[0], raw[1] - c.HardIronBias[1], raw[2] - c.HardIronBias[2]}
	return c.SoftIron.Apply(centered)
}

func medianAxes(samples []Sample3) Sample3 {
	var out Sample3
	col := make([]float64, len(samples))
	for axis := 0; axis < 3; axis++ {
		for i, s := range samples {
			col[i] = s[axis]
		}
		sort.Float64s(col)
		n := len(col)
		if n%2 == 0 {
			out[axis] = (col[n/2-1] + col[n/2]) / 2
		} else {
			out[axis] = col[n/2]
		}
	}
	return out
}

func residualVariance(samples []Sample3, bias Sample3) Sample3 {
	var sumSq Sample3
	for _, s := range samples {
		dx, dy, dz := s[0]-bias[0], s[1]-bias[1], s[2]-bias[2]
		sumSq[0] += dx * dx
		sumSq[1] += dy * dy
		sumSq[2] += dz * dz
	}
	n := float64(len(samples))
	return Sample3{sumSq[0] / n, sumSq[1] / n, sumSq[2] / n}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
