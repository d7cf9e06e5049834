// Package quat provides the unit-quaternion type used by the attitude
// estimator. It is float64, unlike the rest of the control core's float32
// math, because the EKF's unit-norm tolerance (1e-9, see P4) and the
// reference filter it is grounded on both assume double precision.
package quat

import "math"

// Quaternion is a Hamilton quaternion (w, x, y, z) representing a rotation
// when of unit length.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity is the no-rotation quaternion.
var Identity = Quaternion{W: 1}

func New(w, x, y, z float64) Quaternion {
	return Quaternion{W: w, X: x, Y: y, Z: z}
}

func (q Quaternion) Add(o Quaternion) Quaternion {
	return Quaternion{q.W + o.W, q.X + o.X, q.Y + o.Y, q.Z + o.Z}
}

func (q Quaternion) Scale(s float64) Quaternion {
	return Quaternion{q.W * s, q.X * s, q.Y * s, q.Z * s}
}

// Product computes the Hamilton product q*o (apply o, then q).
func (q Quaternion) Product(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{q.W, -q.X, -q.Y, -q.Z}
}

func (q Quaternion) NormSqr() float64 {
	return q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z
}

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.NormSqr())
}

// Normalized returns q scaled to unit length. Callers must normalize after
// every product, per the numeric-care note in the design notes.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n < 1e-15 {
		return Identity
	}
	return q.Scale(1 / n)
}

// RotateVector rotates v by this quaternion: q * (0,v) * q^-1.
func (q Quaternion) RotateVector(x, y, z float64) (float64, float64, float64) {
	p := Quaternion{0, x, y, z}
	r := q.Product(p).Product(q.Conjugate())
	return r.X, r.Y, r.Z
}

// Euler returns (roll, pitch, yaw) in radians, NED/ZYX convention. Pitch is
// clamped to +-pi/2; at the gimbal-lock boundary (|pitch| == pi/2) roll is
// computed from the remaining degree of freedom and yaw is zeroed, per
// §4.1's gimbal-lock handling.
func (q Quaternion) Euler() (roll, pitch, yaw float64) {
	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	if sinp >= 1 {
		return 2 * math.Atan2(q.X, q.W), math.Pi / 2, 0
	}
	if sinp <= -1 {
		return -2 * math.Atan2(q.X, q.W), -math.Pi / 2, 0
	}
	pitch = math.Asin(sinp)

	sinr := 2 * (q.W*q.X + q.Y*q.Z)
	cosr := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll = math.Atan2(sinr, cosr)

	siny := 2 * (q.W*q.Z + q.X*q.Y)
	cosy := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	yaw = math.Atan2(siny, cosy)
	return roll, pitch, yaw
}

// Yaw is a convenience accessor used throughout the motion core for heading.
func (q Quaternion) Yaw() float64 {
	_, _, yaw := q.Euler()
	return yaw
}

// FromRotationMatrix builds a quaternion from an orthonormal 3x3 rotation
// matrix given by its rows, using the standard largest-diagonal-term method
// to stay numerically stable regardless of rotation.
func FromRotationMatrix(row0, row1, row2 [3]float64) Quaternion {
	m00, m01, m02 := row0[0], row0[1], row0[2]
	m10, m11, m12 := row1[0], row1[1], row1[2]
	m20, m21, m22 := row2[0], row2[1], row2[2]

	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return Quaternion{
			W: 0.25 / s,
			X: (m21 - m12) * s,
			Y: (m02 - m20) * s,
			Z: (m10 - m01) * s,
		}.Normalized()
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		return Quaternion{
			W: (m21 - m12) / s,
			X: 0.25 * s,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
		}.Normalized()
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		return Quaternion{
			W: (m02 - m20) / s,
			X: (m01 + m10) / s,
			Y: 0.25 * s,
			Z: (m12 + m21) / s,
		}.Normalized()
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		return Quaternion{
			W: (m10 - m01) / s,
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: 0.25 * s,
		}.Normalized()
	}
}
