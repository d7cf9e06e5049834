package attitude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stpmotion/motioncore/internal/quat"
)

// TestScenario3_EcompassIdentity checks the literal example: acc=(0,0,9.81),
// mag=(1,0,0) yields identity quaternion within 1e-6.
func TestScenario3_EcompassIdentity(t *testing.T) {
	q, err := Ecompass(Sample3{0, 0, 9.81}, Sample3{1, 0, 0})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, q.W, 1e-6)
	assert.InDelta(t, 0.0, q.X, 1e-6)
	assert.InDelta(t, 0.0, q.Y, 1e-6)
	assert.InDelta(t, 0.0, q.Z, 1e-6)
}

func TestEcompass_RejectsDegenerateAccel(t *testing.T) {
	_, err := Ecompass(Sample3{0, 0, 0}, Sample3{1, 0, 0})
	require.ErrorIs(t, err, ErrDegenerateVector)
}

func TestEcompass_RejectsDegenerateMag(t *testing.T) {
	_, err := Ecompass(Sample3{0, 0, 9.81}, Sample3{0, 0, 0})
	require.ErrorIs(t, err, ErrDegenerateVector)
}

func TestEcompass_RejectsParallelVectors(t *testing.T) {
	_, err := Ecompass(Sample3{0, 0, 9.81}, Sample3{0, 0, 1})
	require.ErrorIs(t, err, ErrDegenerateVector)
}

// TestUpdate_PreservesUnitNorm checks P4: after any Update, |‖q‖ - 1| < 1e-9.
func TestUpdate_PreservesUnitNorm(t *testing.T) {
	e := New(100)
	e.SetMeasurementNoiseCovariance(1e-4, 1e-2, 1e-2)

	q := quat.Identity
	gyro := Sample3{0.05, -0.02, 0.1}
	accel := Sample3{0.1, 0.2, 9.7}
	mag := Sample3{0.9, 0.1, 0.2}

	for i := 0; i < 50; i++ {
		var err error
		q, err = e.Update(q, gyro, accel, mag, 0.01)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, q.Norm(), 1e-9)
	}
}

func TestUpdate_RejectsNonPositiveDt(t *testing.T) {
	e := New(100)
	_, err := e.Update(quat.Identity, Sample3{}, Sample3{0, 0, 9.81}, Sample3{1, 0, 0}, 0)
	require.ErrorIs(t, err, ErrNonPositiveDt)
}

func TestUpdate_RejectsNonUnitQuaternion(t *testing.T) {
	e := New(100)
	nonUnit := quat.New(2, 0, 0, 0)
	_, err := e.Update(nonUnit, Sample3{}, Sample3{0, 0, 9.81}, Sample3{1, 0, 0}, 0.01)
	require.ErrorIs(t, err, ErrNotUnitQuaternion)
}

func TestComputeInitialAttitude_SingleSample(t *testing.T) {
	e := New(100)
	q, err := e.ComputeInitialAttitude(
		[]Sample3{{0, 0, 0}},
		[]Sample3{{0, 0, 9.81}},
		[]Sample3{{1, 0, 0}},
	)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, q.Norm(), 1e-9)
}

func TestComputeInitialAttitude_MismatchedLengths(t *testing.T) {
	e := New(100)
	_, err := e.ComputeInitialAttitude(
		[]Sample3{{0, 0, 0}, {0, 0, 0}},
		[]Sample3{{0, 0, 9.81}},
		[]Sample3{{1, 0, 0}},
	)
	require.Error(t, err)
}
