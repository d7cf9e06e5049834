package imu

import "errors"

var errNonPositiveSampleCount = errors.New("imu: sample count must be positive")

// Calibration is the full set of fitted IMU calibration artifacts (the
// aggregate the original's IMU::calibrate produces across its three
// sensors), round-tripped by the calibration package's YAML persistence.
type Calibration struct {
	Gyro    GyroCalibration
	Accel   AccelCalibration
	Magneto MagnetoCalibration
}

// Reading is one raw (gyro, accel, magneto) sample triple from the
// underlying device.
type Reading struct {
	Gyro, Accel, Magneto Sample3
}

// Sampler supplies one raw reading; provided by the caller so this package
// never depends on a concrete bus/driver.
type Sampler func() (Reading, error)

// Calibrate collects sampleCount stationary readings via sample and fits
// all three sensors' calibration artifacts, matching IMU::calibrate's
// collect-then-fit-all structure (minus its cooperative-yield scheduling,
// which has no Go equivalent worth keeping — the caller simply calls this
// from its own goroutine if it wants to yield).
func Calibrate(sampleCount int, sample Sampler) (Calibration, error) {
	if sampleCount <= 0 {
		return Calibration{}, errNonPositiveSampleCount
	}

	gyroSamples := make([]Sample3, sampleCount)
	accelSamples := make([]Sample3, sampleCount)
	magSamples := make([]Sample3, sampleCount)

	for i := 0; i < sampleCount; i++ {
		r, err := sample()
		if err != nil {
			return Calibration{}, err
		}
		gyroSamples[i] = r.Gyro
		accelSamples[i] = r.Accel
		magSamples[i] = r.Magneto
	}

	gyroCal, err := CalibrateGyro(gyroSamples)
	if err != nil {
		return Calibration{}, err
	}
	accelCal, err := CalibrateAccel(accelSamples)
	if err != nil {
		return Calibration{}, err
	}
	magCal, err := CalibrateMagneto(magSamples)
	if err != nil {
		return Calibration{}, err
	}

	return Calibration{Gyro: gyroCal, Accel: accelCal, Magneto: magCal}, nil
}

// Apply runs all three axes' calibration over one raw reading.
func (c Calibration) Apply(r Reading) Reading {
	return Reading{
		Gyro:    c.Gyro.Apply(r.Gyro),
		Accel:   c.Accel.Apply(r.Accel),
		Magneto: c.Magneto.Apply(r.Magneto),
	}
}

// RawSource supplies one raw reading; satisfied by any concrete IMU bridge,
// including device.IMUSource by structural typing.
type RawSource interface {
	Read() (Reading, error)
}

// CalibratedSource wraps a raw IMU bridge and applies a fitted Calibration
// to every reading it returns, so the bias/hard-iron/soft-iron correction
// fitted by Calibrate actually reaches the attitude estimator instead of
// being applied nowhere in the motion path (§3).
type CalibratedSource struct {
	Raw         RawSource
	Calibration Calibration
}

// Read implements RawSource (and therefore device.IMUSource).
func (s CalibratedSource) Read() (Reading, error) {
	r, err := s.Raw.Read()
	if err != nil {
		return Reading{}, err
	}
	return s.Calibration.Apply(r), nil
}
