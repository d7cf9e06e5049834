package device_test

// Proves the concrete C1 hardware bridges (x/devices/motor.MotorArray,
// x/devices/mpu6050.Device) are actually wired into a Device, not just
// declared as such: a real MotorArray over in-memory PWM/pin fakes and a
// real mpu6050.Device over an in-memory I2C fake both feed a live
// device.Device end to end.

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/control"
	"github.com/stpmotion/motioncore/device"
	"github.com/stpmotion/motioncore/kinematics/differential"
	"github.com/stpmotion/motioncore/speed"
	"github.com/stpmotion/motioncore/x/devices"
	"github.com/stpmotion/motioncore/x/devices/encoder"
	"github.com/stpmotion/motioncore/x/devices/motor"
	"github.com/stpmotion/motioncore/x/devices/mpu6050"
)

// hwPin is a minimal in-memory devices.Pin.
type hwPin struct{ state bool }

func (p *hwPin) Get() bool  { return p.state }
func (p *hwPin) Set(v bool) { p.state = v }
func (p *hwPin) High()      { p.state = true }
func (p *hwPin) Low()       { p.state = false }
func (p *hwPin) SetInterrupt(devices.PinChange, func(devices.Pin)) error { return nil }

// hwPWM is a minimal in-memory devices.PWM.
type hwPWM struct{ duty float32 }

func (p *hwPWM) Set(duty float32) error      { p.duty = duty; return nil }
func (p *hwPWM) SetMicroseconds(uint32) error { return nil }
func (p *hwPWM) Stop() error                  { p.duty = 0; return nil }

// hwPWMDevice is a minimal in-memory devices.PWMDevice.
type hwPWMDevice struct{ channels map[devices.Pin]*hwPWM }

func newHWPWMDevice() *hwPWMDevice { return &hwPWMDevice{channels: make(map[devices.Pin]*hwPWM)} }

func (d *hwPWMDevice) Channel(pin devices.Pin) (devices.PWM, error) {
	ch, ok := d.channels[pin]
	if !ok {
		ch = &hwPWM{}
		d.channels[pin] = ch
	}
	return ch, nil
}
func (d *hwPWMDevice) Configure(uint32) error    { return nil }
func (d *hwPWMDevice) SetFrequency(uint32) error { return nil }

// hwI2C is a minimal in-memory devices.I2C backing a simulated MPU6050:
// register reads return fixed raw LSB values so Read() produces a known
// (gyro, accel) sample.
type hwI2C struct{ regs map[uint8][]byte }

func newHWI2C() *hwI2C {
	regs := map[uint8][]byte{
		mpu6050.AccelXOutH: {0x00, 0x00, 0x00, 0x00, 0x40, 0x00}, // az = 0x4000 = 16384 LSB = 1g
		mpu6050.GyroXOutH:  {0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		mpu6050.WhoAmI:     {mpu6050.WhoAmIValue},
	}
	return &hwI2C{regs: regs}
}

func (b *hwI2C) ReadRegister(addr, r uint8, buf []byte) error {
	copy(buf, b.regs[r])
	return nil
}
func (b *hwI2C) WriteRegister(addr, r uint8, buf []byte) error { return nil }

// Tx models the write-register-then-read-block pattern mpu6050.Device
// issues: w holds the starting register address, r (if non-nil) is filled
// from that register onward.
func (b *hwI2C) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 {
		return nil
	}
	if len(w) >= 2 {
		// write8(reg, value): nothing to persist for this fake.
		return nil
	}
	if r != nil {
		copy(r, b.regs[w[0]])
	}
	return nil
}

// TestDevice_WithRealMotorArrayAndIMU constructs a Device over the actual
// x/devices/motor and x/devices/mpu6050 bridges, proving they satisfy
// device.WheelDrive/device.IMUSource end to end rather than only in their
// own package tests.
func TestDevice_WithRealMotorArrayAndIMU(t *testing.T) {
	model, err := differential.New(0.035, 0.18, 1582, 1500)
	require.NoError(t, err)

	pwmDev := newHWPWMDevice()
	leftCfg := motor.DefaultConfig()
	leftCfg.Dir = &hwPin{}
	leftCfg.PWM = &hwPin{}
	leftCfg.Encoder = encoder.New(&hwPin{}, &hwPin{}, encoder.DefaultConfig())
	rightCfg := leftCfg
	rightCfg.Dir = &hwPin{}
	rightCfg.PWM = &hwPin{}
	rightCfg.Encoder = encoder.New(&hwPin{}, &hwPin{}, encoder.DefaultConfig())

	wheels, err := motor.NewMotorArray(pwmDev, []motor.Config{leftCfg, rightCfg})
	require.NoError(t, err)
	require.NoError(t, wheels.Enable())
	defer wheels.Disable()

	imuDev := mpu6050.New(newHWI2C(), mpu6050.DefaultAddress)
	require.NoError(t, imuDev.Configure())

	pid := control.NewPID(1, 0, 0, -10, 10)
	dev, err := device.New(model, wheels,
		device.WithPIDs(control.NewBank(pid, pid, pid, pid)),
		device.WithLimits(control.Limits{ForwardMS: 10, StrafeMS: 10, AngularRad: 10}),
		device.WithIMU(imuDev, 100),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, dev.SetSpeedWhile(ctx, condition.ForTime(20*time.Millisecond),
		speed.Constant(speed.Speed{Forward: 1}), device.WithTickRate(200)))
	dev.Shutdown()

	target := wheels.TargetSpeeds()
	require.Len(t, target, 2)
}
