package motor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stpmotion/motioncore/x/devices"
	"github.com/stpmotion/motioncore/x/devices/encoder"
)

type fakePin struct{ state bool }

func (p *fakePin) Get() bool                                             { return p.state }
func (p *fakePin) Set(v bool)                                            { p.state = v }
func (p *fakePin) High()                                                 { p.state = true }
func (p *fakePin) Low()                                                  { p.state = false }
func (p *fakePin) SetInterrupt(devices.PinChange, func(devices.Pin)) error { return nil }

type fakePWM struct{ duty float32 }

func (p *fakePWM) Set(duty float32) error            { p.duty = duty; return nil }
func (p *fakePWM) SetMicroseconds(uint32) error       { return nil }
func (p *fakePWM) Stop() error                        { p.duty = 0; return nil }

type fakePWMDevice struct{ channels map[devices.Pin]*fakePWM }

func newFakePWMDevice() *fakePWMDevice { return &fakePWMDevice{channels: make(map[devices.Pin]*fakePWM)} }

func (d *fakePWMDevice) Channel(pin devices.Pin) (devices.PWM, error) {
	ch, ok := d.channels[pin]
	if !ok {
		ch = &fakePWM{}
		d.channels[pin] = ch
	}
	return ch, nil
}
func (d *fakePWMDevice) Configure(uint32) error    { return nil }
func (d *fakePWMDevice) SetFrequency(uint32) error { return nil }

func newTestMotor(t *testing.T) (*Motor, *fakePWMDevice, devices.Pin) {
	t.Helper()
	pwm := newFakePWMDevice()
	dirPin := &fakePin{}
	cfg := DefaultConfig()
	cfg.Dir = dirPin
	cfg.PWM = &fakePin{}
	cfg.Encoder = encoder.New(&fakePin{}, &fakePin{}, encoder.DefaultConfig())
	m, err := New(pwm, cfg)
	require.NoError(t, err)
	return m, pwm, dirPin
}

func TestMotorArray_SetVelocities_ConvertsTicksPerSecToRPM(t *testing.T) {
	pwm := newFakePWMDevice()
	cfg := DefaultConfig()
	cfg.Dir = &fakePin{}
	cfg.PWM = &fakePin{}
	cfg.Encoder = encoder.New(&fakePin{}, &fakePin{}, encoder.Config{CountsPerRevolution: 1000, UpdateInterval: 10 * time.Millisecond})

	array, err := NewMotorArray(pwm, []Config{cfg, cfg})
	require.NoError(t, err)

	// 1000 ticks/s at 1000 counts/rev = 1 rev/s = 60 RPM.
	require.NoError(t, array.SetVelocities([]float32{1000, -1000}))
	target := array.TargetSpeeds()
	assert.InDelta(t, 60, target[0], 1e-6)
	assert.InDelta(t, -60, target[1], 1e-6)
}

func TestMotorArray_SetVelocities_RejectsCountMismatch(t *testing.T) {
	pwm := newFakePWMDevice()
	cfg := DefaultConfig()
	cfg.Dir = &fakePin{}
	cfg.PWM = &fakePin{}
	cfg.Encoder = encoder.New(&fakePin{}, &fakePin{}, encoder.DefaultConfig())

	array, err := NewMotorArray(pwm, []Config{cfg})
	require.NoError(t, err)

	require.Error(t, array.SetVelocities([]float32{1, 2}))
}

func TestMotorArray_Stop_ZeroesAllTargets(t *testing.T) {
	pwm := newFakePWMDevice()
	cfg := DefaultConfig()
	cfg.Dir = &fakePin{}
	cfg.PWM = &fakePin{}
	cfg.Encoder = encoder.New(&fakePin{}, &fakePin{}, encoder.DefaultConfig())

	array, err := NewMotorArray(pwm, []Config{cfg, cfg})
	require.NoError(t, err)
	require.NoError(t, array.SetVelocities([]float32{500, 500}))

	require.NoError(t, array.Stop())
	for _, v := range array.TargetSpeeds() {
		assert.Equal(t, float32(0), v)
	}
}

func TestMotor_Update_DrivesDirectionPinFromSign(t *testing.T) {
	m, pwm, dirPin := newTestMotor(t)
	require.NoError(t, m.Enable())
	defer m.Disable()

	require.NoError(t, m.SetSpeed(50))
	m.update()
	assert.True(t, dirPin.Get())
	ch, _ := pwm.Channel(m.config.PWM)
	assert.InDelta(t, 0.5, ch.(*fakePWM).duty, 1e-6)

	require.NoError(t, m.SetSpeed(-50))
	m.update()
	assert.False(t, dirPin.Get())
}
