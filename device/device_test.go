package device_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/control"
	"github.com/stpmotion/motioncore/device"
	"github.com/stpmotion/motioncore/kinematics/differential"
	"github.com/stpmotion/motioncore/speed"
)

// fakeWheels simulates a two-wheel drivetrain by integrating the last
// commanded velocity (ticks/s) over real elapsed time, so the engine's
// encoder-feedback loop closes against something realistic.
type fakeWheels struct {
	mu       sync.Mutex
	vel      []float32
	pos      []int64
	last     time.Time
	lastCmds [][]float32
}

func newFakeWheels(n int) *fakeWheels {
	return &fakeWheels{vel: make([]float32, n), pos: make([]int64, n), last: time.Now()}
}

func (f *fakeWheels) integrate() {
	now := time.Now()
	dt := now.Sub(f.last).Seconds()
	f.last = now
	for i, v := range f.vel {
		f.pos[i] += int64(v * float32(dt))
	}
}

func (f *fakeWheels) SetVelocities(ticksPerSec []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.integrate()
	cmd := make([]float32, len(ticksPerSec))
	copy(cmd, ticksPerSec)
	copy(f.vel, ticksPerSec)
	f.lastCmds = append(f.lastCmds, cmd)
	return nil
}

func (f *fakeWheels) Positions() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.integrate()
	out := make([]int64, len(f.pos))
	copy(out, f.pos)
	return out
}

func (f *fakeWheels) Stop() error { return f.SetVelocities(make([]float32, len(f.vel))) }

func (f *fakeWheels) lastCommand() []float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lastCmds) == 0 {
		return nil
	}
	return f.lastCmds[len(f.lastCmds)-1]
}

type fakeLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *fakeLogger) Debug(string, ...any) {}
func (l *fakeLogger) Info(string, ...any)  {}
func (l *fakeLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
func (l *fakeLogger) Error(string, error, ...any) {}

func (l *fakeLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func zeroBank() control.Bank {
	pid := control.NewPID(0, 0, 0, -1, 1)
	return control.NewBank(pid, pid, pid, pid)
}

func TestSetSpeedWhile_AlreadyRunning(t *testing.T) {
	model, err := differential.New(0.035, 0.18, 1582, 1500)
	require.NoError(t, err)
	wheels := newFakeWheels(2)
	dev, err := device.New(model, wheels, device.WithPIDs(zeroBank()), device.WithLimits(control.Limits{ForwardMS: 10, StrafeMS: 10, AngularRad: 10}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- dev.SetSpeedWhile(ctx, condition.WhileTrue(func() bool { return true }), speed.Constant(speed.Speed{}), device.WithTickRate(100))
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	err = dev.SetSpeedWhile(ctx, condition.WhileTrue(func() bool { return true }), speed.Constant(speed.Speed{}))
	assert.ErrorIs(t, err, device.ErrAlreadyRunning)

	cancel()
	<-done
}

// TestSetSpeedWhile_SafetyClamp checks scenario 6: an intentionally
// excessive commanded velocity is clamped to the hard bound (1500 ticks/s)
// and raises a throttled warning.
func TestSetSpeedWhile_SafetyClamp(t *testing.T) {
	model, err := differential.New(0.035, 0.18, 1582, 1500)
	require.NoError(t, err)
	wheels := newFakeWheels(2)
	logger := &fakeLogger{}

	dev, err := device.New(model, wheels,
		device.WithPIDs(zeroBank()),
		device.WithLimits(control.Limits{ForwardMS: 100, StrafeMS: 100, AngularRad: 100}),
		device.WithMaxSpeeds(speed.MaxSpeeds{ForwardMS: 5, StrafeMS: 5, AngularRad: 5}),
		device.WithLogger(logger),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err = dev.SetSpeedWhile(ctx, condition.ForTime(40*time.Millisecond), speed.Constant(speed.Speed{Forward: 1}),
		device.WithCorrection(false), device.WithTickRate(100))
	require.NoError(t, err)

	last := wheels.lastCommand()
	require.NotNil(t, last)
	for _, v := range last {
		assert.LessOrEqual(t, v, float32(1500))
		assert.GreaterOrEqual(t, v, float32(-1500))
	}
	assert.Greater(t, logger.warnCount(), 0)
}

func TestSetSpeedWhile_AutoStopOnCancel(t *testing.T) {
	model, err := differential.New(0.035, 0.18, 1582, 1500)
	require.NoError(t, err)
	wheels := newFakeWheels(2)
	dev, err := device.New(model, wheels, device.WithPIDs(zeroBank()), device.WithLimits(control.Limits{ForwardMS: 10, StrafeMS: 10, AngularRad: 10}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- dev.SetSpeedWhile(ctx, condition.WhileTrue(func() bool { return true }), speed.Constant(speed.Speed{Forward: 1}), device.WithTickRate(100))
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	err = <-done
	assert.ErrorIs(t, err, context.Canceled)

	last := wheels.lastCommand()
	require.NotNil(t, last)
	for _, v := range last {
		assert.Equal(t, float32(0), v)
	}
}
