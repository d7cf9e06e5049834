package motion_test

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
	"github.com/stpmotion/motioncore/kinematics/mecanum"
	"github.com/stpmotion/motioncore/motion"
	"github.com/stpmotion/motioncore/speed"
)

// fakeWheels integrates the last commanded velocity (ticks/s) over real
// elapsed time, closing the encoder-feedback loop realistically.
type fakeWheels struct {
	mu   sync.Mutex
	vel  []float32
	pos  []int64
	last time.Time
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
	copy(f.vel, ticksPerSec)
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

// fakeLineSensors simulates approaching a line, sitting on it, then
// clearing it, purely as a function of elapsed wall time.
type fakeLineSensors struct {
	start  time.Time
	onAt   time.Duration
	offAt  time.Duration
}

func newFakeLineSensors(onAt, offAt time.Duration) *fakeLineSensors {
	return &fakeLineSensors{start: time.Now(), onAt: onAt, offAt: offAt}
}

func (s *fakeLineSensors) onLine() bool {
	elapsed := time.Since(s.start)
	return elapsed >= s.onAt && elapsed < s.offAt
}

func (s *fakeLineSensors) LeftBlack() bool  { return s.onLine() }
func (s *fakeLineSensors) RightBlack() bool { return s.onLine() }

func looseBank() control.Bank {
	pid := control.NewPID(1, 0, 0, -10, 10)
	return control.NewBank(pid, pid, pid, pid)
}

func newDiffDevice(t *testing.T) (*device.Device, *fakeWheels) {
	t.Helper()
	model, err := differential.New(0.035, 0.18, 1582, 1500)
	require.NoError(t, err)
	wheels := newFakeWheels(2)
	dev, err := device.New(model, wheels,
		device.WithPIDs(looseBank()),
		device.WithLimits(control.Limits{ForwardMS: 10, StrafeMS: 10, AngularRad: 10}),
	)
	require.NoError(t, err)
	return dev, wheels
}

func newMecanumDevice(t *testing.T) (*device.Device, *fakeWheels) {
	t.Helper()
	model, err := mecanum.New(0.035, 0.1, 1582, 1500)
	require.NoError(t, err)
	wheels := newFakeWheels(4)
	dev, err := device.New(model, wheels,
		device.WithPIDs(looseBank()),
		device.WithLimits(control.Limits{ForwardMS: 10, StrafeMS: 10, AngularRad: 10}),
	)
	require.NoError(t, err)
	return dev, wheels
}

// TestDriveStraight_DistanceTerminates checks P7: a Distance(d) conditional
// terminates once driven distance reaches d/100 meters.
func TestDriveStraight_DistanceTerminates(t *testing.T) {
	dev, _ := newDiffDevice(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := motion.DriveStraight(ctx, dev, condition.ForDistance(10), speed.Constant(speed.Speed{Forward: 1}), device.WithTickRate(200))
	assert.NoError(t, err)
}

// TestRotate_ReachesTarget checks P5: rotating against ForCWRotation(90)
// brings current_heading to at least 1.56 rad before terminating.
func TestRotate_ReachesTarget(t *testing.T) {
	dev, _ := newDiffDevice(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := motion.Rotate(ctx, dev, condition.ForCWRotation(90), speed.Constant(speed.Speed{Angular: 1}), device.WithTickRate(200))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, dev.GetCurrentHeading(), float32(1.56))
}

func TestDriveArc_AppliesNonZeroAngularForNonZeroRadius(t *testing.T) {
	dev, wheels := newDiffDevice(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := motion.DriveArc(ctx, dev, condition.ForTime(30*time.Millisecond), 50, 0.5, control.Forward, device.WithTickRate(100))
	require.NoError(t, err)

	pos := wheels.Positions()
	require.Len(t, pos, 2)
	assert.NotEqual(t, pos[0], pos[1], "an arc should drive the two wheels at different rates")
}

func TestStrafe_OmniOnly(t *testing.T) {
	dev, _ := newMecanumDevice(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := motion.Strafe(ctx, dev, condition.ForTime(20*time.Millisecond), 0.5, device.WithTickRate(100))
	assert.NoError(t, err)
}

// TestLineUp_CompletesThreePhases exercises the three-phase sequence end
// to end against a sensor pair that reports "on the line" only in a
// bounded time window, matching the approach/micro-correct/clear shape.
func TestLineUp_CompletesThreePhases(t *testing.T) {
	dev, _ := newDiffDevice(t)
	sensors := newFakeLineSensors(20*time.Millisecond, 60*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- motion.ForwardLineUp(context.Background(), dev, sensors, device.WithTickRate(200))
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("line_up did not complete within 3s")
	}
}
