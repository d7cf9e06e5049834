package device

import (
	"time"

	"github.com/stpmotion/motioncore/condition"
	"github.com/stpmotion/motioncore/speed"
)

const (
	defaultTickRateHz = 50
	yawAxis           = 2 // gyro_z, NED yaw axis
)

// session holds the per-call state of one setSpeedWhile invocation (§4.5).
// It lives only for the duration of one SetSpeedWhile call; Device never
// keeps more than one alive at a time (enforced by Device.running).
type session struct {
	cond condition.Function
	sf   speed.Function

	doCorrection bool
	autoStop     bool
	resetRamps   bool
	tickRateHz   float64

	result  condition.Result
	started bool
}

// SpeedWhileOption configures one SetSpeedWhile call.
type SpeedWhileOption func(*session)

// WithCorrection toggles gyro-fused heading correction (default true).
func WithCorrection(enabled bool) SpeedWhileOption {
	return func(s *session) { s.doCorrection = enabled }
}

// WithAutoStop toggles stopping the motors when the loop exits (default
// true).
func WithAutoStop(enabled bool) SpeedWhileOption {
	return func(s *session) { s.autoStop = enabled }
}

// WithResetRamps toggles zeroing the ramps on entry (default true).
func WithResetRamps(enabled bool) SpeedWhileOption {
	return func(s *session) { s.resetRamps = enabled }
}

// WithTickRate overrides the motion loop's tick rate in Hz (default 50,
// within the spec's 10-50 Hz motion-control target).
func WithTickRate(hz float64) SpeedWhileOption {
	return func(s *session) { s.tickRateHz = hz }
}

func newSession(cond condition.Function, sf speed.Function, opts []SpeedWhileOption) *session {
	s := &session{
		cond:         cond,
		sf:           sf,
		doCorrection: true,
		autoStop:     true,
		resetRamps:   true,
		tickRateHz:   defaultTickRateHz,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *session) tickInterval() time.Duration {
	return time.Duration(float64(time.Second) / s.tickRateHz)
}
