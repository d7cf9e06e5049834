package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPID_ProportionalOnly(t *testing.T) {
	pid := NewPID(2, 0, 0, -10, 10)
	out := pid.Calculate(1.0, 0.02)
	assert.InDelta(t, 2.0, out, 1e-6)
}

func TestPID_OutputClamped(t *testing.T) {
	pid := NewPID(100, 0, 0, -1, 1)
	out := pid.Calculate(1.0, 0.02)
	assert.Equal(t, float32(1), out)

	out = pid.Calculate(-1.0, 0.02)
	assert.Equal(t, float32(-1), out)
}

func TestPID_IntegralAccumulatesAndClamps(t *testing.T) {
	pid := NewPID(0, 10, 0, -1, 1)
	for i := 0; i < 50; i++ {
		pid.Calculate(1.0, 0.02)
	}
	assert.Equal(t, float32(1), pid.iTerm)
}

func TestPID_ZeroDtIsNoOp(t *testing.T) {
	pid := NewPID(1, 1, 1, -10, 10)
	assert.Equal(t, float32(0), pid.Calculate(5, 0))
}

func TestPID_ResetClearsHistory(t *testing.T) {
	pid := NewPID(0, 1, 1, -10, 10)
	pid.Calculate(1.0, 0.02)
	pid.Reset()
	assert.Equal(t, float32(0), pid.iTerm)
	assert.False(t, pid.hasLast)
}
