package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	assert.Equal(t, float32(1), Sign(5))
	assert.Equal(t, float32(-1), Sign(-5))
	assert.Equal(t, float32(0), Sign(0))
}

// TestMinimalAngleDifference_Symmetric checks P6: angle_minimal(a,b) ==
// angle_minimal(b,a) and the result always lies in [0, pi].
func TestMinimalAngleDifference_Symmetric(t *testing.T) {
	twoPi := float32(2 * math.Pi)
	cases := []struct{ a, b float32 }{
		{0, 0},
		{0, twoPi / 2},
		{0.1, 6.2},
		{-1.0, 1.0},
		{twoPi + 0.2, -0.1},
	}
	for _, tc := range cases {
		ab := MinimalAngleDifference(tc.a, tc.b)
		ba := MinimalAngleDifference(tc.b, tc.a)
		assert.InDelta(t, ab, ba, 1e-5)
		assert.GreaterOrEqual(t, ab, float32(0))
		assert.LessOrEqual(t, ab, float32(math.Pi)+1e-5)
	}
}

func TestMinimalAngleDifference_Wraparound(t *testing.T) {
	twoPi := float32(2 * math.Pi)
	diff := MinimalAngleDifference(0.1, twoPi-0.1)
	assert.InDelta(t, 0.2, diff, 1e-4)
}
