package motor

import (
	"github.com/stpmotion/motioncore/x/devices"
	"github.com/stpmotion/motioncore/x/devices/encoder"
)

// Type represents the motor driver type (how the motor is connected).
type Type int

const (
	// TypeDirPWM uses one direction pin and one PWM pin.
	// Direction is controlled by the dir pin (high/low).
	// Speed is controlled by PWM duty cycle on the pwm pin.
	TypeDirPWM Type = iota

	// TypeABPWM uses two pins (A and B) both with PWM.
	// Speed and direction are controlled by the relative PWM duty cycles:
	// - Forward: A=PWM, B=0
	// - Reverse: A=0, B=PWM
	// - Stop: A=0, B=0
	TypeABPWM

	// TypeABDirPWM uses two pins (A and B) with direction control and PWM.
	// Direction is controlled by setting A high/low (B is opposite).
	// Speed is controlled by PWM duty cycle on the pwm pin.
	// Note: This is similar to TypeDirPWM but uses A/B pins instead of dir/pwm.
	TypeABDirPWM
)

// Config holds configuration for a motor.
type Config struct {
	// Motor driver type
	Type Type

	// Pins configuration (depends on Type)
	// For TypeDirPWM: Dir and PWM are used
	// For TypeABPWM: PinA and PinB are used (both PWM)
	// For TypeABDirPWM: PinA, PinB, and PWM are used
	Dir  devices.Pin // Direction pin (TypeDirPWM)
	PWM  devices.Pin // PWM pin (TypeDirPWM, TypeABDirPWM)
	PinA devices.Pin // Pin A (TypeABPWM, TypeABDirPWM)
	PinB devices.Pin // Pin B (TypeABPWM, TypeABDirPWM)

	// Encoder for feedback (reporting only; this bridge runs open loop)
	Encoder *encoder.Device

	// Control parameters
	SamplePeriod float32 // PWM refresh period in seconds (default: 0.01 = 10ms)

	// Max speed in RPM (for scaling commanded speed to PWM duty)
	MaxRPM float32 // Maximum motor speed in RPM (default: 100)
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Type:         TypeDirPWM,
		SamplePeriod: 0.01, // 10ms
		MaxRPM:       100,
	}
}

