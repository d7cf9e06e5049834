package control

import (
	"github.com/chewxy/math32"

	"github.com/stpmotion/motioncore/speed"
)

// epsilon mirrors the original's utility::EPSILON used to decide whether a
// rotation or a heading-hold correction applies.
const epsilon = 1e-4

// Direction is the device's configured drive direction, applied as a sign
// flip to the desired heading before the heading PID runs (§4.4's
// direction_sign resolution: Forward = +1, Backward = -1, i.e. "drive
// backwards").
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) sign() float32 {
	if d == Backward {
		return -1
	}
	return 1
}

// Sign reports the direction_sign used by the heading controller: +1 for
// Forward, -1 for Backward.
func (d Direction) Sign() float32 { return d.sign() }

// Bank is the four-axis PID controller (Vx, Vy, W, Heading) of §4.4,
// grounded on DifferentialDrive's vXPid/vYPid/wPid/headingPid quartet.
type Bank struct {
	Vx, Vy, W, Heading PID
}

// NewBank builds a Bank with independently tuned per-axis gains.
func NewBank(vx, vy, w, heading PID) Bank {
	return Bank{Vx: vx, Vy: vy, W: w, Heading: heading}
}

// Reset clears all four controllers' integral/derivative history.
func (b *Bank) Reset() {
	b.Vx.Reset()
	b.Vy.Reset()
	b.W.Reset()
	b.Heading.Reset()
}

// CombineToOmega picks between rotation-plus-correction and heading-hold
// correction, mirroring combineToOmega: an explicit angular command with no
// heading target in play passes through plus its velocity correction;
// otherwise the heading PID alone commands omega.
func CombineToOmega(absoluteAngularRad, correctionOmega, headingCorrection, desiredHeading float32) float32 {
	hasRotation := math32.Abs(absoluteAngularRad) > epsilon
	shouldTargetHeading := math32.Abs(desiredHeading) > epsilon
	if hasRotation && !shouldTargetHeading {
		return absoluteAngularRad + correctionOmega
	}
	return headingCorrection
}

// Calculate runs one control tick: a heading PID producing the final omega
// (or a blend with the commanded angular rate, via CombineToOmega), and
// Vx/Vy PID corrections added to the commanded forward/strafe rates.
// desiredHeading/currentHeading are radians, dt is the sample period in
// seconds.
func (b *Bank) Calculate(cmd speed.AbsoluteSpeed, measured speed.AbsoluteSpeed, desiredHeading, currentHeading float32, dir Direction, dt float32) (finalVx, finalVy, finalOmega float32) {
	signedDesired := desiredHeading * dir.sign()
	angleDiff := MinimalAngleDifference(signedDesired, currentHeading)
	headingError := angleDiff * Sign(signedDesired-currentHeading)
	headingCorrection := b.Heading.Calculate(headingError, dt)

	errVx := cmd.ForwardMS - measured.ForwardMS
	errVy := cmd.StrafeMS - measured.StrafeMS
	errOmega := cmd.AngularRad - measured.AngularRad

	correctionVx := b.Vx.Calculate(errVx, dt)
	correctionVy := b.Vy.Calculate(errVy, dt)
	correctionOmega := b.W.Calculate(errOmega, dt)

	finalVx = cmd.ForwardMS + correctionVx
	finalVy = cmd.StrafeMS + correctionVy
	finalOmega = CombineToOmega(cmd.AngularRad, correctionOmega, headingCorrection, desiredHeading)
	return finalVx, finalVy, finalOmega
}
