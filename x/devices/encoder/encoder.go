// Package encoder decodes a quadrature pair into a signed tick count and an
// RPM estimate, the feedback half of the C1 wheel bridge (x/devices/motor
// reads Position/RPM off of it). 4x decoding: every edge on either channel
// advances or retreats the count, giving four counts per detent.
package encoder

import (
	"sync/atomic"
	"time"

	"github.com/stpmotion/motioncore/x/devices"
)

// quadratureDelta maps a 4-bit (previous-state<<2 | new-state) transition to
// its count delta: +1, -1, or 0 for an illegal/bounced transition.
var quadratureDelta = [16]int8{0, -1, 1, 0, 1, 0, 0, -1, -1, 0, 0, 1, 0, 1, -1, 0}

// Device tracks one quadrature-encoded shaft: a signed tick count updated
// from pin interrupts, and a periodically refreshed RPM estimate derived
// from the count's rate of change.
type Device struct {
	pinA, pinB devices.Pin

	ticks atomic.Int64

	// state holds the last two decode cycles' (A,B) bit pairs; only the
	// interrupt handler touches it, so it needs no atomic.
	state uint32

	ticksAtLastRPM atomic.Int64
	rpmClockUs     atomic.Int64
	rpmMilliRPM    atomic.Int64 // RPM * 1000, fixed point

	countsPerRev int64
	rpmWindow    time.Duration
}

// Config sets an encoder's physical resolution and RPM refresh cadence.
type Config struct {
	// CountsPerRevolution is the tick count for one full shaft turn (e.g.
	// 2048 for a 512 PPR encoder under 4x decoding).
	CountsPerRevolution int64
	// UpdateInterval is the minimum time between RPM recomputations.
	UpdateInterval time.Duration
}

// DefaultConfig returns a 512 PPR / 100ms-refresh configuration.
func DefaultConfig() Config {
	return Config{CountsPerRevolution: 2048, UpdateInterval: 100 * time.Millisecond}
}

// New builds an encoder over a quadrature pin pair. Call Configure to start
// tracking; New alone does not attach interrupts.
func New(pinA, pinB devices.Pin, config Config) *Device {
	if config.CountsPerRevolution == 0 {
		config.CountsPerRevolution = 2048
	}
	if config.UpdateInterval == 0 {
		config.UpdateInterval = 100 * time.Millisecond
	}
	return &Device{
		pinA:         pinA,
		pinB:         pinB,
		countsPerRev: config.CountsPerRevolution,
		rpmWindow:    config.UpdateInterval,
	}
}

// Configure seeds the initial pin state and attaches the toggle interrupts
// both channels decode through.
func (d *Device) Configure() error {
	if err := configurePins(d.pinA, d.pinB); err != nil {
		return err
	}

	d.state = packAB(d.pinA.Get(), d.pinB.Get())
	d.state |= d.state << 2 // prime both history slots so the first real edge decodes cleanly

	if err := d.pinA.SetInterrupt(devices.PinToggle, d.onEdge); err != nil {
		return err
	}
	if err := d.pinB.SetInterrupt(devices.PinToggle, d.onEdge); err != nil {
		return err
	}

	d.rpmClockUs.Store(time.Now().UnixMicro())
	return nil
}

func packAB(aHigh, bHigh bool) uint32 {
	var v uint32
	if aHigh {
		v |= 0x02
	}
	if bHigh {
		v |= 0x01
	}
	return v
}

// onEdge is the shared interrupt handler for both channels: it reads the
// current (A,B) pair, looks up the transition delta, and advances ticks.
// Only ever called from interrupt context, so state needs no atomic.
func (d *Device) onEdge(devices.Pin) {
	d.state = (d.state<<2 | packAB(d.pinA.Get(), d.pinB.Get())) & 0x0f
	if delta := int64(quadratureDelta[d.state]); delta != 0 {
		d.ticks.Add(delta)
	}
}

// Position returns the current signed tick count.
func (d *Device) Position() int64 { return d.ticks.Load() }

// Reset zeroes the tick count and restarts the RPM window.
func (d *Device) Reset() {
	d.ticks.Store(0)
	d.ticksAtLastRPM.Store(0)
	d.rpmClockUs.Store(time.Now().UnixMicro())
	d.rpmMilliRPM.Store(0)
}

// RPM reports the shaft speed in revolutions per minute, refreshed at most
// once per UpdateInterval.
func (d *Device) RPM() float64 {
	d.refreshRPM()
	return float64(d.rpmMilliRPM.Load()) / 1000.0
}

// refreshRPM recomputes the RPM estimate if at least one UpdateInterval has
// elapsed since the last computation.
func (d *Device) refreshRPM() {
	now := time.Now().UnixMicro()
	lastClock := d.rpmClockUs.Load()
	if time.Duration(now-lastClock) < d.rpmWindow {
		return
	}

	pos := d.ticks.Load()
	lastPos := d.ticksAtLastRPM.Load()
	elapsedUs := now - lastClock
	if elapsedUs > 0 {
		// RPM*1000 = (deltaTicks / countsPerRev) * (60_000_000 us/min) * 1000 / elapsedUs
		d.rpmMilliRPM.Store((pos - lastPos) * 60_000_000_000 / (d.countsPerRev * elapsedUs))
	}

	d.ticksAtLastRPM.Store(pos)
	d.rpmClockUs.Store(now)
}

// SetCountsPerRevolution updates the shaft resolution used by RPM.
func (d *Device) SetCountsPerRevolution(counts int64) { d.countsPerRev = counts }

// CountsPerRevolution returns the configured shaft resolution.
func (d *Device) CountsPerRevolution() int64 { return d.countsPerRev }
