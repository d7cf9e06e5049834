package encoder_test

import (
	"fmt"

	"github.com/stpmotion/motioncore/x/devices"
	"github.com/stpmotion/motioncore/x/devices/encoder"
)

// examplePin is a minimal in-memory devices.Pin: the toggling itself is
// driven by the example, not by real interrupts.
type examplePin struct {
	state bool
	onRaw func(devices.Pin)
}

func (p *examplePin) Get() bool  { return p.state }
func (p *examplePin) Set(v bool) { p.state = v }
func (p *examplePin) High()      { p.state = true }
func (p *examplePin) Low()       { p.state = false }
func (p *examplePin) SetInterrupt(_ devices.PinChange, cb func(devices.Pin)) error {
	p.onRaw = cb
	return nil
}
func (p *examplePin) toggle() {
	p.state = !p.state
	if p.onRaw != nil {
		p.onRaw(p)
	}
}

// ExampleDevice shows decoding one quadrature step: A leads B by one edge,
// then B follows, the forward-rotation pattern.
func ExampleDevice() {
	pinA, pinB := &examplePin{}, &examplePin{}

	enc := encoder.New(pinA, pinB, encoder.DefaultConfig())
	if err := enc.Configure(); err != nil {
		fmt.Println("configure failed:", err)
		return
	}

	pinA.toggle()
	pinB.toggle()

	fmt.Println("Position:", enc.Position())
	// Output: Position: 2
}
