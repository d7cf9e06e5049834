package devices

// Pin represents a GPIO pin. It is implemented by machine.Pin in TinyGo,
// and can be implemented by Linux GPIO drivers for Raspberry Pi.
// Configuration is done by concrete implementations, not through this interface.
type Pin interface {
	PinInterrupt

	// Get returns the current pin state (high = true, low = false).
	Get() bool

	// Set sets the pin state (high = true, low = false).
	Set(value bool)

	// High sets the pin to high (true).
	High()

	// Low sets the pin to low (false).
	Low()
}

// PinInterrupt allows configuring an interrupt callback on a pin.
type PinInterrupt interface {
	// SetInterrupt sets up an interrupt on the pin for the selected change type.
	// The callback is called with the pin as its argument.
	SetInterrupt(change PinChange, callback func(Pin)) error
}

// PinChange represents one or more trigger events that can happen on a GPIO
// pin. ORed PinChanges are valid input to SetInterrupt.
type PinChange uint8

const (
	// PinFalling fires on the falling edge.
	PinFalling PinChange = 4 << iota
	// PinRising fires on the rising edge.
	PinRising

	// PinToggle fires on either edge.
	PinToggle = PinFalling | PinRising
)
