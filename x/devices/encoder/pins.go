package encoder

import "github.com/stpmotion/motioncore/x/devices"

// configurePins is a no-op: callers are expected to configure pin direction
// and pull state themselves before passing them to New.
func configurePins(pinA, pinB devices.Pin) error {
	return nil
}
