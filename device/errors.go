package device

import "errors"

var (
	// ErrAlreadyRunning is returned by SetSpeedWhile when a motion task is
	// already in progress on this device (the non-reentrant guard of §5).
	ErrAlreadyRunning = errors.New("device: a motion task is already running")
	// ErrNotRunning names the state in which no motion task is running on
	// the device. No function in this package returns it.
	ErrNotRunning = errors.New("device: no motion task is running")
	// ErrInvalidDt names a tick interval that is not strictly positive.
	// SetSpeedWhile does not return it: a tick with such an interval is
	// skipped and the loop goes on.
	ErrInvalidDt = errors.New("device: tick dt must be positive")
	// ErrDegenerateReference names a degenerate reference vector or
	// geometry. No function in this package returns it; the attitude
	// package reports that case with its own ErrDegenerateVector.
	ErrDegenerateReference = errors.New("device: degenerate reference geometry")
)
