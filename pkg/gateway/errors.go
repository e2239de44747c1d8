package gateway

import "fmt"

// DeviceError is the single error kind raised by the gateway layer. It
// carries a human-readable message naming the command, property, or model
// involved, plus the original low-level cause when available.
type DeviceError struct {
	// Msg is the human-readable context.
	Msg string

	// Cause is the wrapped low-level error, if any.
	Cause error
}

// Error returns the message, including the cause when present.
func (e *DeviceError) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

// Unwrap returns the wrapped cause.
func (e *DeviceError) Unwrap() error {
	return e.Cause
}

// deviceErrorf builds a DeviceError with a formatted message wrapping cause.
func deviceErrorf(cause error, format string, args ...any) *DeviceError {
	return &DeviceError{
		Msg:   fmt.Sprintf(format, args...),
		Cause: cause,
	}
}
