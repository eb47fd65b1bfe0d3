// internal/driver/device/errors.go
// Three error categories, per spec.md §7: local/programming errors (never
// transmitted), transport errors (invalidate the session), and device
// errors (a non-Ok status byte propagated verbatim). All wrap with
// fmt.Errorf("...: %w", err) in the teacher's convention
// (controller.go, usb_device.go, bridge.go all do this uniformly).
package device

import (
	"errors"
	"fmt"
)

// Local/programming errors. Never touch the device; a caller should treat
// these as a bug in the calling code, not a recoverable device condition.
var (
	ErrOutOfRange        = errors.New("nitrokey: slot index out of range")
	ErrStringTooLong     = errors.New("nitrokey: string exceeds field width")
	ErrNotAuthenticated  = errors.New("nitrokey: required temporary password is absent")
	ErrAlreadyConnected  = errors.New("nitrokey: manager already has an active device")
	ErrNotConnected      = errors.New("nitrokey: manager has no active device")
	ErrUnsupportedOnPro  = errors.New("nitrokey: command not supported on Pro devices")
)

// LocalError wraps one of the sentinels above with extra context. It is
// never transmitted to the device.
type LocalError struct {
	Op  string
	Err error
}

func (e *LocalError) Error() string { return fmt.Sprintf("nitrokey: %s: %v", e.Op, e.Err) }
func (e *LocalError) Unwrap() error { return e.Err }

func newLocalError(op string, err error) error {
	return &LocalError{Op: op, Err: err}
}

// TransportError wraps a failure from the underlying HidTransport: a
// write/read failure, disconnection, or poll timeout. A TransportError
// always invalidates the session's temporary passwords, since the device
// may no longer agree they are valid.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("nitrokey: transport error during %s: %v", e.Op, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// ErrPollTimeout is the TransportError's wrapped cause when the device
// stays Busy past the poll deadline.
var ErrPollTimeout = errors.New("nitrokey: poll deadline exceeded while device stayed Busy")

// DeviceError is a non-Ok status byte reported by the device, propagated
// verbatim. The caller may inspect Status to decide recovery, e.g. retry
// after correcting a Wrong_Password.
type DeviceError struct {
	Status Status
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("nitrokey: device reported status %s", e.Status)
}

func newDeviceError(s Status) error {
	return &DeviceError{Status: s}
}

// ErrBadCRC is returned by the transaction engine when a response
// report's trailing CRC does not match the bytes it was computed over.
// Per spec.md §8, a bad-CRC response must not update last_status.
var ErrBadCRC = errors.New("nitrokey: response CRC mismatch")

