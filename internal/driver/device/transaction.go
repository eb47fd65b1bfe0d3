// internal/driver/device/transaction.go
// TransactionEngine runs one command end-to-end: privilege gate, write
// the request once, read the device's reply repeatedly until its echoed
// CRC matches the request just sent (discarding stale reports left over
// from a previous exchange) and its status is no longer Busy, and resolve
// the final status into either a payload or a DeviceError. Grounded on
// the teacher's Device.mu-guarded read/write/parse cycle (controller.go)
// and its claimInterface/releaseInterface pairing (usb_device.go), with a
// fixed read-and-retry poll in place of the teacher's free-form response
// parsing.
package device

import (
	"encoding/binary"
	"time"
)

// TransactionEngine owns the single HidTransport in play for one
// connected device. Callers (Manager) are responsible for serializing
// calls to Run; the engine itself assumes exclusive access.
type TransactionEngine struct {
	transport HidTransport
	timeout   time.Duration // per-read timeout passed to transport.Read
}

// NewTransactionEngine wraps transport with the poll/retry machinery.
func NewTransactionEngine(transport HidTransport, timeout time.Duration) *TransactionEngine {
	return &TransactionEngine{transport: transport, timeout: timeout}
}

// Run submits one command and returns its response payload. session
// supplies the temporary password a privileged command embeds in its
// payload (callers build that payload before calling Run) and is
// updated in place to reflect the device's final status.
func (e *TransactionEngine) Run(desc *CommandDescriptor, payload []byte, session *Session) ([]byte, error) {
	if desc.Privilege != PrivilegeNone {
		if _, ok := session.tempFor(desc.Privilege); !ok {
			return nil, newLocalError(desc.Name, ErrNotAuthenticated)
		}
	}

	req := requestReport(desc.ID, payload)

	if err := e.transport.Write(req); err != nil {
		session.invalidate()
		return nil, newTransportError(desc.Name, err)
	}

	status, respPayload, err := e.poll(req)
	if err != nil {
		session.invalidate()
		return nil, newTransportError(desc.Name, err)
	}

	session.setLastStatus(status)

	switch status {
	case StatusOk:
		return respPayload, nil
	case StatusUserNotAuthenticated:
		dropForFailedPrivilege(session, desc.Privilege)
		return nil, newDeviceError(status)
	default:
		return nil, newDeviceError(status)
	}
}

// dropForFailedPrivilege invalidates whichever temporary password the
// failing command actually required. DeviceStatus has exactly one
// not-authenticated value (User_Not_Authenticated, spec.md §3); which
// session slot it invalidates depends on the privilege the command being
// run demanded, not on the status byte itself.
func dropForFailedPrivilege(session *Session, priv Privilege) {
	switch priv {
	case PrivilegeAdmin:
		session.dropAdmin()
	case PrivilegeUser:
		session.dropUser()
	}
}

// RunLarge submits a command whose serialized payload does not fit in
// one 59-byte report field. It is grounded on the real Nitrokey wire
// behavior for oversized structs (e.g. stick10's WriteToHOTPSlot, whose
// name+secret+counter+token fields exceed one HID report): the payload
// is split into sequential reports carrying the same command id, all
// but the last sent fire-and-forget, with only the last chunk's
// exchange polled and resolved through the normal status path.
func (e *TransactionEngine) RunLarge(desc *CommandDescriptor, payload []byte, session *Session) ([]byte, error) {
	if len(payload) <= reqPayloadSize {
		return e.Run(desc, payload, session)
	}
	if desc.Privilege != PrivilegeNone {
		if _, ok := session.tempFor(desc.Privilege); !ok {
			return nil, newLocalError(desc.Name, ErrNotAuthenticated)
		}
	}

	for off := 0; off < len(payload); off += reqPayloadSize {
		end := off + reqPayloadSize
		last := end >= len(payload)
		if end > len(payload) {
			end = len(payload)
		}
		chunk := payload[off:end]

		req := requestReport(desc.ID, chunk)
		if err := e.transport.Write(req); err != nil {
			session.invalidate()
			return nil, newTransportError(desc.Name, err)
		}

		if !last {
			continue
		}

		status, respPayload, err := e.poll(req)
		if err != nil {
			session.invalidate()
			return nil, newTransportError(desc.Name, err)
		}
		session.setLastStatus(status)

		switch status {
		case StatusOk:
			return respPayload, nil
		case StatusUserNotAuthenticated:
			dropForFailedPrivilege(session, desc.Privilege)
			return nil, newDeviceError(status)
		default:
			return nil, newDeviceError(status)
		}
	}
	return nil, nil // unreachable: loop always returns on its last iteration
}

// poll re-reads the device's reply until a response's echoed CRC
// matches origReq's own CRC (discarding reports left over from an
// earlier exchange) and its status is no longer Busy. A
// response failing its own trailing CRC is reported as ErrBadCRC without
// ever reaching the status switch in Run, so a corrupted report never
// updates the session's last status.
func (e *TransactionEngine) poll(origReq Report) (Status, []byte, error) {
	origCRC := binary.LittleEndian.Uint32(origReq[reqOffsetCRC:])
	b := newBackoff()

	for attempt := 0; attempt < pollMaxAttempts; attempt++ {
		resp, err := e.transport.Read(e.timeout)
		if err != nil {
			return 0, nil, err
		}

		if !verifyCRC(resp) {
			return 0, nil, ErrBadCRC
		}

		if responseCRCEcho(resp) != origCRC {
			time.Sleep(b.next())
			continue
		}

		status := responseStatus(resp)
		if status == StatusBusy {
			time.Sleep(b.next())
			continue
		}

		return status, responsePayload(resp), nil
	}

	return 0, nil, ErrPollTimeout
}
