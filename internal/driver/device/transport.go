// internal/driver/device/transport.go
// HidTransport is the external collaborator spec.md §1 describes as
// "assumed available": open/close/read/write of 64-byte HID reports for
// a specific device. GousbTransport is the real implementation, grounded
// directly on the teacher's USBDevice (usb_device.go): gousb.NewContext,
// OpenDeviceWithVIDPID, claim config/interface, IN/OUT endpoints, and a
// context-bounded read. The Nitrokey exchanges fixed 64-byte reports
// rather than the teacher's variable-length mining packets; that byte-
// exact discipline is grounded on other_examples' malivvan-aegis/hid and
// karalabe/hid (Conn.Send/Receive, "must return exactly N bytes").
package device

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// HidTransport sends and receives fixed 64-byte HID reports to/from one
// already-identified device. DeviceManager owns the single instance in
// play at any time.
type HidTransport interface {
	Write(r Report) error
	Read(timeout time.Duration) (Report, error)
	Close() error
}

// GousbTransport drives a Nitrokey over USB HID via gousb, the teacher's
// direct USB dependency.
type GousbTransport struct {
	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	epOut  *gousb.OutEndpoint
	epIn   *gousb.InEndpoint
}

// Nitrokey HID endpoints. Interrupt IN/OUT 1, the convention the
// published USB descriptors use for both Pro and Storage.
const (
	hidEndpointOut = 0x01
	hidEndpointIn  = 0x81
	hidInterface   = 0
	hidConfig      = 1
)

// OpenGousbTransport opens the first device matching vendor/product,
// claims its HID interface, and opens both endpoints — the same
// open/claim/endpoint sequence as the teacher's OpenUSBDevice.
func OpenGousbTransport(vendor, product uint16) (*GousbTransport, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vendor), gousb.ID(product))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open usb device: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("usb device not found (VID:0x%04x PID:0x%04x)", vendor, product)
	}

	cfg, err := dev.Config(hidConfig)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("set usb config: %w", err)
	}

	intf, err := cfg.Interface(hidInterface, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("claim usb interface: %w", err)
	}

	epOut, err := intf.OutEndpoint(hidEndpointOut)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("open out endpoint: %w", err)
	}

	epIn, err := intf.InEndpoint(hidEndpointIn)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("open in endpoint: %w", err)
	}

	return &GousbTransport{ctx: ctx, device: dev, config: cfg, intf: intf, epOut: epOut, epIn: epIn}, nil
}

// Write sends one 64-byte report on the OUT endpoint.
func (t *GousbTransport) Write(r Report) error {
	_, err := t.epOut.Write(r[:])
	if err != nil {
		return fmt.Errorf("usb write: %w", err)
	}
	return nil
}

// Read waits up to timeout for one 64-byte report on the IN endpoint.
func (t *GousbTransport) Read(timeout time.Duration) (Report, error) {
	var r Report
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := t.epIn.ReadContext(ctx, r[:])
	if err != nil {
		return r, fmt.Errorf("usb read: %w", err)
	}
	if n != ReportSize {
		return r, fmt.Errorf("usb read: short report (%d bytes)", n)
	}
	return r, nil
}

// Close tears everything down in reverse acquisition order, exactly as
// the teacher's USBDevice.Close does.
func (t *GousbTransport) Close() error {
	if t.intf != nil {
		t.intf.Close()
	}
	if t.config != nil {
		t.config.Close()
	}
	if t.device != nil {
		t.device.Close()
	}
	if t.ctx != nil {
		t.ctx.Close()
	}
	return nil
}
