// Package nitrokey is the public API surface of this module: a small
// facade over internal/driver/device that applications outside this
// repository import. It re-exports the device types callers need and
// adds the connection helpers that read internal/config for defaults.
// Grounded on the teacher's own thin top-level packages that just wire
// config + device types together for external callers (cmd/cli/main.go's
// use of internal/config and internal/client).
package nitrokey

import (
	"fmt"

	"github.com/vinaebizs/libnitrokey/internal/config"
	"github.com/vinaebizs/libnitrokey/internal/driver/device"
)

// Re-exported types so callers never need to import the internal
// package directly.
type (
	Manager           = device.Manager
	Model             = device.Model
	Session           = device.Session
	HidTransport      = device.HidTransport
	GousbTransport    = device.GousbTransport
	HotpSlot          = device.HotpSlot
	TotpSlot          = device.TotpSlot
	SlotInfo          = device.SlotInfo
	OtpFlags          = device.OtpFlags
	PasswordSafeEntry = device.PasswordSafeEntry
	GeneralConfig     = device.GeneralConfig
	Status            = device.Status
	VolumeMode        = device.VolumeMode
	PinProtectedOtp   = device.PinProtectedOtp
	DeviceError       = device.DeviceError
	TransportError    = device.TransportError
	LocalError        = device.LocalError
)

const (
	ModelPro     = device.ModelPro
	ModelStorage = device.ModelStorage

	VolumeReadOnly  = device.VolumeReadOnly
	VolumeReadWrite = device.VolumeReadWrite
)

// NewManager returns an unconnected device Manager.
func NewManager() *Manager {
	return device.NewManager()
}

// Connect opens the Nitrokey matching model using vendor/product ids
// from configuration and attaches it to mgr.
func Connect(mgr *Manager, model Model) error {
	cfg, err := config.LoadNitrokeyConfig()
	if err != nil {
		return fmt.Errorf("nitrokey: load config: %w", err)
	}

	var productID uint16
	switch model {
	case device.ModelPro:
		productID = cfg.ProductIDPro
	case device.ModelStorage:
		productID = cfg.ProductIDStorage
	default:
		return fmt.Errorf("nitrokey: unknown model %v", model)
	}

	t, err := device.OpenGousbTransport(cfg.VendorID, productID)
	if err != nil {
		return err
	}
	return mgr.Connect(model, t)
}

// ConnectAuto opens the first Pro or Storage device found.
func ConnectAuto(mgr *Manager) error {
	return device.ConnectAuto(mgr)
}

// NewPinProtectedOtp wraps mgr for PIN-gated OTP reads.
func NewPinProtectedOtp(mgr *Manager) *PinProtectedOtp {
	return device.NewPinProtectedOtp(mgr)
}
