// internal/driver/device/model.go
// Device model identification and USB addressing.
package device

// Model identifies which Nitrokey hardware variant a Manager is talking
// to. Storage is a superset of Pro: every Pro command is valid on a
// Storage device, plus the Storage-only encrypted-volume commands.
type Model int

const (
	ModelUnknown Model = iota
	ModelPro
	ModelStorage
)

func (m Model) String() string {
	switch m {
	case ModelPro:
		return "Pro"
	case ModelStorage:
		return "Storage"
	default:
		return "Unknown"
	}
}

// usbIdentity is the published Nitrokey USB vendor/product ID pair for a
// model, used by gousb.OpenDeviceWithVIDPID.
type usbIdentity struct {
	vendor  uint16
	product uint16
}

var usbIdentities = map[Model]usbIdentity{
	ModelPro:     {vendor: 0x20A0, product: 0x4108},
	ModelStorage: {vendor: 0x20A0, product: 0x4109},
}

// supportsCommand reports whether a model's command set includes id.
// Storage devices accept everything; Pro devices reject Storage-only ids.
func (m Model) supportsCommand(d *CommandDescriptor) bool {
	if !d.StorageOnly {
		return true
	}
	return m == ModelStorage
}
