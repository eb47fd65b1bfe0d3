// internal/driver/device/slots.go
// Data model types for OTP slots, password-safe slots, and general
// configuration, per spec.md §3.
package device

// Field widths, per spec.md §3 and §6.
const (
	SlotNameWidth     = 15
	SecretWidth       = 20
	TokenIDWidth      = 13
	PwsNameWidth      = 11
	PwsLoginWidth     = 32
	PwsPasswordWidth  = 20
	PinWidth          = 25
	TempPasswordWidth = 25
	UpdatePasswordWidth = 30

	HotpSlotCount = 3
	TotpSlotCount = 15
	PwsSlotCount  = 16
)

// OtpFlags mirrors the per-slot feature flags spec.md §3 describes.
type OtpFlags struct {
	Use8Digits  bool
	UseEnter    bool
	UseTokenID  bool
}

// HotpSlot is the programmable content of one HOTP slot (indices 0..2).
type HotpSlot struct {
	Slot    uint8
	Name    string
	Secret  [SecretWidth]byte
	Counter uint64
	Flags   OtpFlags
	TokenID string
}

// TotpSlot is the programmable content of one TOTP slot (indices 0..14).
type TotpSlot struct {
	Slot       uint8
	Name       string
	Secret     [SecretWidth]byte
	TimeWindow uint16
	Flags      OtpFlags
	TokenID    string
}

// SlotInfo is what ReadSlot gives back: the slot's name and flags. The
// secret is never read back, per spec.md §8's round-trip property.
type SlotInfo struct {
	Name  string
	Flags OtpFlags
}

// PasswordSafeEntry is the programmable content of one Password Safe
// slot (indices 0..15).
type PasswordSafeEntry struct {
	Slot     uint8
	Name     string
	Login    string
	Password string
}

// GeneralConfig is the 5-byte device-wide configuration tuple, per
// spec.md §3.
type GeneralConfig struct {
	Numlock             uint8
	Capslock            uint8
	Scrolllock          uint8
	EnableUserPassword  bool
	DeleteUserPassword  bool
}

// otpTriggerEnabled reports whether slot index v enables a keyboard
// trigger; an out-of-range value (including the common "disabled"
// sentinel 0xFF) disables it, per spec.md §3.
func otpTriggerEnabled(v uint8, bound int) bool {
	return int(v) < bound
}

func validateHotpSlot(slot int) error {
	if slot < 0 || slot >= HotpSlotCount {
		return newLocalError("hotp slot", ErrOutOfRange)
	}
	return nil
}

func validateTotpSlot(slot int) error {
	if slot < 0 || slot >= TotpSlotCount {
		return newLocalError("totp slot", ErrOutOfRange)
	}
	return nil
}

func validatePwsSlot(slot int) error {
	if slot < 0 || slot >= PwsSlotCount {
		return newLocalError("password safe slot", ErrOutOfRange)
	}
	return nil
}
