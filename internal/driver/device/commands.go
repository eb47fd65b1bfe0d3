// internal/driver/device/commands.go
// The typed, high-level API: one method per catalog entry, each
// responsible only for building its own request payload with builder,
// running it through the Manager, and parsing the response with reader.
// All protocol mechanics (privilege gating, polling, CRC, chunking) stay
// in transaction.go; this file is pure marshaling, the same division of
// labor the teacher keeps between controller.go (mechanics) and its
// higher-level mining-job helpers.
package device

import "fmt"

// authenticatedPayload prefixes domain with the active temp password for
// priv, returning the combined bytes ready for Manager.run/RunLarge.
func authenticatedPayload(session *Session, priv Privilege, domain []byte) ([]byte, error) {
	tp, ok := session.tempFor(priv)
	if !ok {
		return nil, newLocalError("authenticatedPayload", ErrNotAuthenticated)
	}
	out := make([]byte, TempPasswordWidth+len(domain))
	copy(out, tp[:])
	copy(out[TempPasswordWidth:], domain)
	return out, nil
}

// --- Status and identity -----------------------------------------------

// GetStatus returns the device's raw status payload (firmware version
// and serial, read back as opaque bytes since Storage and Pro layouts
// differ; see GetSerialNumber for a typed accessor).
func (m *Manager) GetStatus() ([]byte, error) {
	return m.run("GetStatus", nil)
}

// GetSerialNumber returns the device's serial number string.
func (m *Manager) GetSerialNumber() (string, error) {
	resp, err := m.run("GetSerialNumber", nil)
	if err != nil {
		return "", err
	}
	return newReader(resp).stringAt(0, 15), nil
}

// GetPasswordRetryCount returns the admin PIN's remaining retry count.
func (m *Manager) GetPasswordRetryCount() (uint8, error) {
	resp, err := m.run("GetPasswordRetryCount", nil)
	if err != nil {
		return 0, err
	}
	return newReader(resp).byteAt(0), nil
}

// GetUserPasswordRetryCount returns the user PIN's remaining retry count.
func (m *Manager) GetUserPasswordRetryCount() (uint8, error) {
	resp, err := m.run("GetUserPasswordRetryCount", nil)
	if err != nil {
		return 0, err
	}
	return newReader(resp).byteAt(0), nil
}

// --- Authentication -----------------------------------------------------

// FirstAuthenticate exchanges the admin PIN for an admin temporary
// password, bound to the session on success.
func (m *Manager) FirstAuthenticate(adminPin string) error {
	var b builder
	if err := b.putString(0, PinWidth, adminPin); err != nil {
		return err
	}
	resp, err := m.run("FirstAuthenticate", b.bytes())
	if err != nil {
		return err
	}
	var tp TemporaryPassword
	copy(tp[:], newReader(resp).bytesAt(0, TempPasswordWidth))
	m.Session().setTemp(PrivilegeAdmin, tp)
	return nil
}

// UserAuthenticate exchanges the user PIN for a user temporary password.
func (m *Manager) UserAuthenticate(userPin string) error {
	var b builder
	if err := b.putString(0, PinWidth, userPin); err != nil {
		return err
	}
	resp, err := m.run("UserAuthenticate", b.bytes())
	if err != nil {
		return err
	}
	var tp TemporaryPassword
	copy(tp[:], newReader(resp).bytesAt(0, TempPasswordWidth))
	m.Session().setTemp(PrivilegeUser, tp)
	return nil
}

// LockDevice drops both temporary passwords, device-side and locally.
func (m *Manager) LockDevice() error {
	_, err := m.run("LockDevice", nil)
	if err == nil {
		m.Session().invalidate()
	}
	return err
}

// --- OTP slots -----------------------------------------------------------

func packOtpFlags(f OtpFlags) byte {
	var v byte
	if f.Use8Digits {
		v |= 1 << 0
	}
	if f.UseEnter {
		v |= 1 << 1
	}
	if f.UseTokenID {
		v |= 1 << 2
	}
	return v
}

// WriteHotpSlot programs one of the three HOTP slots. The serialized
// domain fields (name+secret+counter+flags+token id) do not fit one HID
// report alongside the admin temp password, so the exchange runs through
// RunLarge.
func (m *Manager) WriteHotpSlot(slot HotpSlot) error {
	if err := validateHotpSlot(int(slot.Slot)); err != nil {
		return err
	}
	var b builder
	b.putByte(0, slot.Slot)
	if err := b.putString(1, SlotNameWidth, slot.Name); err != nil {
		return err
	}
	if err := b.putFixed(1+SlotNameWidth, SecretWidth, slot.Secret[:]); err != nil {
		return err
	}
	off := 1 + SlotNameWidth + SecretWidth
	b.putUint64(off, slot.Counter)
	b.putByte(off+8, packOtpFlags(slot.Flags))
	if err := b.putString(off+9, TokenIDWidth, slot.TokenID); err != nil {
		return err
	}

	payload, err := authenticatedPayload(m.Session(), PrivilegeAdmin, b.buf[:off+9+TokenIDWidth])
	if err != nil {
		return err
	}
	_, err = m.run("WriteHotpSlot", payload)
	return err
}

// WriteTotpSlot programs one of the fifteen TOTP slots.
func (m *Manager) WriteTotpSlot(slot TotpSlot) error {
	if err := validateTotpSlot(int(slot.Slot)); err != nil {
		return err
	}
	var b builder
	b.putByte(0, slot.Slot)
	if err := b.putString(1, SlotNameWidth, slot.Name); err != nil {
		return err
	}
	if err := b.putFixed(1+SlotNameWidth, SecretWidth, slot.Secret[:]); err != nil {
		return err
	}
	off := 1 + SlotNameWidth + SecretWidth
	b.putUint16(off, slot.TimeWindow)
	b.putByte(off+2, packOtpFlags(slot.Flags))
	if err := b.putString(off+3, TokenIDWidth, slot.TokenID); err != nil {
		return err
	}

	payload, err := authenticatedPayload(m.Session(), PrivilegeAdmin, b.buf[:off+3+TokenIDWidth])
	if err != nil {
		return err
	}
	_, err = m.run("WriteTotpSlot", payload)
	return err
}

// EraseHotpSlot clears a HOTP slot back to unprogrammed.
func (m *Manager) EraseHotpSlot(slot int) error {
	if err := validateHotpSlot(slot); err != nil {
		return err
	}
	var b builder
	b.putByte(0, byte(slot))
	payload, err := authenticatedPayload(m.Session(), PrivilegeAdmin, b.bytes()[:1])
	if err != nil {
		return err
	}
	_, err = m.run("EraseHotpSlot", payload)
	return err
}

// EraseTotpSlot clears a TOTP slot back to unprogrammed.
func (m *Manager) EraseTotpSlot(slot int) error {
	if err := validateTotpSlot(slot); err != nil {
		return err
	}
	var b builder
	b.putByte(0, byte(slot))
	payload, err := authenticatedPayload(m.Session(), PrivilegeAdmin, b.bytes()[:1])
	if err != nil {
		return err
	}
	_, err = m.run("EraseTotpSlot", payload)
	return err
}

// slotKindHotp and slotKindTotp select which slot family ReadSlot reads.
const (
	slotKindHotp = 0
	slotKindTotp = 1
)

// ReadSlot returns a programmed slot's name and flags without its
// secret, per the round-trip property that a secret is never read back.
func (m *Manager) ReadSlot(kind, slot int) (SlotInfo, error) {
	switch kind {
	case slotKindHotp:
		if err := validateHotpSlot(slot); err != nil {
			return SlotInfo{}, err
		}
	case slotKindTotp:
		if err := validateTotpSlot(slot); err != nil {
			return SlotInfo{}, err
		}
	default:
		return SlotInfo{}, newLocalError("ReadSlot", fmt.Errorf("unknown slot kind %d", kind))
	}
	var b builder
	b.putByte(0, byte(kind))
	b.putByte(1, byte(slot))
	resp, err := m.run("ReadSlot", b.bytes()[:2])
	if err != nil {
		return SlotInfo{}, err
	}
	r := newReader(resp)
	return SlotInfo{
		Name:  r.stringAt(0, SlotNameWidth),
		Flags: unpackOtpFlags(r.byteAt(SlotNameWidth)),
	}, nil
}

func unpackOtpFlags(v byte) OtpFlags {
	return OtpFlags{
		Use8Digits: v&(1<<0) != 0,
		UseEnter:   v&(1<<1) != 0,
		UseTokenID: v&(1<<2) != 0,
	}
}

// GetHotpCode returns the current HOTP code for a slot without PIN
// confirmation.
func (m *Manager) GetHotpCode(slot int) (string, error) {
	if err := validateHotpSlot(slot); err != nil {
		return "", err
	}
	var b builder
	b.putByte(0, byte(slot))
	resp, err := m.run("GetHotpCode", b.bytes()[:1])
	if err != nil {
		return "", err
	}
	return newReader(resp).stringAt(0, 11), nil
}

// GetHotpCodePin returns the current HOTP code for a slot, confirmed by
// the active user temporary password.
func (m *Manager) GetHotpCodePin(slot int) (string, error) {
	if err := validateHotpSlot(slot); err != nil {
		return "", err
	}
	var b builder
	b.putByte(0, byte(slot))
	payload, err := authenticatedPayload(m.Session(), PrivilegeUser, b.bytes()[:1])
	if err != nil {
		return "", err
	}
	resp, err := m.run("GetHotpCodePin", payload)
	if err != nil {
		return "", err
	}
	return newReader(resp).stringAt(0, 11), nil
}

// GetTotpCode returns the TOTP code for a slot at the given Unix time.
func (m *Manager) GetTotpCode(slot int, unixTime uint64) (string, error) {
	if err := validateTotpSlot(slot); err != nil {
		return "", err
	}
	var b builder
	b.putByte(0, byte(slot))
	b.putUint64(1, unixTime)
	resp, err := m.run("GetTotpCode", b.bytes()[:9])
	if err != nil {
		return "", err
	}
	return newReader(resp).stringAt(0, 11), nil
}

// GetTotpCodePin is GetTotpCode confirmed by the active user temporary
// password.
func (m *Manager) GetTotpCodePin(slot int, unixTime uint64) (string, error) {
	if err := validateTotpSlot(slot); err != nil {
		return "", err
	}
	var b builder
	b.putByte(0, byte(slot))
	b.putUint64(1, unixTime)
	payload, err := authenticatedPayload(m.Session(), PrivilegeUser, b.bytes()[:9])
	if err != nil {
		return "", err
	}
	resp, err := m.run("GetTotpCodePin", payload)
	if err != nil {
		return "", err
	}
	return newReader(resp).stringAt(0, 11), nil
}

// --- Configuration --------------------------------------------------------

// WriteGeneralConfig replaces the device-wide configuration tuple.
func (m *Manager) WriteGeneralConfig(cfg GeneralConfig) error {
	var b builder
	b.putByte(0, cfg.Numlock)
	b.putByte(1, cfg.Capslock)
	b.putByte(2, cfg.Scrolllock)
	b.putBool(3, cfg.EnableUserPassword)
	b.putBool(4, cfg.DeleteUserPassword)
	payload, err := authenticatedPayload(m.Session(), PrivilegeAdmin, b.bytes()[:5])
	if err != nil {
		return err
	}
	_, err = m.run("WriteGeneralConfig", payload)
	return err
}

// ReadGeneralConfig returns the current device-wide configuration tuple.
func (m *Manager) ReadGeneralConfig() (GeneralConfig, error) {
	resp, err := m.run("ReadGeneralConfig", nil)
	if err != nil {
		return GeneralConfig{}, err
	}
	r := newReader(resp)
	return GeneralConfig{
		Numlock:            r.byteAt(0),
		Capslock:           r.byteAt(1),
		Scrolllock:         r.byteAt(2),
		EnableUserPassword: r.boolAt(3),
		DeleteUserPassword: r.boolAt(4),
	}, nil
}

// ChangeAdminPin replaces the admin PIN, authenticated by the current one.
func (m *Manager) ChangeAdminPin(oldPin, newPin string) error {
	var b builder
	if err := b.putString(0, PinWidth, oldPin); err != nil {
		return err
	}
	if err := b.putString(PinWidth, PinWidth, newPin); err != nil {
		return err
	}
	_, err := m.run("ChangeAdminPin", b.bytes()[:2*PinWidth])
	return err
}

// ChangeUserPin replaces the user PIN, authenticated by the current one.
func (m *Manager) ChangeUserPin(oldPin, newPin string) error {
	var b builder
	if err := b.putString(0, PinWidth, oldPin); err != nil {
		return err
	}
	if err := b.putString(PinWidth, PinWidth, newPin); err != nil {
		return err
	}
	_, err := m.run("ChangeUserPin", b.bytes()[:2*PinWidth])
	return err
}

// UnlockUserPin resets a locked-out user PIN using the admin PIN.
func (m *Manager) UnlockUserPin(adminPin, newUserPin string) error {
	var b builder
	if err := b.putString(0, PinWidth, adminPin); err != nil {
		return err
	}
	if err := b.putString(PinWidth, PinWidth, newUserPin); err != nil {
		return err
	}
	_, err := m.run("UnlockUserPin", b.bytes()[:2*PinWidth])
	return err
}

// --- Password safe ---------------------------------------------------------

// EnablePasswordSafe unlocks password-safe access for the session using
// the user PIN.
func (m *Manager) EnablePasswordSafe(userPin string) error {
	var b builder
	if err := b.putString(0, PinWidth, userPin); err != nil {
		return err
	}
	_, err := m.run("EnablePasswordSafe", b.bytes()[:PinWidth])
	return err
}

// GetPwsSlotStatus reports whether a password-safe slot is programmed.
func (m *Manager) GetPwsSlotStatus(slot int) (bool, error) {
	if err := validatePwsSlot(slot); err != nil {
		return false, err
	}
	var b builder
	b.putByte(0, byte(slot))
	resp, err := m.run("GetPwsSlotStatus", b.bytes()[:1])
	if err != nil {
		return false, err
	}
	return newReader(resp).boolAt(0), nil
}

// GetPwsSlotName returns a password-safe slot's name.
func (m *Manager) GetPwsSlotName(slot int) (string, error) {
	if err := validatePwsSlot(slot); err != nil {
		return "", err
	}
	var b builder
	b.putByte(0, byte(slot))
	resp, err := m.run("GetPwsSlotName", b.bytes()[:1])
	if err != nil {
		return "", err
	}
	return newReader(resp).stringAt(0, PwsNameWidth), nil
}

// GetPwsSlotLogin returns a password-safe slot's login.
func (m *Manager) GetPwsSlotLogin(slot int) (string, error) {
	if err := validatePwsSlot(slot); err != nil {
		return "", err
	}
	var b builder
	b.putByte(0, byte(slot))
	resp, err := m.run("GetPwsSlotLogin", b.bytes()[:1])
	if err != nil {
		return "", err
	}
	return newReader(resp).stringAt(0, PwsLoginWidth), nil
}

// GetPwsSlotPassword returns a password-safe slot's password.
func (m *Manager) GetPwsSlotPassword(slot int) (string, error) {
	if err := validatePwsSlot(slot); err != nil {
		return "", err
	}
	var b builder
	b.putByte(0, byte(slot))
	resp, err := m.run("GetPwsSlotPassword", b.bytes()[:1])
	if err != nil {
		return "", err
	}
	return newReader(resp).stringAt(0, PwsPasswordWidth), nil
}

// WritePwsSlot programs a password-safe slot. Name+login+password alone
// exceed one report field, so this runs through RunLarge.
func (m *Manager) WritePwsSlot(e PasswordSafeEntry) error {
	if err := validatePwsSlot(int(e.Slot)); err != nil {
		return err
	}
	var b builder
	b.putByte(0, e.Slot)
	if err := b.putString(1, PwsNameWidth, e.Name); err != nil {
		return err
	}
	if err := b.putString(1+PwsNameWidth, PwsLoginWidth, e.Login); err != nil {
		return err
	}
	off := 1 + PwsNameWidth + PwsLoginWidth
	if err := b.putString(off, PwsPasswordWidth, e.Password); err != nil {
		return err
	}
	_, err := m.run("WritePwsSlot", b.buf[:off+PwsPasswordWidth])
	return err
}

// ErasePwsSlot clears a password-safe slot.
func (m *Manager) ErasePwsSlot(slot int) error {
	if err := validatePwsSlot(slot); err != nil {
		return err
	}
	var b builder
	b.putByte(0, byte(slot))
	_, err := m.run("ErasePwsSlot", b.bytes()[:1])
	return err
}

// --- Device-wide administration --------------------------------------------

// FactoryReset wipes all slots and configuration back to factory state.
func (m *Manager) FactoryReset() error {
	payload, err := authenticatedPayload(m.Session(), PrivilegeAdmin, nil)
	if err != nil {
		return err
	}
	_, err = m.run("FactoryReset", payload)
	return err
}

// BuildAesKey regenerates the device's internal AES encryption key,
// invalidating all existing password-safe contents.
func (m *Manager) BuildAesKey() error {
	payload, err := authenticatedPayload(m.Session(), PrivilegeAdmin, nil)
	if err != nil {
		return err
	}
	_, err = m.run("BuildAesKey", payload)
	return err
}

// IsAesSupported reports whether the connected device's firmware
// supports AES-backed password-safe storage.
func (m *Manager) IsAesSupported() (bool, error) {
	resp, err := m.run("IsAesSupported", nil)
	if err != nil {
		return false, err
	}
	return newReader(resp).boolAt(0), nil
}

// SetTime sets the device's internal clock, used for TOTP.
func (m *Manager) SetTime(unixTime uint64) error {
	var b builder
	b.putUint64(0, unixTime)
	payload, err := authenticatedPayload(m.Session(), PrivilegeAdmin, b.bytes()[:8])
	if err != nil {
		return err
	}
	_, err = m.run("SetTime", payload)
	return err
}

// GetTime returns the device's internal clock.
func (m *Manager) GetTime() (uint64, error) {
	resp, err := m.run("GetTime", nil)
	if err != nil {
		return 0, err
	}
	return newReader(resp).uint64At(0), nil
}

// --- Storage-only: encrypted volumes ---------------------------------------

// EnableEncryptedPartition mounts the encrypted volume using password.
func (m *Manager) EnableEncryptedPartition(password string) error {
	var b builder
	if err := b.putString(0, PwsPasswordWidth, password); err != nil {
		return err
	}
	_, err := m.run("EnableEncryptedPartition", b.bytes()[:PwsPasswordWidth])
	return err
}

// DisableEncryptedPartition unmounts the encrypted volume.
func (m *Manager) DisableEncryptedPartition() error {
	_, err := m.run("DisableEncryptedPartition", nil)
	return err
}

// EnableHiddenEncryptedPartition mounts a hidden volume using password.
func (m *Manager) EnableHiddenEncryptedPartition(password string) error {
	var b builder
	if err := b.putString(0, PwsPasswordWidth, password); err != nil {
		return err
	}
	_, err := m.run("EnableHiddenEncryptedPartition", b.bytes()[:PwsPasswordWidth])
	return err
}

// DisableHiddenEncryptedPartition unmounts the hidden volume.
func (m *Manager) DisableHiddenEncryptedPartition() error {
	_, err := m.run("DisableHiddenEncryptedPartition", nil)
	return err
}

// EnableFirmwareUpdate switches the Storage stick into firmware update
// mode using its dedicated update password.
func (m *Manager) EnableFirmwareUpdate(updatePassword string) error {
	var b builder
	if err := b.putString(0, UpdatePasswordWidth, updatePassword); err != nil {
		return err
	}
	_, err := m.run("EnableFirmwareUpdate", b.bytes()[:UpdatePasswordWidth])
	return err
}

// ChangeUpdatePin replaces the firmware-update password. old+new exceed
// one report field, so this runs through RunLarge.
func (m *Manager) ChangeUpdatePin(oldPassword, newPassword string) error {
	var b builder
	if err := b.putString(0, UpdatePasswordWidth, oldPassword); err != nil {
		return err
	}
	if err := b.putString(UpdatePasswordWidth, UpdatePasswordWidth, newPassword); err != nil {
		return err
	}
	_, err := m.run("ChangeUpdatePin", b.bytes()[:2*UpdatePasswordWidth])
	return err
}

// ExportFirmware triggers a firmware export to the unencrypted volume.
func (m *Manager) ExportFirmware(updatePassword string) error {
	var b builder
	if err := b.putString(0, UpdatePasswordWidth, updatePassword); err != nil {
		return err
	}
	_, err := m.run("ExportFirmware", b.bytes()[:UpdatePasswordWidth])
	return err
}

// FillSDCardRandom overwrites the Storage stick's SD card with random
// data, the slow irreversible wipe operation used before provisioning.
func (m *Manager) FillSDCardRandom(updatePassword string) error {
	var b builder
	if err := b.putString(0, UpdatePasswordWidth, updatePassword); err != nil {
		return err
	}
	_, err := m.run("FillSDCardRandom", b.bytes()[:UpdatePasswordWidth])
	return err
}

// VolumeMode selects read-only or read-write access for
// SetUncryptedVolumeRW.
type VolumeMode uint8

const (
	VolumeReadOnly  VolumeMode = 0
	VolumeReadWrite VolumeMode = 1
)

// SetUncryptedVolumeRW switches the unencrypted volume's access mode.
// Both directions share one firmware command id (see DESIGN.md, Open
// Question decisions); mode selects which.
func (m *Manager) SetUncryptedVolumeRW(mode VolumeMode, password string) error {
	var b builder
	b.putByte(0, byte(mode))
	if err := b.putString(1, PwsPasswordWidth, password); err != nil {
		return err
	}
	_, err := m.run("SetUncryptedVolumeRW", b.bytes()[:1+PwsPasswordWidth])
	return err
}

// SetupHiddenVolume provisions a hidden volume from a caller-supplied
// opaque payload. The firmware's exact field layout for this command is
// undocumented (see DESIGN.md, Open Question decisions); rather than
// guess a struct, this accepts the raw bytes the caller has already
// prepared against a known-good reference.
func (m *Manager) SetupHiddenVolume(payload []byte) error {
	if len(payload) > reqPayloadSize {
		return newLocalError("SetupHiddenVolume", fmt.Errorf("payload exceeds maximum of %d bytes", reqPayloadSize))
	}
	_, err := m.run("SetupHiddenVolume", payload)
	return err
}

// LockFirmware permanently disables further firmware updates.
func (m *Manager) LockFirmware() error {
	_, err := m.run("LockFirmware", nil)
	return err
}
