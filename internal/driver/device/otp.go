// internal/driver/device/otp.go
// PinProtectedOtp bundles the "authenticate if needed, read code" sequence
// library users reach for most often: callers holding a user PIN rarely
// want to manage the underlying temporary password lifecycle themselves.
// The user temporary password stays in the session for later reads.
package device

// PinProtectedOtp reads one slot's current OTP code, authenticating with
// userPin first if the session does not already hold a user temporary
// password. unixTime is only consulted for TOTP slots.
type PinProtectedOtp struct {
	m *Manager
}

// NewPinProtectedOtp wraps m for PIN-gated OTP reads.
func NewPinProtectedOtp(m *Manager) *PinProtectedOtp {
	return &PinProtectedOtp{m: m}
}

// Hotp returns slot's current HOTP code, authenticating with userPin
// first when the session has no user temporary password yet.
func (p *PinProtectedOtp) Hotp(slot int, userPin string) (string, error) {
	if _, ok := p.m.Session().tempFor(PrivilegeUser); !ok {
		if err := p.m.UserAuthenticate(userPin); err != nil {
			return "", err
		}
	}
	return p.m.GetHotpCodePin(slot)
}

// Totp returns slot's current TOTP code for unixTime, authenticating
// with userPin first when needed.
func (p *PinProtectedOtp) Totp(slot int, userPin string, unixTime uint64) (string, error) {
	if _, ok := p.m.Session().tempFor(PrivilegeUser); !ok {
		if err := p.m.UserAuthenticate(userPin); err != nil {
			return "", err
		}
	}
	return p.m.GetTotpCodePin(slot, unixTime)
}
