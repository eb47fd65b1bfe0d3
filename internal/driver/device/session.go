// internal/driver/device/session.go
// Session state: the temporary passwords FirstAuthenticate/
// UserAuthenticate establish, and the last status the device reported.
// Per spec.md §4.6 and §5, a session's temp passwords are consumed on a
// TransportError and on a User_Not_Authenticated device status (which
// drops the one the failing command required) — anything suggesting the
// device no longer agrees they are valid. Grounded on the teacher's Device.mu sync.RWMutex guarding
// shared connection state (controller.go), generalized from one mutable
// struct field to the two optional temp passwords below.
package device

import "sync"

// TemporaryPassword is the 25-byte credential FirstAuthenticate or
// UserAuthenticate establishes, bound to the privilege level that
// created it.
type TemporaryPassword [TempPasswordWidth]byte

// Session tracks the authentication state of one connected device.
type Session struct {
	mu sync.RWMutex

	adminTemp    *TemporaryPassword
	userTemp     *TemporaryPassword
	lastStatus   Status
}

// NewSession returns an unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// setTemp records a freshly established temporary password for the
// given privilege. PrivilegeNone is a programming error.
func (s *Session) setTemp(p Privilege, tp TemporaryPassword) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch p {
	case PrivilegeAdmin:
		s.adminTemp = &tp
	case PrivilegeUser:
		s.userTemp = &tp
	}
}

// tempFor returns the temporary password bound to privilege p, or false
// if the session has not authenticated at that level.
func (s *Session) tempFor(p Privilege) (TemporaryPassword, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch p {
	case PrivilegeAdmin:
		if s.adminTemp == nil {
			return TemporaryPassword{}, false
		}
		return *s.adminTemp, true
	case PrivilegeUser:
		if s.userTemp == nil {
			return TemporaryPassword{}, false
		}
		return *s.userTemp, true
	default:
		return TemporaryPassword{}, true
	}
}

// dropAdmin invalidates the admin temporary password, e.g. after a
// User_Not_Authenticated status on an admin-privileged command.
func (s *Session) dropAdmin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminTemp = nil
}

// dropUser invalidates the user temporary password, e.g. after a
// User_Not_Authenticated status or a transport failure.
func (s *Session) dropUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userTemp = nil
}

// invalidate drops both temporary passwords. Called on any TransportError,
// since the device's view of the session can no longer be trusted.
func (s *Session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminTemp = nil
	s.userTemp = nil
}

func (s *Session) setLastStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastStatus = st
}

// LastStatus returns the most recently observed status, for callers
// inspecting session health without running a new command.
func (s *Session) LastStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStatus
}

// Authenticated reports whether the session holds a temp password for
// at least one privilege level.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminTemp != nil || s.userTemp != nil
}
