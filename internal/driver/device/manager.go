// internal/driver/device/manager.go
// Manager is the top-level handle an application holds: it owns at most
// one connected device at a time, serializes every transaction against
// it, and tracks that device's session. Grounded on the teacher's
// Device (controller.go) — a single struct owning one physical
// connection behind a sync.RWMutex — generalized from the teacher's
// many alternate transports (IOCTL/USB/CGMiner/kernel) down to the one
// HidTransport this protocol needs.
package device

import (
	"fmt"
	"sync"
	"time"
)

// DefaultPollTimeout bounds a single transport.Read call inside the
// poll loop.
const DefaultPollTimeout = 500 * time.Millisecond

// Manager owns the single active device connection, if any.
type Manager struct {
	mu sync.Mutex

	model     Model
	transport HidTransport
	engine    *TransactionEngine
	session   *Session
}

// NewManager returns a Manager with no active device.
func NewManager() *Manager {
	return &Manager{}
}

// Connect attaches transport as the device identified by model and
// starts a fresh, unauthenticated session. It fails if a device is
// already connected.
func (m *Manager) Connect(model Model, transport HidTransport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transport != nil {
		return newLocalError("Connect", ErrAlreadyConnected)
	}

	m.model = model
	m.transport = transport
	m.engine = NewTransactionEngine(transport, DefaultPollTimeout)
	m.session = NewSession()
	return nil
}

// ConnectAuto opens the first Pro or Storage device it finds, trying
// Storage first since its command set is the superset.
func ConnectAuto(m *Manager) error {
	for _, model := range []Model{ModelStorage, ModelPro} {
		id := usbIdentities[model]
		t, err := OpenGousbTransport(id.vendor, id.product)
		if err != nil {
			continue
		}
		return m.Connect(model, t)
	}
	return newTransportError("ConnectAuto", fmt.Errorf("no Nitrokey device found"))
}

// Disconnect closes the transport and clears all connection state. It is
// a no-op if nothing is connected.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transport == nil {
		return nil
	}
	err := m.transport.Close()
	m.model = ModelUnknown
	m.transport = nil
	m.engine = nil
	m.session = nil
	if err != nil {
		return newTransportError("Disconnect", err)
	}
	return nil
}

// Connected reports whether a device is currently attached.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transport != nil
}

// Model returns the model of the currently connected device.
func (m *Manager) Model() Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// Session returns the session for the currently connected device, or
// nil if nothing is connected.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// run serializes one command against the active device: it holds the
// manager lock for the whole transaction, mirroring the teacher's
// Device.mu guarding every hardware access in controller.go. Payloads
// longer than one report field are split by RunLarge.
func (m *Manager) run(name string, payload []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transport == nil {
		return nil, newLocalError(name, ErrNotConnected)
	}

	desc := descriptor(name)
	if !m.model.supportsCommand(desc) {
		return nil, newLocalError(name, ErrUnsupportedOnPro)
	}

	return m.engine.RunLarge(desc, payload, m.session)
}
