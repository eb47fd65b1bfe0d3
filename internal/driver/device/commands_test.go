package device

import (
	"testing"
	"time"
)

// stubTransport answers every poll with Ok, echoing the last written
// request's CRC, and returns tempReply as the payload of every response
// — enough to hand authenticate commands a fixed temporary password and
// exercise the command layer's marshaling without a full device session
// simulation.
type stubTransport struct {
	lastWrite   Report
	tempReply   []byte // payload returned by every response, nil = zeros
}

func (s *stubTransport) Write(r Report) error {
	s.lastWrite = r
	return nil
}

func (s *stubTransport) Read(_ time.Duration) (Report, error) {
	crc := RequestCRC(s.lastWrite)
	return BuildResponseReport(crc, StatusOk, s.tempReply), nil
}

func (s *stubTransport) Close() error { return nil }

func TestManagerFirstAuthenticateBindsTempPassword(t *testing.T) {
	tp := make([]byte, TempPasswordWidth)
	for i := range tp {
		tp[i] = byte(i + 1)
	}
	transport := &stubTransport{tempReply: tp}

	m := NewManager()
	if err := m.Connect(ModelPro, transport); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := m.FirstAuthenticate("123456"); err != nil {
		t.Fatalf("FirstAuthenticate: %v", err)
	}

	got, ok := m.Session().tempFor(PrivilegeAdmin)
	if !ok {
		t.Fatal("expected admin temp password to be bound")
	}
	for i, b := range tp {
		if got[i] != b {
			t.Fatalf("temp password byte %d = %x, want %x", i, got[i], b)
		}
	}
}

func TestManagerRejectsCommandWithoutConnection(t *testing.T) {
	m := NewManager()
	_, err := m.GetStatus()
	if err == nil {
		t.Fatal("expected error when no device is connected")
	}
}

func TestManagerRejectsStorageOnlyCommandOnPro(t *testing.T) {
	transport := &stubTransport{}
	m := NewManager()
	if err := m.Connect(ModelPro, transport); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	err := m.DisableEncryptedPartition()
	if err == nil {
		t.Fatal("expected ErrUnsupportedOnPro for a Storage-only command")
	}
}

func TestManagerConnectTwiceFails(t *testing.T) {
	m := NewManager()
	if err := m.Connect(ModelPro, &stubTransport{}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Connect(ModelPro, &stubTransport{}); err == nil {
		t.Fatal("expected ErrAlreadyConnected on second Connect")
	}
}

func TestManagerWriteAndEraseHotpSlot(t *testing.T) {
	transport := &stubTransport{tempReply: make([]byte, TempPasswordWidth)}
	m := NewManager()
	if err := m.Connect(ModelStorage, transport); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.FirstAuthenticate("123456"); err != nil {
		t.Fatalf("FirstAuthenticate: %v", err)
	}

	slot := HotpSlot{Slot: 0, Name: "github", Counter: 1}
	if err := m.WriteHotpSlot(slot); err != nil {
		t.Fatalf("WriteHotpSlot: %v", err)
	}
	if err := m.EraseHotpSlot(0); err != nil {
		t.Fatalf("EraseHotpSlot: %v", err)
	}
}

func TestManagerReadSlot(t *testing.T) {
	transport := &stubTransport{}
	m := NewManager()
	if err := m.Connect(ModelPro, transport); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if _, err := m.ReadSlot(slotKindHotp, HotpSlotCount); err == nil {
		t.Fatal("expected out-of-range error for hotp slot, got none")
	}
	if _, err := m.ReadSlot(slotKindTotp, -1); err == nil {
		t.Fatal("expected out-of-range error for totp slot, got none")
	}
	if _, err := m.ReadSlot(2, 0); err == nil {
		t.Fatal("expected error for unknown slot kind, got none")
	}
	if _, err := m.ReadSlot(slotKindHotp, 0); err != nil {
		t.Fatalf("ReadSlot: %v", err)
	}
}

func TestValidateSlotBounds(t *testing.T) {
	if err := validateHotpSlot(HotpSlotCount); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if err := validateTotpSlot(-1); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if err := validatePwsSlot(PwsSlotCount); err == nil {
		t.Fatal("expected out-of-range error")
	}
}
