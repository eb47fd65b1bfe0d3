package device

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

// scriptedTransport answers Write/Read with a small programmed script,
// letting tests drive the poll loop through Busy retries, stale echoes,
// and bad CRCs without a real device.
type scriptedTransport struct {
	lastWrite Report
	writes    int
	responses []func(lastWrite Report) Report
	step      int
}

func (s *scriptedTransport) Write(r Report) error {
	s.lastWrite = r
	s.writes++
	return nil
}

func (s *scriptedTransport) Read(_ time.Duration) (Report, error) {
	if s.step >= len(s.responses) {
		return Report{}, errors.New("scriptedTransport: out of responses")
	}
	resp := s.responses[s.step](s.lastWrite)
	s.step++
	return resp, nil
}

func (s *scriptedTransport) Close() error { return nil }

func okResponse(req Report) Report {
	crc := binary.LittleEndian.Uint32(req[reqOffsetCRC:])
	return BuildResponseReport(crc, StatusOk, nil)
}

func busyResponse(req Report) Report {
	crc := binary.LittleEndian.Uint32(req[reqOffsetCRC:])
	return BuildResponseReport(crc, StatusBusy, nil)
}

func TestEngineRunSucceedsImmediately(t *testing.T) {
	transport := &scriptedTransport{responses: []func(Report) Report{okResponse}}
	engine := NewTransactionEngine(transport, time.Second)
	session := NewSession()

	_, err := engine.Run(descriptor("GetStatus"), nil, session)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if session.LastStatus() != StatusOk {
		t.Fatalf("LastStatus = %v, want Ok", session.LastStatus())
	}
}

func TestEngineRunRetriesOnBusy(t *testing.T) {
	transport := &scriptedTransport{responses: []func(Report) Report{busyResponse, busyResponse, okResponse}}
	engine := NewTransactionEngine(transport, time.Second)
	session := NewSession()

	_, err := engine.Run(descriptor("GetStatus"), nil, session)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if transport.step != 3 {
		t.Fatalf("expected 3 poll reads, got %d", transport.step)
	}
}

func TestEngineRunBadCRCDoesNotUpdateLastStatus(t *testing.T) {
	badCRC := func(req Report) Report {
		resp := okResponse(req)
		resp[respOffsetPayload] ^= 0xFF // corrupt payload without fixing trailing CRC
		return resp
	}
	transport := &scriptedTransport{responses: []func(Report) Report{badCRC}}
	engine := NewTransactionEngine(transport, time.Second)
	session := NewSession()
	session.setLastStatus(StatusBusy)

	_, err := engine.Run(descriptor("GetStatus"), nil, session)
	if err == nil {
		t.Fatal("expected an error for a corrupted response")
	}
	if !errors.Is(err, ErrBadCRC) {
		t.Fatalf("expected ErrBadCRC, got %v", err)
	}
	if session.LastStatus() != StatusBusy {
		t.Fatalf("LastStatus changed on bad CRC: got %v", session.LastStatus())
	}
}

func TestEngineRunRejectsStaleEcho(t *testing.T) {
	staleThenFresh := []func(Report) Report{
		func(req Report) Report { return BuildResponseReport(0xFFFFFFFF, StatusOk, nil) },
		okResponse,
	}
	transport := &scriptedTransport{responses: staleThenFresh}
	engine := NewTransactionEngine(transport, time.Second)
	session := NewSession()

	_, err := engine.Run(descriptor("GetStatus"), nil, session)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if transport.step != 2 {
		t.Fatalf("expected the stale echo to be discarded and polling to continue, got %d reads", transport.step)
	}
}

func TestEngineRunRequiresPrivilege(t *testing.T) {
	transport := &scriptedTransport{responses: []func(Report) Report{okResponse}}
	engine := NewTransactionEngine(transport, time.Second)
	session := NewSession()

	_, err := engine.Run(descriptor("WriteHotpSlot"), nil, session)
	if err == nil {
		t.Fatal("expected LocalError for missing admin temp password")
	}
	var localErr *LocalError
	if !errors.As(err, &localErr) {
		t.Fatalf("expected *LocalError, got %T", err)
	}
}

func TestEngineRunDropsUserTempOnUserNotAuthenticated(t *testing.T) {
	notAuth := func(req Report) Report {
		crc := binary.LittleEndian.Uint32(req[reqOffsetCRC:])
		return BuildResponseReport(crc, StatusUserNotAuthenticated, nil)
	}
	transport := &scriptedTransport{responses: []func(Report) Report{notAuth}}
	engine := NewTransactionEngine(transport, time.Second)
	session := NewSession()
	session.setTemp(PrivilegeUser, TemporaryPassword{})

	_, err := engine.Run(descriptor("GetHotpCodePin"), nil, session)
	if err == nil {
		t.Fatal("expected DeviceError for User_Not_Authenticated")
	}
	if _, ok := session.tempFor(PrivilegeUser); ok {
		t.Fatal("expected user temp password to be dropped")
	}
}

func TestEngineRunDropsAdminTempOnUserNotAuthenticatedForAdminCommand(t *testing.T) {
	notAuth := func(req Report) Report {
		crc := binary.LittleEndian.Uint32(req[reqOffsetCRC:])
		return BuildResponseReport(crc, StatusUserNotAuthenticated, nil)
	}
	transport := &scriptedTransport{responses: []func(Report) Report{notAuth}}
	engine := NewTransactionEngine(transport, time.Second)
	session := NewSession()
	session.setTemp(PrivilegeAdmin, TemporaryPassword{})

	_, err := engine.Run(descriptor("FactoryReset"), nil, session)
	if err == nil {
		t.Fatal("expected DeviceError for User_Not_Authenticated")
	}
	if _, ok := session.tempFor(PrivilegeAdmin); ok {
		t.Fatal("expected admin temp password to be dropped for an admin-privileged command")
	}
}
