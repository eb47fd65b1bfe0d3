package device

import "testing"

func TestRequestReportRoundTrip(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC}
	req := requestReport(cmdGetStatus, payload)

	if req[reqOffsetCmdID] != cmdGetStatus {
		t.Fatalf("cmd id = %x, want %x", req[reqOffsetCmdID], cmdGetStatus)
	}
	if !verifyCRC(req) {
		t.Fatal("freshly built request failed its own CRC check")
	}
}

func TestVerifyCRCDetectsTamperedReport(t *testing.T) {
	req := requestReport(cmdGetStatus, nil)
	req[reqOffsetPayload] ^= 0xFF
	if verifyCRC(req) {
		t.Fatal("expected CRC mismatch after tampering with payload byte")
	}
}

func TestResponseAccessors(t *testing.T) {
	payload := make([]byte, respPayloadSize)
	payload[0] = 0x42
	resp := BuildResponseReport(0xDEADBEEF, StatusOk, payload)

	if responseStatus(resp) != StatusOk {
		t.Fatalf("status = %v, want Ok", responseStatus(resp))
	}
	if responseCRCEcho(resp) != 0xDEADBEEF {
		t.Fatalf("echo = %x, want DEADBEEF", responseCRCEcho(resp))
	}
	if got := responsePayload(resp); got[0] != 0x42 {
		t.Fatalf("payload[0] = %x, want 42", got[0])
	}
	if !verifyCRC(resp) {
		t.Fatal("BuildResponseReport produced an invalid CRC")
	}
}
