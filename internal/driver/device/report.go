// internal/driver/device/report.go
// Fixed 64-byte HID report framing, per spec.md §6:
//
//	request:  [cmd_id:1][payload:59][crc32_le:4]
//	response: [reserved:1][crc_echo:4][status:1][payload:53][crc32_le:4]
package device

import "encoding/binary"

const ReportSize = 64

// Request-report byte offsets.
const (
	reqOffsetCmdID   = 0
	reqOffsetPayload = 1
	reqPayloadSize   = 59
	reqOffsetCRC     = 60
)

// Response-report byte offsets.
const (
	respOffsetReserved  = 0
	respOffsetCRCEcho   = 1
	respOffsetStatus    = 5
	respOffsetPayload   = 6
	respPayloadSize     = 53
	respOffsetCRC       = 60
)

// Report is a raw 64-byte HID report, sent or received as-is over the
// transport.
type Report [ReportSize]byte

// requestReport lays a command id and a pre-serialized payload into a
// fresh Report, computes the CRC over bytes [0,60), and stores it
// little-endian at [60,64).
func requestReport(cmdID byte, payload []byte) Report {
	var r Report
	r[reqOffsetCmdID] = cmdID
	copy(r[reqOffsetPayload:reqOffsetPayload+reqPayloadSize], payload)
	crc := crc32Checksum(r[:reqOffsetCRC])
	binary.LittleEndian.PutUint32(r[reqOffsetCRC:], crc)
	return r
}

// verifyCRC reports whether the trailing little-endian CRC-32 in r
// matches the checksum computed over bytes [0,60).
func verifyCRC(r Report) bool {
	got := binary.LittleEndian.Uint32(r[reqOffsetCRC:])
	want := crc32Checksum(r[:reqOffsetCRC])
	return got == want
}

// responseStatus extracts the status byte from a response report.
func responseStatus(r Report) Status {
	return Status(r[respOffsetStatus])
}

// responsePayload returns the 53-byte payload region of a response report.
func responsePayload(r Report) []byte {
	return r[respOffsetPayload : respOffsetPayload+respPayloadSize]
}

// responseCRCEcho returns the 4-byte echo of the most recently issued
// request's CRC, letting the host confirm the status belongs to the
// transaction it just ran.
func responseCRCEcho(r Report) uint32 {
	return binary.LittleEndian.Uint32(r[respOffsetCRCEcho:])
}
