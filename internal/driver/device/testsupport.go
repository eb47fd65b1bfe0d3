// internal/driver/device/testsupport.go
// Exported helpers for building well-formed response reports from
// outside the package (transporttest.FakeTransport and other external
// test doubles) without duplicating the CRC/offset layout report.go owns.
package device

import "encoding/binary"

// BuildResponseReport assembles a response report with a correct
// trailing CRC, for use by test doubles that need to hand the engine a
// plausible device reply.
func BuildResponseReport(crcEcho uint32, status Status, payload []byte) Report {
	var r Report
	binary.LittleEndian.PutUint32(r[respOffsetCRCEcho:], crcEcho)
	r[respOffsetStatus] = byte(status)
	copy(r[respOffsetPayload:respOffsetPayload+respPayloadSize], payload)
	crc := crc32Checksum(r[:respOffsetCRC])
	binary.LittleEndian.PutUint32(r[respOffsetCRC:], crc)
	return r
}

// RequestCRC returns the trailing CRC field of a request report, for
// tests asserting the engine's echo-matching behavior.
func RequestCRC(r Report) uint32 {
	return binary.LittleEndian.Uint32(r[reqOffsetCRC:])
}
