package device

import "testing"

func TestCrc32ChecksumDeterministic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	a := crc32Checksum(data)
	b := crc32Checksum(data)
	if a != b {
		t.Fatalf("crc32Checksum not deterministic: %x != %x", a, b)
	}
}

func TestCrc32ChecksumDetectsCorruption(t *testing.T) {
	original := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}
	corrupted := append([]byte(nil), original...)
	corrupted[3] ^= 0xFF

	if crc32Checksum(original) == crc32Checksum(corrupted) {
		t.Fatal("expected checksum to change when input is corrupted")
	}
}

func TestCrc32ChecksumEmptyInput(t *testing.T) {
	// Must not panic on a length that isn't a multiple of 4.
	_ = crc32Checksum(nil)
	_ = crc32Checksum([]byte{0x01, 0x02})
}
