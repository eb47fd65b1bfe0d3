// internal/driver/device/payload.go
// Hand-serialization helpers for command payloads: fixed byte offsets,
// little-endian integers, NUL-padded fixed-width strings. Per spec.md
// §9, payload layouts are specified by explicit byte offset rather than
// relying on language struct layout.
package device

import "encoding/binary"

// builder packs a request's 59-byte payload field by field.
type builder struct {
	buf [reqPayloadSize]byte
}

func (b *builder) putByte(off int, v byte) { b.buf[off] = v }

func (b *builder) putBool(off int, v bool) {
	if v {
		b.buf[off] = 1
	}
}

// putFixed copies v into buf[off:off+width], zero-padding the remainder.
// It returns ErrStringTooLong if v does not fit.
func (b *builder) putFixed(off, width int, v []byte) error {
	if len(v) > width {
		return newLocalError("putFixed", ErrStringTooLong)
	}
	copy(b.buf[off:off+width], v)
	return nil
}

func (b *builder) putString(off, width int, s string) error {
	return b.putFixed(off, width, []byte(s))
}

func (b *builder) putUint16(off int, v uint16) { binary.LittleEndian.PutUint16(b.buf[off:], v) }
func (b *builder) putUint32(off int, v uint32) { binary.LittleEndian.PutUint32(b.buf[off:], v) }
func (b *builder) putUint64(off int, v uint64) { binary.LittleEndian.PutUint64(b.buf[off:], v) }

func (b *builder) bytes() []byte { return b.buf[:] }

// reader unpacks a response's 53-byte payload field by field.
type reader struct {
	buf []byte
}

func newReader(payload []byte) reader { return reader{buf: payload} }

func (r reader) byteAt(off int) byte { return r.buf[off] }

func (r reader) boolAt(off int) bool { return r.buf[off] != 0 }

func (r reader) bytesAt(off, width int) []byte {
	out := make([]byte, width)
	copy(out, r.buf[off:off+width])
	return out
}

// stringAt reads a fixed-width field and truncates at the first NUL, per
// spec.md §8's round-trip requirement ("truncated at first NUL").
func (r reader) stringAt(off, width int) string {
	field := r.buf[off : off+width]
	n := 0
	for n < width && field[n] != 0 {
		n++
	}
	return string(field[:n])
}

func (r reader) uint16At(off int) uint16 { return binary.LittleEndian.Uint16(r.buf[off:]) }
func (r reader) uint32At(off int) uint32 { return binary.LittleEndian.Uint32(r.buf[off:]) }
func (r reader) uint64At(off int) uint64 { return binary.LittleEndian.Uint64(r.buf[off:]) }
