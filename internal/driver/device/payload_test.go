package device

import "testing"

func TestBuilderPutStringRoundTrip(t *testing.T) {
	var b builder
	if err := b.putString(0, SlotNameWidth, "my-slot"); err != nil {
		t.Fatalf("putString: %v", err)
	}
	r := newReader(b.bytes())
	if got := r.stringAt(0, SlotNameWidth); got != "my-slot" {
		t.Fatalf("stringAt = %q, want %q", got, "my-slot")
	}
}

func TestBuilderPutStringTooLong(t *testing.T) {
	var b builder
	err := b.putString(0, 4, "toolong")
	if err == nil {
		t.Fatal("expected error for oversize string")
	}
}

func TestReaderStringAtTruncatesAtNUL(t *testing.T) {
	buf := make([]byte, 10)
	copy(buf, "abc")
	r := newReader(buf)
	if got := r.stringAt(0, 10); got != "abc" {
		t.Fatalf("stringAt = %q, want %q", got, "abc")
	}
}

func TestBuilderIntegerRoundTrip(t *testing.T) {
	var b builder
	b.putUint16(0, 0x1234)
	b.putUint32(2, 0xDEADBEEF)
	b.putUint64(6, 0x1122334455667788)

	r := newReader(b.bytes())
	if got := r.uint16At(0); got != 0x1234 {
		t.Fatalf("uint16At = %x, want 1234", got)
	}
	if got := r.uint32At(2); got != 0xDEADBEEF {
		t.Fatalf("uint32At = %x, want DEADBEEF", got)
	}
	if got := r.uint64At(6); got != 0x1122334455667788 {
		t.Fatalf("uint64At = %x, want 1122334455667788", got)
	}
}

func TestBuilderPutBool(t *testing.T) {
	var b builder
	b.putBool(0, true)
	b.putBool(1, false)
	r := newReader(b.bytes())
	if !r.boolAt(0) {
		t.Fatal("boolAt(0) = false, want true")
	}
	if r.boolAt(1) {
		t.Fatal("boolAt(1) = true, want false")
	}
}
