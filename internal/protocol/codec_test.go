package protocol

import "testing"

func TestCodecFixedWidthRoundTrip(t *testing.T) {
	e := NewEncoder().
		Bool(true).
		U8(0xAB).
		I16(-1234).
		U32(0xDEADBEEF).
		I64(-1).
		F32(3.14).
		F64(2.71828)
	buf, err := e.Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	d := NewDecoder(buf)
	if got := d.Bool(); got != true {
		t.Fatalf("Bool: got %v", got)
	}
	if got := d.U8(); got != 0xAB {
		t.Fatalf("U8: got %#x", got)
	}
	if got := d.I16(); got != -1234 {
		t.Fatalf("I16: got %d", got)
	}
	if got := d.U32(); got != 0xDEADBEEF {
		t.Fatalf("U32: got %#x", got)
	}
	if got := d.I64(); got != -1 {
		t.Fatalf("I64: got %d", got)
	}
	if got := d.F32(); got != 3.14 {
		t.Fatalf("F32: got %v", got)
	}
	if got := d.F64(); got != 2.71828 {
		t.Fatalf("F64: got %v", got)
	}
	if err := d.Err(); err != nil {
		t.Fatalf("decode err: %v", err)
	}
}

func TestCodecStickyErrorOnShortBuffer(t *testing.T) {
	d := NewDecoder([]byte{0x01})
	_ = d.U8()
	_ = d.U32() // not enough bytes left
	if d.Err() == nil {
		t.Fatalf("expected sticky error")
	}
	// Further reads stay zero-valued rather than panicking.
	if got := d.U64(); got != 0 {
		t.Fatalf("expected 0 after sticky error, got %d", got)
	}
}

func TestCodecStringRoundTrip(t *testing.T) {
	e := NewEncoder().String("héllo wörld")
	buf, err := e.Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	d := NewDecoder(buf)
	if got := d.String(); got != "héllo wörld" {
		t.Fatalf("got %q", got)
	}
}
