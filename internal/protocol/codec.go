package protocol

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxStringBytes is a sanity ceiling on the encoded length of every string
// field. The name field's 16 code-point limit is not enforced here.
const maxStringBytes = 32767

// Decoder reads typed fields from an in-memory packet payload. Errors are
// sticky: once set, subsequent reads are no-ops returning zero values, so
// callers can chain several reads and check Err() once at the end.
type Decoder struct {
	r   *bytes.Reader
	err error
}

// NewDecoder wraps payload for sequential field decoding.
func NewDecoder(payload []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(payload)}
}

// Err returns the first error encountered, if any.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) readN(n int) []byte {
	if d.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf
	}
	read, err := d.r.Read(buf)
	if err != nil || read != n {
		d.fail(ErrRanOutOfBytes)
		return nil
	}
	return buf
}

// Bool decodes a single byte, nonzero as true.
func (d *Decoder) Bool() bool {
	b := d.readN(1)
	if d.err != nil {
		return false
	}
	return b[0] != 0
}

// U8 decodes an unsigned byte.
func (d *Decoder) U8() uint8 {
	b := d.readN(1)
	if d.err != nil {
		return 0
	}
	return b[0]
}

// I8 decodes a signed byte.
func (d *Decoder) I8() int8 { return int8(d.U8()) }

// U16 decodes a big-endian u16 via explicit shifts (see design notes on
// the source's wrap-dependent conversion).
func (d *Decoder) U16() uint16 {
	b := d.readN(2)
	if d.err != nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// I16 decodes a big-endian i16.
func (d *Decoder) I16() int16 { return int16(d.U16()) }

// U32 decodes a big-endian u32 using the correct full-width top-byte mask.
func (d *Decoder) U32() uint32 {
	b := d.readN(4)
	if d.err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// I32 decodes a big-endian i32.
func (d *Decoder) I32() int32 { return int32(d.U32()) }

// U64 decodes a big-endian u64.
func (d *Decoder) U64() uint64 {
	b := d.readN(8)
	if d.err != nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// I64 decodes a big-endian i64.
func (d *Decoder) I64() int64 { return int64(d.U64()) }

// F32 decodes an IEEE-754 big-endian float32 by bit reinterpretation, not
// numeric cast.
func (d *Decoder) F32() float32 { return math.Float32frombits(d.U32()) }

// F64 decodes an IEEE-754 big-endian float64 by bit reinterpretation.
func (d *Decoder) F64() float64 { return math.Float64frombits(d.U64()) }

// VarInt decodes a VarInt field.
func (d *Decoder) VarInt() int32 {
	if d.err != nil {
		return 0
	}
	v, err := ReadVarInt(d.r)
	if err != nil {
		d.fail(err)
		return 0
	}
	return v
}

// VarLong decodes a VarLong field.
func (d *Decoder) VarLong() int64 {
	if d.err != nil {
		return 0
	}
	v, err := ReadVarLong(d.r)
	if err != nil {
		d.fail(err)
		return 0
	}
	return v
}

// Bytes decodes a VarInt-length-prefixed byte array.
func (d *Decoder) Bytes() []byte {
	n := d.VarInt()
	if d.err != nil || n < 0 {
		if n < 0 {
			d.fail(ErrRanOutOfBytes)
		}
		return nil
	}
	return d.readN(int(n))
}

// String decodes a VarInt-length-prefixed UTF-8 string. Decoding is
// lossy-tolerant: invalid byte sequences are replaced rather than
// rejected, matching the original's decode behavior.
func (d *Decoder) String() string {
	raw := d.Bytes()
	if d.err != nil {
		return ""
	}
	if !utf8.Valid(raw) {
		return toValidUTF8(raw)
	}
	return string(raw)
}

// UUID decodes a 16-byte big-endian UUID.
func (d *Decoder) UUID() uuid.UUID {
	b := d.readN(16)
	if d.err != nil {
		return uuid.UUID{}
	}
	var u uuid.UUID
	copy(u[:], b)
	return u
}

func toValidUTF8(raw []byte) string {
	return string(bytes.ToValidUTF8(raw, string(utf8.RuneError)))
}

// Encoder appends typed fields to an in-memory buffer that the caller
// concatenates into a packet payload.
type Encoder struct {
	buf []byte
	err error
}

// NewEncoder returns an empty field encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated payload and any strict-encoding error
// (currently only possible from String, on invalid UTF-8 input or input
// longer than maxStringBytes; both are reported as ErrStringTooLarge).
func (e *Encoder) Bytes() ([]byte, error) { return e.buf, e.err }

// Bool encodes a single byte.
func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
	return e
}

// U8 encodes an unsigned byte.
func (e *Encoder) U8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

// I8 encodes a signed byte.
func (e *Encoder) I8(v int8) *Encoder { return e.U8(uint8(v)) }

// U16 encodes a big-endian u16.
func (e *Encoder) U16(v uint16) *Encoder {
	e.buf = append(e.buf, byte(v>>8), byte(v))
	return e
}

// I16 encodes a big-endian i16.
func (e *Encoder) I16(v int16) *Encoder { return e.U16(uint16(v)) }

// U32 encodes a big-endian u32.
func (e *Encoder) U32(v uint32) *Encoder {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return e
}

// I32 encodes a big-endian i32.
func (e *Encoder) I32(v int32) *Encoder { return e.U32(uint32(v)) }

// U64 encodes a big-endian u64.
func (e *Encoder) U64(v uint64) *Encoder {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

// I64 encodes a big-endian i64.
func (e *Encoder) I64(v int64) *Encoder { return e.U64(uint64(v)) }

// F32 encodes an IEEE-754 big-endian float32 by bit reinterpretation.
func (e *Encoder) F32(v float32) *Encoder { return e.U32(math.Float32bits(v)) }

// F64 encodes an IEEE-754 big-endian float64 by bit reinterpretation.
func (e *Encoder) F64(v float64) *Encoder { return e.U64(math.Float64bits(v)) }

// VarInt encodes a VarInt field.
func (e *Encoder) VarInt(v int32) *Encoder {
	e.buf = PutVarInt(e.buf, v)
	return e
}

// VarLong encodes a VarLong field.
func (e *Encoder) VarLong(v int64) *Encoder {
	e.buf = PutVarLong(e.buf, v)
	return e
}

// RawBytes encodes a VarInt-length-prefixed byte array.
func (e *Encoder) RawBytes(v []byte) *Encoder {
	e.VarInt(int32(len(v)))
	e.buf = append(e.buf, v...)
	return e
}

// String encodes a VarInt-length-prefixed UTF-8 string. Invalid UTF-8
// input is a strict encoding error, unlike the lossy decode path.
func (e *Encoder) String(s string) *Encoder {
	if !utf8.ValidString(s) {
		if e.err == nil {
			e.err = ErrStringTooLarge
		}
		return e
	}
	if len(s) > maxStringBytes {
		if e.err == nil {
			e.err = ErrStringTooLarge
		}
		return e
	}
	return e.RawBytes([]byte(s))
}

// UUID encodes a 16-byte big-endian UUID.
func (e *Encoder) UUID(u uuid.UUID) *Encoder {
	e.buf = append(e.buf, u[:]...)
	return e
}
