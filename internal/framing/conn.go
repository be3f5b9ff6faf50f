// Package framing implements the frame layer: VarInt length + payload
// reads/writes over a byte stream, a non-consuming single-byte peek for
// legacy-ping detection, and an ownership-transferring split into
// independent read/write endpoints for the play relay.
package framing

import (
	"crypto/cipher"
	"errors"
	"io"
	"net"

	"mc-reverse-proxy/internal/protocol"
)

// ErrSplit is returned by ReadFrame/WriteFrame/PeekByte once the
// connection has been split; the combined Conn is consumed by Split and
// must not be used afterward.
var ErrSplit = errors.New("framing: connection already split")

// Conn wraps a net.Conn with frame-oriented reads and writes, and an
// optional pair of stream ciphers installed after the encryption
// handshake completes (client leg only).
type Conn struct {
	raw net.Conn
	r   *cipherReader
	w   *cipherWriter
}

// New wraps raw for frame I/O. No cipher is installed initially.
func New(raw net.Conn) *Conn {
	return &Conn{
		raw: raw,
		r:   &cipherReader{src: raw},
		w:   &cipherWriter{dst: raw},
	}
}

// InstallCipher activates AES/CFB8 (or any cipher.Stream pair) on both
// halves of the connection. Per the design notes, this must be called
// after EncryptionResponse is fully read and before any other byte is
// read or written on this connection.
func (c *Conn) InstallCipher(encrypt, decrypt cipher.Stream) {
	c.r.cipher = decrypt
	c.w.cipher = encrypt
}

// PeekByte returns the next byte without consuming it. Only valid before
// the first frame is read (legacy-ping detection).
func (c *Conn) PeekByte() (byte, error) {
	if c.r == nil {
		return 0, ErrSplit
	}
	return c.r.peek()
}

// ReadFrame decodes a VarInt length L, then reads exactly L payload
// bytes.
func (c *Conn) ReadFrame() ([]byte, error) {
	if c.r == nil {
		return nil, ErrSplit
	}
	length, err := protocol.ReadVarInt(c.r)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, protocol.ErrRanOutOfBytes
	}
	if length == 0 {
		return nil, nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFrame emits VarInt(len(payload)) followed by payload in a single
// write burst.
func (c *Conn) WriteFrame(payload []byte) error {
	if c.w == nil {
		return ErrSplit
	}
	out := protocol.PutVarInt(make([]byte, 0, len(payload)+5), int32(len(payload)))
	out = append(out, payload...)
	_, err := c.w.Write(out)
	return err
}

// WriteRaw writes p as a single burst with no length prefix, used only
// for the pre-framing legacy ping response.
func (c *Conn) WriteRaw(p []byte) error {
	if c.w == nil {
		return ErrSplit
	}
	_, err := c.w.Write(p)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.raw.Close() }

// RemoteAddr returns the underlying connection's remote address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// cipherReader reads raw bytes off src, decrypting through cipher when
// installed. A single pending byte supports PeekByte without any
// buffering that could read ahead across the cipher-install boundary.
type cipherReader struct {
	src     io.Reader
	cipher  cipher.Stream
	pending []byte
}

func (r *cipherReader) peek() (byte, error) {
	if len(r.pending) == 0 {
		var b [1]byte
		if _, err := io.ReadFull(r.src, b[:]); err != nil {
			return 0, err
		}
		if r.cipher != nil {
			r.cipher.XORKeyStream(b[:], b[:])
		}
		r.pending = b[:]
	}
	return r.pending[0], nil
}

// ReadByte satisfies io.ByteReader for VarInt decoding.
func (r *cipherReader) ReadByte() (byte, error) {
	if len(r.pending) > 0 {
		b := r.pending[0]
		r.pending = nil
		return b, nil
	}
	var buf [1]byte
	if _, err := io.ReadFull(r.src, buf[:]); err != nil {
		return 0, err
	}
	if r.cipher != nil {
		r.cipher.XORKeyStream(buf[:], buf[:])
	}
	return buf[0], nil
}

// Read fills p entirely (io.ReadFull semantics) or returns an error.
func (r *cipherReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	if len(r.pending) > 0 {
		p[0] = r.pending[0]
		r.pending = nil
		n = 1
		if len(p) == 1 {
			return n, nil
		}
		p = p[1:]
	}
	m, err := io.ReadFull(r.src, p)
	if m > 0 && r.cipher != nil {
		r.cipher.XORKeyStream(p[:m], p[:m])
	}
	return n + m, err
}

// cipherWriter encrypts (when a cipher is installed) and writes p as a
// single burst.
type cipherWriter struct {
	dst    io.Writer
	cipher cipher.Stream
}

func (w *cipherWriter) Write(p []byte) (int, error) {
	if w.cipher == nil {
		return w.dst.Write(p)
	}
	out := make([]byte, len(p))
	w.cipher.XORKeyStream(out, p)
	return w.dst.Write(out)
}
