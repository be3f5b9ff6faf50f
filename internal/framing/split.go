package framing

import "net"

// ReadHalf is the read-only endpoint produced by Split. It owns the
// connection's read side (and decrypt cipher, if installed) and exposes
// no write capability, so the two relay directions cannot alias a single
// mutable connection object.
type ReadHalf struct {
	r   *cipherReader
	raw net.Conn
}

// Read forwards to the underlying (possibly decrypting) reader.
func (h *ReadHalf) Read(p []byte) (int, error) { return h.r.Read(p) }

// Close closes the underlying connection.
func (h *ReadHalf) Close() error { return h.raw.Close() }

// WriteHalf is the write-only endpoint produced by Split.
type WriteHalf struct {
	w   *cipherWriter
	raw net.Conn
}

// Write forwards to the underlying (possibly encrypting) writer.
func (h *WriteHalf) Write(p []byte) (int, error) { return h.w.Write(p) }

// CloseWrite half-closes the write side if the underlying connection
// supports it (e.g. *net.TCPConn), otherwise closes the connection
// outright.
func (h *WriteHalf) CloseWrite() error {
	if cw, ok := h.raw.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return h.raw.Close()
}

// Close closes the underlying connection.
func (h *WriteHalf) Close() error { return h.raw.Close() }

// Split consumes the combined connection, yielding a read-only and a
// write-only endpoint, each owning exactly one half of the byte stream
// (plus its cipher, if any). Once split, Conn's own ReadFrame/WriteFrame
// return ErrSplit; the combined value must not be used again.
func (c *Conn) Split() (*ReadHalf, *WriteHalf) {
	rh := &ReadHalf{r: c.r, raw: c.raw}
	wh := &WriteHalf{w: c.w, raw: c.raw}
	c.r = nil
	c.w = nil
	return rh, wh
}
