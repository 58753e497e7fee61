package probe

import (
	"bytes"
	"net"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// readChunk is the most a single socket read pulls off the wire.
const readChunk = 4096

// Conn frames a Stratum stream into newline-terminated messages.
//
// pending holds whatever followed the last newline of the previous read. It
// is never dropped between calls: one read may carry several messages, and
// one message may span several reads.
type Conn struct {
	nc      net.Conn
	pending []byte
	chunk   []byte
}

// NewConn wraps an open connection. The caller keeps ownership of nc's
// lifetime through Close.
func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc, chunk: make([]byte, readChunk)}
}

// hasLine reports whether a complete line is already buffered.
func (c *Conn) hasLine() bool {
	return bytes.IndexByte(c.pending, '\n') >= 0
}

// ReadLine returns the next line without its terminating newline. Every wait
// is bounded by deadline; past it ReadLine fails with ErrTimeout even when a
// line is buffered.
func (c *Conn) ReadLine(deadline time.Time) (string, error) {
	for {
		if time.Now().After(deadline) {
			return "", ErrTimeout
		}
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := decodeUTF8(c.pending[:i])
			c.pending = append(c.pending[:0:0], c.pending[i+1:]...)
			return line, nil
		}

		if err := c.nc.SetReadDeadline(deadline); err != nil {
			return "", classifyReadErr(err)
		}
		n, err := c.nc.Read(c.chunk)
		if n > 0 {
			c.pending = append(c.pending, c.chunk[:n]...)
			continue
		}
		if err != nil {
			return "", classifyReadErr(err)
		}
		return "", ErrClosed
	}
}

// Write sends b in full before deadline.
func (c *Conn) Write(b []byte, deadline time.Time) error {
	if err := c.nc.SetWriteDeadline(deadline); err != nil {
		return classifyReadErr(err)
	}
	if _, err := c.nc.Write(b); err != nil {
		return classifyReadErr(err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// decodeUTF8 decodes b, replacing invalid sequences with U+FFFD. The UTF-8
// decoder reports no error for invalid input, only for a failing transform.
func decodeUTF8(b []byte) string {
	out, _ := unicode.UTF8.NewDecoder().Bytes(b)
	return string(out)
}
