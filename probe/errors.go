package probe

import (
	"errors"
	"fmt"
	"io"
	"net"
)

var (
	// ErrTimeout reports that the probe (or a stage-local) deadline passed
	// while waiting for bytes.
	ErrTimeout = errors.New("stratum: deadline exceeded")
	// ErrClosed reports that the peer closed the stream mid-read.
	ErrClosed = errors.New("stratum: connection closed by peer")
)

// ConnectError wraps a TCP connect, PROXY header or TLS handshake failure.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("stratum: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a line is not a JSON object.
// It only ever aborts the fact update of the stage that read the line.
type MalformedResponseError struct {
	Stage string
	Line  string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("stratum: malformed %s response %q: %v", e.Stage, truncate(e.Line, 64), e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsFatal reports whether err ends the whole probe.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var mr *MalformedResponseError
	return !errors.As(err, &mr)
}

// classifyReadErr maps a socket read/write error onto the probe taxonomy.
func classifyReadErr(err error) error {
	if err == nil {
		return nil
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, io.EOF) {
		return ErrClosed
	}
	// reset, broken pipe and TLS alerts all end the stream
	return fmt.Errorf("%w: %v", ErrClosed, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
