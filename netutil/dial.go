package netutil

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	proxyproto "github.com/pires/go-proxyproto"
)

// DialConfig describes how to reach a pool endpoint.
type DialConfig struct {
	Host string
	Port uint16

	// Deadline bounds the TCP connect and the TLS handshake together.
	Deadline time.Time

	TLS      bool
	SNI      string
	Insecure bool

	// ProxyProtocol selects a PROXY protocol header (1 or 2) written right
	// after connect, for pools that sit behind a proxy-aware load balancer.
	// Zero sends nothing.
	ProxyProtocol int
}

// Dial opens the connection described by cfg. The returned conn is either the
// raw TCP stream or a TLS client on top of it, with the handshake completed.
// On error no connection is left open.
func Dial(ctx context.Context, cfg DialConfig) (net.Conn, error) {
	addr, err := TargetAddr(cfg.Host, cfg.Port)
	if err != nil {
		return nil, err
	}
	if cfg.ProxyProtocol < 0 || cfg.ProxyProtocol > 2 {
		return nil, fmt.Errorf("unsupported proxy protocol version %d", cfg.ProxyProtocol)
	}
	if !cfg.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, cfg.Deadline)
		defer cancel()
	}

	dialer := &net.Dialer{Deadline: cfg.Deadline}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if !cfg.Deadline.IsZero() {
		_ = raw.SetDeadline(cfg.Deadline)
	}

	if cfg.ProxyProtocol > 0 {
		hdr := proxyproto.HeaderProxyFromAddrs(byte(cfg.ProxyProtocol), raw.LocalAddr(), raw.RemoteAddr())
		if _, err := hdr.WriteTo(raw); err != nil {
			_ = raw.Close()
			return nil, fmt.Errorf("write proxy header: %w", err)
		}
	}

	if !cfg.TLS {
		return raw, nil
	}

	tlsConn := tls.Client(raw, &tls.Config{
		ServerName:         ServerName(cfg.Host, cfg.SNI),
		InsecureSkipVerify: cfg.Insecure, // self-signed pool endpoints only
	})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}
	return tlsConn, nil
}
