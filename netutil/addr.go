package netutil

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

// TargetAddr joins host and port into a dialable address.
// IPv6 literals are accepted with or without brackets.
func TargetAddr(host string, port uint16) (string, error) {
	h := strings.TrimSpace(host)
	h = strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
	if h == "" {
		return "", errors.New("empty host")
	}
	if port == 0 {
		return "", errors.New("port numbers must be in 1..65535")
	}
	return net.JoinHostPort(h, strconv.Itoa(int(port))), nil
}

// ServerName picks the TLS server name: the explicit override when set,
// otherwise the host itself with any IPv6 brackets removed.
func ServerName(host, override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(host), "["), "]")
}
