package port

import (
	"errors"
	"strconv"
	"strings"
)

// ParsePort parses a single probe port and enforces the 1..65535 range.
func ParsePort(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty port")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 1 || v > 65535 {
		return 0, errors.New("port numbers must be in 1..65535")
	}
	return uint16(v), nil
}

// ParseDiscoveryList splits a comma-separated port list for low-level discovery.
// Tokens are trimmed, empty tokens are skipped and anything that is not made
// of ASCII digits is dropped silently. Order and duplicates are preserved and
// the token text is kept as written.
func ParseDiscoveryList(spec string) []string {
	ports := make([]string, 0)
	for _, p := range strings.Split(spec, ",") {
		p = strings.TrimSpace(p)
		if p == "" || !isDigits(p) {
			continue
		}
		ports = append(ports, p)
	}
	return ports
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
