package output

import (
	"encoding/json"
	"fmt"
	"io"

	"stratumprobe/port"
)

// WriteMetric prints the single value line the monitoring system parses.
func WriteMetric(w io.Writer, value string) error {
	_, err := fmt.Fprintln(w, value)
	return err
}

// WriteDiscovery prints the low-level discovery document as one JSON line.
func WriteDiscovery(w io.Writer, d port.Discovery) error {
	if d.Data == nil {
		d.Data = []port.DiscoveryEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}
