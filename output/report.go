package output

import (
	"encoding/json"
	"fmt"
	"time"

	"stratumprobe/probe"
)

// Report is the full record of one probe, written next to the single metric
// value so one run can feed several dependent items.
type Report struct {
	Host      string      `json:"host"`
	Port      uint16      `json:"port"`
	TLS       bool        `json:"tls"`
	Metric    string      `json:"metric"`
	Value     string      `json:"value"`
	LatencyMs int64       `json:"latency_ms"`
	Error     string      `json:"error,omitempty"`
	Facts     probe.Facts `json:"facts"`
	CheckedAt time.Time   `json:"checked_at"`
}

// WriteReport stores r as indented JSON at path, atomically.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return WriteAtomic(path, append(data, '\n'))
}
