package probe

import (
	"fmt"
	"strconv"
	"time"
)

// Metric names one scalar the probe can report.
type Metric string

const (
	MetricAlive           Metric = "alive"
	MetricLatencyMs       Metric = "latency_ms"
	MetricSubscribeOK     Metric = "subscribe_ok"
	MetricAuthorizeOK     Metric = "authorize_ok"
	MetricNotifySeen      Metric = "notify_seen"
	MetricExtranonce1Len  Metric = "extranonce1_len"
	MetricExtranonce2Size Metric = "extranonce2_size"
	MetricSessionID       Metric = "session_id"
)

// Metrics lists every supported metric in the order the CLI documents them.
var Metrics = []Metric{
	MetricAlive,
	MetricLatencyMs,
	MetricSubscribeOK,
	MetricAuthorizeOK,
	MetricNotifySeen,
	MetricExtranonce1Len,
	MetricExtranonce2Size,
	MetricSessionID,
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Failure is what every metric reports when the probe could not complete.
const Failure = "0"

// Project maps the facts of one probe to the value of m. Unknown metrics
// yield Failure rather than an error.
func (m Metric) Project(f Facts) string {
	switch m {
	case MetricAlive, MetricSubscribeOK:
		return boolValue(f.SubscribeOK)
	case MetricLatencyMs:
		return strconv.FormatInt(LatencyMillis(f.Elapsed), 10)
	case MetricAuthorizeOK:
		return boolValue(f.AuthorizeOK)
	case MetricNotifySeen:
		return boolValue(f.NotifySeen)
	case MetricExtranonce1Len:
		return strconv.Itoa(f.Extranonce1Len)
	case MetricExtranonce2Size:
		return strconv.Itoa(f.Extranonce2Size)
	case MetricSessionID:
		return strconv.FormatInt(f.SessionID, 10)
	default:
		return Failure
	}
}

// LatencyMillis rounds d to the nearest millisecond, clamped at zero.
func LatencyMillis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Round(time.Millisecond).Milliseconds()
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
