package probe

import (
	"testing"
	"time"
)

func TestParseMetric(t *testing.T) {
	for _, m := range Metrics {
		got, err := ParseMetric(string(m))
		if err != nil || got != m {
			t.Fatalf("ParseMetric(%s) = %s, %v", m, got, err)
		}
	}
	for _, bad := range []string{"", "ALIVE", "latency", "hashrate"} {
		if _, err := ParseMetric(bad); err == nil {
			t.Fatalf("ParseMetric(%q): expected error", bad)
		}
	}
}

func TestProject(t *testing.T) {
	facts := Facts{
		SubscribeOK:     true,
		AuthorizeOK:     false,
		NotifySeen:      true,
		Extranonce1Len:  8,
		Extranonce2Size: 4,
		SessionID:       1,
		Elapsed:         12*time.Millisecond + 600*time.Microsecond,
	}
	cases := map[Metric]string{
		MetricAlive:           "1",
		MetricLatencyMs:       "13",
		MetricSubscribeOK:     "1",
		MetricAuthorizeOK:     "0",
		MetricNotifySeen:      "1",
		MetricExtranonce1Len:  "8",
		MetricExtranonce2Size: "4",
		MetricSessionID:       "1",
		Metric("bogus"):       "0",
	}
	for m, want := range cases {
		if got := m.Project(facts); got != want {
			t.Fatalf("%s: got %s want %s", m, got, want)
		}
	}
}

func TestProject_ZeroFacts(t *testing.T) {
	for _, m := range Metrics {
		if got := m.Project(Facts{}); got != "0" {
			t.Fatalf("%s: got %s want 0", m, got)
		}
	}
}

func TestLatencyMillis(t *testing.T) {
	cases := map[time.Duration]int64{
		-5 * time.Millisecond:   0,
		0:                       0,
		400 * time.Microsecond:  0,
		1499 * time.Microsecond: 1,
		1500 * time.Microsecond: 2,
		3 * time.Second:         3000,
	}
	for d, want := range cases {
		if got := LatencyMillis(d); got != want {
			t.Fatalf("LatencyMillis(%v) = %d want %d", d, got, want)
		}
	}
}
