package probe

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"stratumprobe/netutil"
)

// Defaults applied by the CLI layer.
const (
	DefaultTimeout   = 3 * time.Second
	DefaultPassword  = "x"
	DefaultUserAgent = "zabbix-stratum-check"
)

// Config holds the parameters of a single probe. It is not modified once Run
// starts.
type Config struct {
	Host string
	Port uint16

	// Metric only decides whether the notify-wait stage runs.
	Metric Metric

	// Timeout bounds the whole probe: connect, TLS, every write and read.
	// Zero means DefaultTimeout.
	Timeout time.Duration

	TLS      bool
	SNI      string
	Insecure bool

	ProxyProtocol int

	// User enables mining.authorize when non-empty. Password is sent as is.
	User      string
	Password  string
	UserAgent string

	Logger logrus.FieldLogger
}

// Run performs one probe and returns the facts it gathered. A non-nil error
// is always a transport failure (ConnectError, ErrTimeout or ErrClosed); the
// facts collected up to that point are still returned, Elapsed included.
// The connection is closed before Run returns.
func Run(ctx context.Context, cfg Config) (Facts, error) {
	var facts Facts
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	log = log.WithFields(logrus.Fields{"host": cfg.Host, "port": cfg.Port, "tls": cfg.TLS})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()
	deadline := start.Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	nc, err := netutil.Dial(ctx, netutil.DialConfig{
		Host:          cfg.Host,
		Port:          cfg.Port,
		Deadline:      deadline,
		TLS:           cfg.TLS,
		SNI:           cfg.SNI,
		Insecure:      cfg.Insecure,
		ProxyProtocol: cfg.ProxyProtocol,
	})
	if err != nil {
		facts.Elapsed = time.Since(start)
		addr, _ := netutil.TargetAddr(cfg.Host, cfg.Port)
		log.WithField("error", err).Debug("connect failed")
		return facts, &ConnectError{Addr: addr, Err: err}
	}

	conn := NewConn(nc)
	hs := newHandshake(conn, cfg, deadline, &facts, log)
	err = hs.run()

	if cerr := conn.Close(); cerr != nil {
		log.WithField("error", cerr).Debug("close failed")
	}
	facts.Elapsed = time.Since(start)

	log.WithFields(logrus.Fields{
		"subscribe_ok": facts.SubscribeOK,
		"authorize_ok": facts.AuthorizeOK,
		"notify_seen":  facts.NotifySeen,
		"elapsed_ms":   LatencyMillis(facts.Elapsed),
	}).Debug("probe finished")
	return facts, err
}

// Measure runs the probe and projects the requested metric, folding every
// failure into Failure. Callers that also need the facts use Run.
func Measure(ctx context.Context, cfg Config) string {
	facts, err := Run(ctx, cfg)
	if err != nil {
		return Failure
	}
	return cfg.Metric.Project(facts)
}
