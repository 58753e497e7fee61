package probe

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Stratum V1 methods used by the handshake.
const (
	MethodSubscribe = "mining.subscribe"
	MethodAuthorize = "mining.authorize"
	MethodNotify    = "mining.notify"
)

// NotifyWindow caps how long the probe lingers for a mining.notify push.
const NotifyWindow = 800 * time.Millisecond

// Facts is what a handshake observed. The zero value means nothing succeeded.
type Facts struct {
	SubscribeOK     bool          `json:"subscribe_ok"`
	AuthorizeOK     bool          `json:"authorize_ok"`
	NotifySeen      bool          `json:"notify_seen"`
	Extranonce1Len  int           `json:"extranonce1_len"`
	Extranonce2Size int           `json:"extranonce2_size"`
	SessionID       int64         `json:"session_id"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

// State is a handshake stage.
type State int

const (
	StateConnecting State = iota
	StateSubscribing
	StateAuthorizing
	StateAwaitingNotify
	StateDone
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSubscribing:
		return "subscribing"
	case StateAuthorizing:
		return "authorizing"
	case StateAwaitingNotify:
		return "awaiting_notify"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// handshake drives subscribe -> authorize -> notify-wait over one Conn.
//
// Responses are paired with requests purely by arrival order: the client
// never has more than one call outstanding, so the next line after a call is
// taken as its answer. Ids are not matched.
type handshake struct {
	conn     *Conn
	cfg      Config
	deadline time.Time
	nextID   int64
	state    State
	facts    *Facts
	log      logrus.FieldLogger
}

func newHandshake(conn *Conn, cfg Config, deadline time.Time, facts *Facts, log logrus.FieldLogger) *handshake {
	return &handshake{
		conn:     conn,
		cfg:      cfg,
		deadline: deadline,
		nextID:   1,
		state:    StateConnecting,
		facts:    facts,
		log:      log,
	}
}

// run advances through every applicable stage. Only transport errors are
// returned; a malformed answer leaves that stage's facts at zero.
func (h *handshake) run() error {
	stages := []struct {
		state State
		skip  bool
		fn    func() error
	}{
		{StateSubscribing, false, h.subscribe},
		{StateAuthorizing, h.cfg.User == "", h.authorize},
		{StateAwaitingNotify, h.cfg.Metric != MetricNotifySeen, h.awaitNotify},
	}
	for _, st := range stages {
		if st.skip {
			continue
		}
		h.state = st.state
		err := st.fn()
		if err == nil {
			continue
		}
		if IsFatal(err) {
			h.log.WithFields(logrus.Fields{"stage": h.state, "error": err}).Debug("handshake aborted")
			return err
		}
		h.log.WithFields(logrus.Fields{"stage": h.state, "error": err}).Debug("stage response ignored")
	}
	h.state = StateDone
	return nil
}

// call writes one request with the next id.
func (h *handshake) call(method string, params ...interface{}) error {
	id := h.nextID
	h.nextID++
	b, err := EncodeRequest(id, method, params...)
	if err != nil {
		return err
	}
	h.log.WithFields(logrus.Fields{"stage": h.state, "id": id, "method": method}).Debug("send")
	return h.conn.Write(b, h.deadline)
}

// roundTrip sends a call and reads the line that follows it.
func (h *handshake) roundTrip(method string, params ...interface{}) (*Message, error) {
	if err := h.call(method, params...); err != nil {
		return nil, err
	}
	line, err := h.conn.ReadLine(h.deadline)
	if err != nil {
		return nil, err
	}
	h.log.WithFields(logrus.Fields{"stage": h.state, "line": truncate(line, 256)}).Debug("recv")
	return DecodeMessage(h.state.String(), line)
}

func (h *handshake) subscribe() error {
	m, err := h.roundTrip(MethodSubscribe, h.cfg.UserAgent)
	if err != nil {
		return err
	}
	applySubscribe(m, h.facts)
	return nil
}

// applySubscribe records a mining.subscribe answer. Only SubscribeOK has to
// be right; the extranonce and session fields are best effort.
func applySubscribe(m *Message, f *Facts) {
	if !m.ErrorIsNull() {
		return
	}
	result, err := m.ResultValue()
	if err != nil || !truthy(result) {
		return
	}
	f.SubscribeOK = true
	if arr, ok := result.([]interface{}); ok {
		applyExtranonce(arr, f)
	}
	f.SessionID = m.IDValue()
}

// applyExtranonce reads [subscriptions, extranonce1, extranonce2_size].
func applyExtranonce(result []interface{}, f *Facts) {
	if len(result) < 2 {
		return
	}
	if en1, ok := result[1].(string); ok {
		f.Extranonce1Len = utf8.RuneCountInString(en1)
	}
	if len(result) < 3 {
		return
	}
	n, err := coerceInt(result[2])
	if err != nil || n < 0 {
		return
	}
	f.Extranonce2Size = int(n)
}

func (h *handshake) authorize() error {
	m, err := h.roundTrip(MethodAuthorize, h.cfg.User, h.cfg.Password)
	if err != nil {
		return err
	}
	if !m.ErrorIsNull() {
		return nil
	}
	if v, err := m.ResultValue(); err == nil && v == true {
		h.facts.AuthorizeOK = true
	}
	return nil
}

// awaitNotify looks for a mining.notify push within NotifyWindow, never past
// the probe deadline. Running out of time or the pool hanging up just ends
// the wait.
func (h *handshake) awaitNotify() error {
	local := time.Now().Add(NotifyWindow)
	if h.deadline.Before(local) {
		local = h.deadline
	}
	for {
		line, err := h.conn.ReadLine(local)
		if err != nil {
			if errors.Is(err, ErrTimeout) || errors.Is(err, ErrClosed) {
				h.log.WithFields(logrus.Fields{"stage": h.state, "reason": err}).Debug("notify wait ended")
				return nil
			}
			return err
		}
		m, err := DecodeMessage(h.state.String(), line)
		if err != nil {
			continue
		}
		if m.IsPush() && m.Method == MethodNotify {
			h.facts.NotifySeen = true
			return nil
		}
	}
}
