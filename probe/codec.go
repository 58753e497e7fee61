package probe

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Request is an outbound Stratum V1 call. Field order is the wire order.
type Request struct {
	ID     int64         `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// EncodeRequest serializes one request as a single JSON line.
func EncodeRequest(id int64, method string, params ...interface{}) ([]byte, error) {
	if params == nil {
		params = []interface{}{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encode terminates the object with exactly one '\n'
	if err := enc.Encode(Request{ID: id, Method: method, Params: params}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Message is any inbound line: a response to one of our calls or a push
// from the pool such as mining.notify.
type Message struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// IsPush reports whether m was sent unsolicited by the pool.
func (m *Message) IsPush() bool {
	return m.Method != "" && isNull(m.Result) && isNull(m.Error)
}

// ErrorIsNull reports whether the error member is absent or null.
func (m *Message) ErrorIsNull() bool {
	return isNull(m.Error)
}

// ResultValue decodes the result member. Numbers stay json.Number.
func (m *Message) ResultValue() (interface{}, error) {
	if isNull(m.Result) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(m.Result))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// IDValue returns the response id as an integer, or 0 when it is absent,
// null or not an integer.
func (m *Message) IDValue() int64 {
	if isNull(m.ID) {
		return 0
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(m.ID))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0
	}
	switch id := v.(type) {
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// DecodeMessage parses one line. Anything that is not a JSON object is a
// MalformedResponseError tagged with stage.
func DecodeMessage(stage, line string) (*Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		return nil, &MalformedResponseError{Stage: stage, Line: line, Err: err}
	}
	return &m, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// truthy follows the usual loose JSON truthiness: null, false, 0, "" and
// empty containers are false.
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	}
	return true
}

var errNotInteger = errors.New("value is not an integer")

// coerceInt converts a decoded JSON scalar into an int. Fractional numbers
// are truncated toward zero, numeric strings are parsed and booleans map to
// 0/1.
func coerceInt(v interface{}) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64 {
			return 0, errNotInteger
		}
		return int64(f), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) > math.MaxInt64 {
			return 0, errNotInteger
		}
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, errNotInteger
		}
		return n, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errNotInteger
}
