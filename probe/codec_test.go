package probe

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	cases := []struct {
		id     int64
		method string
		params []interface{}
		want   string
	}{
		{1, MethodSubscribe, []interface{}{"cpuminer/2.5"}, `{"id":1,"method":"mining.subscribe","params":["cpuminer/2.5"]}` + "\n"},
		{2, MethodAuthorize, []interface{}{"wallet.rig1", "x"}, `{"id":2,"method":"mining.authorize","params":["wallet.rig1","x"]}` + "\n"},
		{3, "mining.extranonce.subscribe", nil, `{"id":3,"method":"mining.extranonce.subscribe","params":[]}` + "\n"},
		{4, MethodSubscribe, []interface{}{"<agent&co>"}, `{"id":4,"method":"mining.subscribe","params":["<agent&co>"]}` + "\n"},
	}
	for _, c := range cases {
		t.Run(c.method, func(t *testing.T) {
			got, err := EncodeRequest(c.id, c.method, c.params...)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if string(got) != c.want {
				t.Fatalf("got %s want %s", got, c.want)
			}
		})
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	for _, line := range []string{"", "garbage", `[1,2,3]`, `"str"`, `{"id":1,`} {
		_, err := DecodeMessage("subscribing", line)
		var mr *MalformedResponseError
		if !errors.As(err, &mr) {
			t.Fatalf("%q: expected MalformedResponseError, got %v", line, err)
		}
		if IsFatal(err) {
			t.Fatalf("%q: malformed response must not be fatal", line)
		}
	}
}

func TestMessage_IsPush(t *testing.T) {
	cases := map[string]bool{
		`{"id":null,"method":"mining.notify","params":["job"]}`:           true,
		`{"method":"mining.set_difficulty","params":[1]}`:                 true,
		`{"id":null,"method":"mining.notify","result":null,"error":null}`: true,
		`{"id":1,"result":true,"error":null}`:                             false,
		`{"id":1,"method":"mining.notify","result":true,"error":null}`:    false,
		`{"id":5,"method":"","params":[]}`:                                false,
	}
	for line, want := range cases {
		m, err := DecodeMessage("test", line)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		if got := m.IsPush(); got != want {
			t.Fatalf("%s: got %v want %v", line, got, want)
		}
	}
}

func TestMessage_IDValue(t *testing.T) {
	cases := map[string]int64{
		`{"id":1}`:     1,
		`{"id":42}`:    42,
		`{"id":"7"}`:   7,
		`{"id":0}`:     0,
		`{"id":null}`:  0,
		`{}`:           0,
		`{"id":"abc"}`: 0,
		`{"id":1.5}`:   0,
		`{"id":[1]}`:   0,
	}
	for line, want := range cases {
		m, err := DecodeMessage("test", line)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		if got := m.IDValue(); got != want {
			t.Fatalf("%s: got %d want %d", line, got, want)
		}
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    interface{}
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{json.Number("0"), false},
		{json.Number("0.0"), false},
		{json.Number("3"), true},
		{"", false},
		{"x", true},
		{[]interface{}{}, false},
		{[]interface{}{nil}, true},
		{map[string]interface{}{}, false},
		{map[string]interface{}{"k": 1}, true},
	}
	for _, c := range cases {
		if got := truthy(c.v); got != c.want {
			t.Fatalf("truthy(%#v) = %v want %v", c.v, got, c.want)
		}
	}
}

func TestCoerceInt(t *testing.T) {
	ok := []struct {
		v    interface{}
		want int64
	}{
		{json.Number("4"), 4},
		{json.Number("4.9"), 4},
		{json.Number("-2.5"), -2},
		{"8", 8},
		{" 8 ", 8},
		{true, 1},
		{false, 0},
		{float64(6), 6},
	}
	for _, c := range ok {
		got, err := coerceInt(c.v)
		if err != nil || got != c.want {
			t.Fatalf("coerceInt(%#v) = %d, %v want %d", c.v, got, err, c.want)
		}
	}
	for _, v := range []interface{}{nil, "4.5", "four", []interface{}{4}, map[string]interface{}{}} {
		if _, err := coerceInt(v); err == nil {
			t.Fatalf("coerceInt(%#v): expected error", v)
		}
	}
}
