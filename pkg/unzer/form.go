package unzer

import (
	"bytes"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Params is an insertion-ordered key/value mapping. Use it when the order
// of form fields matters; plain maps are encoded in sorted key order.
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams returns an empty Params.
func NewParams() *Params {
	return &Params{values: make(map[string]any)}
}

// Set stores value under key. Re-setting a key keeps its original position.
func (p *Params) Set(key string, value any) *Params {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of entries.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// MarshalJSON encodes p as a JSON object in insertion order. It has a value
// receiver so Params values and pointers encode the same way.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormEncode converts payload into an application/x-www-form-urlencoded
// string. Supported payloads are *Params, Params, map[string]any,
// map[string]string and url.Values; nil yields an empty string. Numbers
// are written as JavaScript's String(number) would write them.
func FormEncode(payload any) (string, error) {
	switch v := payload.(type) {
	case nil:
		return "", nil
	case *Params:
		if v == nil {
			return "", nil
		}
		return encodeOrdered(v.keys, func(k string) any { return v.values[k] })
	case Params:
		return encodeOrdered(v.keys, func(k string) any { return v.values[k] })
	case map[string]any:
		return encodeOrdered(sortedKeys(v), func(k string) any { return v[k] })
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return encodeOrdered(keys, func(k string) any { return v[k] })
	case url.Values:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			for _, val := range v[k] {
				pairs = append(pairs, escapeComponent(k)+"="+escapeComponent(val))
			}
		}
		return strings.Join(pairs, "&"), nil
	default:
		return "", invalidArgument("form payload of type %T", payload)
	}
}

func encodeOrdered(keys []string, value func(string) any) (string, error) {
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		s, err := formValue(value(k))
		if err != nil {
			return "", err
		}
		pairs = append(pairs, escapeComponent(k)+"="+escapeComponent(s))
	}
	return strings.Join(pairs, "&"), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formValue stringifies a single form value. Composite values are JSON.
func formValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "null", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(toInt64(t), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(toUint64(t), 10), nil
	case float32:
		return formatNumber(float64(t), 32), nil
	case float64:
		return formatNumber(t, 64), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", invalidArgument("form value of type %T: %v", v, err)
		}
		return string(b), nil
	}
}

// formatNumber renders f the way JavaScript's String(number) does: plain
// decimal between 1e-6 and 1e21, exponent form outside that range.
func formatNumber(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, bitSize)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	}
	return 0
}

func toUint64(v any) uint64 {
	switch t := v.(type) {
	case uint:
		return uint64(t)
	case uint8:
		return uint64(t)
	case uint16:
		return uint64(t)
	case uint32:
		return uint64(t)
	case uint64:
		return t
	}
	return 0
}

const upperhex = "0123456789ABCDEF"

// escapeComponent percent-encodes s the way encodeURIComponent does.
func escapeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
