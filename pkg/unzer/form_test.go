package unzer

import (
	"net/url"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestFormEncodeKeepsInsertionOrder(t *testing.T) {
	p := NewParams().
		Set("zeta", "last?").
		Set("alpha", "a&b=c").
		Set("émoji", "☕ ok").
		Set("zeta", "first!")

	got, err := FormEncode(p)
	if err != nil {
		t.Fatalf("FormEncode: %v", err)
	}
	want := "zeta=first!&alpha=a%26b%3Dc&%C3%A9moji=%E2%98%95%20ok"
	if got != want {
		t.Fatalf("FormEncode = %q, want %q", got, want)
	}
}

func TestFormEncodeSegmentsRoundTrip(t *testing.T) {
	p := NewParams()
	entries := [][2]string{
		{"uuid", "s-crd-1"},
		{"return url", "https://shop.test/return?x=1&y=2"},
		{"note", "100% + tax / 2"},
		{"quote", "it's (mostly) *fine* ~"},
	}
	for _, e := range entries {
		p.Set(e[0], e[1])
	}

	encoded, err := FormEncode(p)
	if err != nil {
		t.Fatalf("FormEncode: %v", err)
	}
	segments := strings.Split(encoded, "&")
	if len(segments) != len(entries) {
		t.Fatalf("expected %d segments, got %d (%q)", len(entries), len(segments), encoded)
	}
	for i, seg := range segments {
		kv := strings.SplitN(seg, "=", 2)
		if len(kv) != 2 {
			t.Fatalf("segment %q has no '='", seg)
		}
		k, err := url.PathUnescape(kv[0])
		if err != nil {
			t.Fatalf("unescape key: %v", err)
		}
		v, err := url.PathUnescape(kv[1])
		if err != nil {
			t.Fatalf("unescape value: %v", err)
		}
		if k != entries[i][0] || v != entries[i][1] {
			t.Fatalf("segment %d = %q=%q, want %q=%q", i, k, v, entries[i][0], entries[i][1])
		}
	}
}

func TestFormEncodeStringifiesValues(t *testing.T) {
	p := NewParams().
		Set("int", 42).
		Set("neg", int64(-7)).
		Set("float", 19.99).
		Set("bool", true).
		Set("nil", nil).
		Set("nested", map[string]any{"a": 1})

	got, err := FormEncode(p)
	if err != nil {
		t.Fatalf("FormEncode: %v", err)
	}
	want := "int=42&neg=-7&float=19.99&bool=true&nil=null&nested=%7B%22a%22%3A1%7D"
	if got != want {
		t.Fatalf("FormEncode = %q, want %q", got, want)
	}
}

func TestFormEncodeMapsAreSorted(t *testing.T) {
	got, err := FormEncode(map[string]any{"b": 2, "a": "x"})
	if err != nil {
		t.Fatalf("FormEncode: %v", err)
	}
	if got != "a=x&b=2" {
		t.Fatalf("FormEncode = %q", got)
	}

	got, err = FormEncode(url.Values{"k": {"1", "2"}})
	if err != nil {
		t.Fatalf("FormEncode url.Values: %v", err)
	}
	if got != "k=1&k=2" {
		t.Fatalf("FormEncode url.Values = %q", got)
	}
}

func TestFormEncodeEmpty(t *testing.T) {
	for _, in := range []any{nil, NewParams(), map[string]any{}, map[string]string{}} {
		got, err := FormEncode(in)
		if err != nil || got != "" {
			t.Fatalf("FormEncode(%T) = %q, %v", in, got, err)
		}
	}
}

func TestFormEncodeRejectsUnsupportedPayload(t *testing.T) {
	if _, err := FormEncode([]string{"a"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestParamsMarshalJSONKeepsOrder(t *testing.T) {
	b, err := json.Marshal(NewParams().Set("z", 1).Set("a", "b"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"z":1,"a":"b"}` {
		t.Fatalf("Marshal = %s", b)
	}
}

func TestParamsValueMarshalsLikePointer(t *testing.T) {
	p := NewParams().Set("amount", 12.5).Set("currency", "EUR")
	for _, in := range []any{p, *p} {
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal(%T): %v", in, err)
		}
		if string(b) != `{"amount":12.5,"currency":"EUR"}` {
			t.Fatalf("Marshal(%T) = %s", in, b)
		}
	}

	var nilParams *Params
	if b, err := json.Marshal(nilParams); err != nil || string(b) != "null" {
		t.Fatalf("Marshal(nil) = %s, %v", b, err)
	}
}

func TestParamsAccessors(t *testing.T) {
	p := NewParams().Set("b", 1).Set("a", "x").Set("b", 2)

	if p.Len() != 2 {
		t.Fatalf("Len = %d", p.Len())
	}
	keys := p.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("Keys = %v", keys)
	}
	keys[0] = "mutated"
	if p.Keys()[0] != "b" {
		t.Fatalf("Keys must return a copy")
	}
	if v, ok := p.Get("b"); !ok || v != 2 {
		t.Fatalf("Get(b) = %v, %v", v, ok)
	}
	if _, ok := p.Get("missing"); ok {
		t.Fatalf("Get(missing) should report absence")
	}

	var nilParams *Params
	if nilParams.Len() != 0 || nilParams.Keys() != nil {
		t.Fatalf("nil Params should be empty")
	}
	if _, ok := nilParams.Get("b"); ok {
		t.Fatalf("nil Params Get should report absence")
	}
}

func TestFormEncodeNumbersLikeJavaScript(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{12.5, "12.5"},
		{100, "100"},
		{0, "0"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{1.5e-7, "1.5e-7"},
		{123456789012345680000, "123456789012345680000"},
		{1e21, "1e%2B21"},
		{-2.5e22, "-2.5e%2B22"},
	}
	for _, tc := range cases {
		got, err := FormEncode(NewParams().Set("n", tc.in))
		if err != nil {
			t.Fatalf("FormEncode(%v): %v", tc.in, err)
		}
		if got != "n="+tc.want {
			t.Fatalf("FormEncode(%v) = %q, want %q", tc.in, got, "n="+tc.want)
		}
	}
}
