package lex

import (
	"strings"
	"testing"
)

func TestWidenRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"ascii",
		"héllo wörld",
		"日本語テキスト",
		"mixed é 世 \U0001F600",
	}
	for _, s := range tests {
		w, err := Widen(s)
		if err != nil {
			t.Fatalf("Widen(%q): %v", s, err)
		}
		n, err := Narrow(w)
		if err != nil {
			t.Fatalf("Narrow(Widen(%q)): %v", s, err)
		}
		if n != s {
			t.Errorf("round trip of %q produced %q", s, n)
		}
	}
}

func TestWidenInvalidUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"lone continuation", "ok\x80"},
		{"truncated sequence", "ab\xe2\x82"},
		{"overlong encoding", "\xc0\xaf"},
		{"stray high byte", "\xff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Widen(tt.in); err == nil {
				t.Errorf("Widen(%q) succeeded, want error", tt.in)
			}
		})
	}
}

func TestNarrowInvalidScalar(t *testing.T) {
	tests := []struct {
		name string
		in   []rune
	}{
		{"surrogate", []rune{'a', 0xD800, 'b'}},
		{"above max", []rune{0x110000}},
		{"negative", []rune{-1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Narrow(tt.in); err == nil {
				t.Errorf("Narrow(%v) succeeded, want error", tt.in)
			}
		})
	}
}

func TestNarrowReportsIndex(t *testing.T) {
	_, err := Narrow([]rune{'x', 'y', 0xD800})
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "index 2") {
		t.Errorf("error %q does not name the offending index", err)
	}
}

func TestFormatFloatRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1, -1, 0.5, 1e300, -2.5e-10, 3.141592653589793} {
		s := FormatFloat(f, 64)
		back, err := ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("ParseFloat(%q): %v", s, err)
		}
		if back != f {
			t.Errorf("round trip of %v via %q produced %v", f, s, back)
		}
	}
}

func TestFormatFloat32Exact(t *testing.T) {
	// 0.1 is not exactly representable in float32; the 32-bit formatting
	// must still round-trip the float32 value it was given.
	f := float64(float32(0.1))
	s := FormatFloat(f, 32)
	back, err := ParseFloat(s, 32)
	if err != nil {
		t.Fatalf("ParseFloat(%q): %v", s, err)
	}
	if float32(back) != float32(f) {
		t.Errorf("float32 round trip of %v via %q produced %v", f, s, back)
	}
}

func TestParseSignedRejectsDecimals(t *testing.T) {
	for _, s := range []string{"3.0", "1e2", " 5", "5 ", "0x10", ""} {
		if _, err := ParseSigned(s); err == nil {
			t.Errorf("ParseSigned(%q) succeeded, want error", s)
		}
	}
}
