package lex

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Parse functions accept exactly what the strconv routines accept: an
// optional sign and decimal digits for integers, Go floating-point syntax
// for floats, and ParseBool's literal set for bools. No surrounding
// whitespace, no digit separators, no locale-dependent forms.

// ParseSigned parses a base-10 signed integer.
func ParseSigned(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// ParseUnsigned parses a base-10 unsigned integer.
func ParseUnsigned(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// ParseFloat parses a floating-point number rounded to the given bit size
// (32 or 64).
func ParseFloat(s string, bits int) (float64, error) {
	return strconv.ParseFloat(s, bits)
}

// ParseBool parses "1", "t", "T", "TRUE", "true", "True", "0", "f", "F",
// "FALSE", "false", "False".
func ParseBool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

// FormatSigned formats a signed integer in base 10.
func FormatSigned(i int64) string {
	return strconv.FormatInt(i, 10)
}

// FormatUnsigned formats an unsigned integer in base 10.
func FormatUnsigned(u uint64) string {
	return strconv.FormatUint(u, 10)
}

// FormatFloat formats a float with the shortest representation that parses
// back exactly at the given bit size.
func FormatFloat(f float64, bits int) string {
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// FormatBool formats a bool as "true" or "false".
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}

// Widen decodes UTF-8 text into code points. It fails on the first malformed
// byte sequence instead of substituting replacement characters.
func Widen(s string) ([]rune, error) {
	out := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return nil, fmt.Errorf("invalid UTF-8 sequence at byte %d", i)
		}
		out = append(out, r)
		i += size
	}
	return out, nil
}

// Narrow encodes code points as UTF-8 text. It fails on the first invalid
// scalar value (surrogates, out-of-range code points) instead of
// substituting replacement characters.
func Narrow(rs []rune) (string, error) {
	var b []byte
	for i, r := range rs {
		if !utf8.ValidRune(r) {
			return "", fmt.Errorf("invalid Unicode scalar value 0x%X at index %d", r, i)
		}
		b = utf8.AppendRune(b, r)
	}
	return string(b), nil
}
