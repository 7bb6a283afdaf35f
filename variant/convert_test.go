package variant

import (
	"math"
	"testing"

	"github.com/hostbridge/script-value/errors"
)

func wantKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("conversion succeeded, want failure")
	}
	ce, ok := errors.AsCastError(err)
	if !ok {
		t.Fatalf("error type %T: %v", err, err)
	}
	if ce.Kind != kind {
		t.Fatalf("kind = %v, want %v (error: %v)", ce.Kind, kind, err)
	}
}

func TestConvertExactTypeShortCircuits(t *testing.T) {
	if got, err := ConvertCast[int](New(42)); err != nil || got != 42 {
		t.Errorf("got %v, %v", got, err)
	}
	if got, err := ConvertCast[string](New("abc")); err != nil || got != "abc" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestConvertNumericWidening(t *testing.T) {
	if got, err := ConvertCast[int64](New(42)); err != nil || got != 42 {
		t.Errorf("int->int64: %v, %v", got, err)
	}
	if got, err := ConvertCast[int](New(uint8(200))); err != nil || got != 200 {
		t.Errorf("uint8->int: %v, %v", got, err)
	}
	if got, err := ConvertCast[float64](New(3)); err != nil || got != 3.0 {
		t.Errorf("int->float64: %v, %v", got, err)
	}
	if got, err := ConvertCast[uint64](New(int8(5))); err != nil || got != 5 {
		t.Errorf("int8->uint64: %v, %v", got, err)
	}
}

func TestConvertNumericNarrowingInRange(t *testing.T) {
	if got, err := ConvertCast[uint8](New(200)); err != nil || got != 200 {
		t.Errorf("got %v, %v", got, err)
	}
	if got, err := ConvertCast[int8](New(-128)); err != nil || got != -128 {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestConvertNumericOverflow(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"300 to uint8", func() error { _, err := ConvertCast[uint8](New(300)); return err }()},
		{"128 to int8", func() error { _, err := ConvertCast[int8](New(128)); return err }()},
		{"-1 to uint", func() error { _, err := ConvertCast[uint](New(-1)); return err }()},
		{"max uint64 to int64", func() error { _, err := ConvertCast[int64](New(uint64(math.MaxUint64))); return err }()},
		{"1e300 to int64", func() error { _, err := ConvertCast[int64](New(1e300)); return err }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, tt.err, errors.KindOverflow)
		})
	}
}

func TestConvertFloatToIntegralTruncatesTowardZero(t *testing.T) {
	if got, err := ConvertCast[int](New(3.9)); err != nil || got != 3 {
		t.Errorf("3.9: %v, %v", got, err)
	}
	if got, err := ConvertCast[int](New(-3.9)); err != nil || got != -3 {
		t.Errorf("-3.9: %v, %v", got, err)
	}
	if got, err := ConvertCast[uint8](New(0.5)); err != nil || got != 0 {
		t.Errorf("0.5: %v, %v", got, err)
	}
}

func TestConvertNaNAndInfNeverIntegral(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ConvertCast[int64](New(f))
		wantKind(t, err, errors.KindOverflow)
	}
	_, err := ConvertCast[uint32](New(math.NaN()))
	wantKind(t, err, errors.KindOverflow)
}

func TestConvertFloatDestinationNeverFails(t *testing.T) {
	// smaller float destinations lose precision or saturate silently
	got, err := ConvertCast[float32](New(1e300))
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(float64(got), 1) {
		t.Errorf("got %v, want +Inf", got)
	}
	if got, err := ConvertCast[float32](New(0.5)); err != nil || got != 0.5 {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestConvertBoolBridgesArithmetic(t *testing.T) {
	if got, err := ConvertCast[int](New(true)); err != nil || got != 1 {
		t.Errorf("true->int: %v, %v", got, err)
	}
	if got, err := ConvertCast[float64](New(false)); err != nil || got != 0 {
		t.Errorf("false->float64: %v, %v", got, err)
	}
	tests := []struct {
		in   any
		want bool
	}{
		{0, false},
		{2, true},
		{-1, true},
		{uint16(0), false},
		{0.0, false},
		{math.Copysign(0, -1), false},
		{math.NaN(), true},
	}
	for _, tt := range tests {
		got, err := ConvertCast[bool](New(tt.in))
		if err != nil || got != tt.want {
			t.Errorf("%v -> bool: %v, %v", tt.in, got, err)
		}
	}
}

func TestConvertTextParsesToScalars(t *testing.T) {
	if got, err := ConvertCast[int](New("42")); err != nil || got != 42 {
		t.Errorf("got %v, %v", got, err)
	}
	if got, err := ConvertCast[int8](New("-7")); err != nil || got != -7 {
		t.Errorf("got %v, %v", got, err)
	}
	if got, err := ConvertCast[float64](New("2.5e3")); err != nil || got != 2500 {
		t.Errorf("got %v, %v", got, err)
	}
	if got, err := ConvertCast[bool](New("true")); err != nil || !got {
		t.Errorf("got %v, %v", got, err)
	}
	if got, err := ConvertCast[uint16](New("65535")); err != nil || got != 65535 {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestConvertTextParseFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"fraction to int", func() error { _, err := ConvertCast[int](New("3.5")); return err }()},
		{"word to float", func() error { _, err := ConvertCast[float64](New("abc")); return err }()},
		{"empty to int", func() error { _, err := ConvertCast[int](New("")); return err }()},
		{"yes to bool", func() error { _, err := ConvertCast[bool](New("yes")); return err }()},
		{"trailing junk", func() error { _, err := ConvertCast[int](New("42x")); return err }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, tt.err, errors.KindParse)
		})
	}
}

func TestConvertTextToSmallIntegralOverflows(t *testing.T) {
	// text parses at full width; the destination range check then fails
	// exactly like numeric narrowing
	_, err := ConvertCast[int8](New("300"))
	wantKind(t, err, errors.KindOverflow)
}

func TestConvertScalarsFormatToText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{42, "42"},
		{-3, "-3"},
		{uint64(math.MaxUint64), "18446744073709551615"},
		{3.5, "3.5"},
		{true, "true"},
		{false, "false"},
		{float32(0.1), "0.1"},
	}
	for _, tt := range tests {
		got, err := ConvertCast[string](New(tt.in))
		if err != nil || got != tt.want {
			t.Errorf("%v -> string = %q, %v (want %q)", tt.in, got, err, tt.want)
		}
	}
}

func TestConvertFloatFormatRoundTripsAtSourcePrecision(t *testing.T) {
	src := 3.141592653589793
	s, err := ConvertCast[string](New(src))
	if err != nil {
		t.Fatal(err)
	}
	back, err := ConvertCast[float64](New(s))
	if err != nil {
		t.Fatal(err)
	}
	if back != src {
		t.Errorf("%v -> %q -> %v", src, s, back)
	}
}

func TestConvertWideText(t *testing.T) {
	if got, err := ConvertCast[int](New(WideString("42"))); err != nil || got != 42 {
		t.Errorf("wide->int: %v, %v", got, err)
	}
	got, err := ConvertCast[WideString](New("héllo"))
	if err != nil || string(got) != "héllo" {
		t.Errorf("narrow->wide: %q, %v", string(got), err)
	}
	s, err := ConvertCast[string](New(WideString("日本")))
	if err != nil || s != "日本" {
		t.Errorf("wide->narrow: %q, %v", s, err)
	}
	w, err := ConvertCast[WideString](New(42))
	if err != nil || string(w) != "42" {
		t.Errorf("int->wide: %q, %v", string(w), err)
	}
}

func TestConvertMalformedEncodingFails(t *testing.T) {
	badWide := New(WideString{0xD800})
	_, err := ConvertCast[string](badWide)
	wantKind(t, err, errors.KindEncoding)
	_, err = ConvertCast[int](badWide)
	wantKind(t, err, errors.KindEncoding)

	badNarrow := New("ok\xff")
	_, err = ConvertCast[WideString](badNarrow)
	wantKind(t, err, errors.KindEncoding)
}

func TestConvertSentinelsToZeroValues(t *testing.T) {
	for name, v := range map[string]Value{"null": NewNull(), "empty": {}} {
		if got, err := ConvertCast[int](v); err != nil || got != 0 {
			t.Errorf("%s->int: %v, %v", name, got, err)
		}
		if got, err := ConvertCast[string](v); err != nil || got != "" {
			t.Errorf("%s->string: %q, %v", name, got, err)
		}
		if got, err := ConvertCast[bool](v); err != nil || got {
			t.Errorf("%s->bool: %v, %v", name, got, err)
		}
		if got, err := ConvertCast[WideString](v); err != nil || len(got) != 0 {
			t.Errorf("%s->wide: %v, %v", name, got, err)
		}
	}
}

func TestConvertNoRuleIsMismatch(t *testing.T) {
	type opaque struct{ n int }
	_, err := ConvertCast[int](New(opaque{1}))
	wantKind(t, err, errors.KindTypeMismatch)

	_, err = ConvertCast[string](New(newFakeArray(1)))
	wantKind(t, err, errors.KindTypeMismatch)
}

func TestConvertNamedTypes(t *testing.T) {
	type celsius float64
	type port uint16

	if got, err := ConvertCast[celsius](New(20)); err != nil || got != 20 {
		t.Errorf("int->celsius: %v, %v", got, err)
	}
	if got, err := ConvertCast[string](New(celsius(21.5))); err != nil || got != "21.5" {
		t.Errorf("celsius->string: %q, %v", got, err)
	}
	_, err := ConvertCast[port](New(70000))
	wantKind(t, err, errors.KindOverflow)
}

func TestConvertDoesNotMutateSource(t *testing.T) {
	v := New("42")
	if _, err := ConvertCast[int](v); err != nil {
		t.Fatal(err)
	}
	if got, err := Cast[string](v); err != nil || got != "42" {
		t.Errorf("source changed: %q, %v", got, err)
	}
}

func TestCanBeAgreesWithConvert(t *testing.T) {
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"parsable text", CanBe[int](New("5")), true},
		{"unparsable text", CanBe[int](New("x")), false},
		{"in range", CanBe[uint8](New(255)), true},
		{"out of range", CanBe[uint8](New(256)), false},
		{"null", CanBe[int](NewNull()), true},
		{"handle to scalar", CanBe[int](New(newFakeArray())), false},
		{"anything to string", CanBe[string](New(3.5)), true},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: CanBe = %v", tt.name, tt.got)
		}
	}
}
