package variant

import (
	"math"
	"reflect"

	"github.com/hostbridge/script-value/errors"
	"github.com/hostbridge/script-value/variant/internal/lex"
)

// Scalar enumerates the destination types of converting extraction: the
// arithmetic types, bool, and the two text representations. Named types
// with these underlying types convert the same way.
type Scalar interface {
	~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~string | ~[]rune
}

// Key constrains map key destinations to the comparable scalars.
type Key interface {
	~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~string
}

// ConvertCast extracts the stored value as T, converting when the stored
// type differs. The rule table, in priority order:
//
//   - exact stored type: returned as-is
//   - arithmetic to arithmetic: value-preserving; integral destinations
//     fail on out-of-range values, fractions truncate toward zero, and
//     NaN or infinity never converts to an integral type
//   - bool bridges arithmetic: false/true from zero/nonzero and back
//   - text to scalar: strict base-10 (or Go float syntax) parsing of the
//     full string; wide text is narrowed first and malformed encodings
//     fail rather than substitute
//   - scalar to text: canonical formatting; floats use the shortest form
//     that round-trips at the source precision
//   - Null or Empty: the destination's zero value ("" for text)
//
// Anything else, including handle payloads, fails with a type mismatch.
// Conversion never mutates the container; a failed conversion leaves no
// partial result.
func ConvertCast[T Scalar](v Value) (T, error) {
	if val, ok := v.payload.(T); ok {
		return cloneTyped(val), nil
	}
	rv, err := convertScalar(v.raw(), v.Type(), reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		var zero T
		return zero, err
	}
	return rv.Interface().(T), nil
}

// CanBe reports whether ConvertCast[T] would succeed. It runs the full
// conversion and discards the result, so the answer cannot drift from
// what ConvertCast actually does.
func CanBe[T Scalar](v Value) bool {
	_, err := ConvertCast[T](v)
	return err == nil
}

// convertScalar is the runtime form of ConvertCast, shared with container
// element conversion where the destination type is only known as a
// reflect.Type. The returned value has exactly the type to.
func convertScalar(payload any, from, to reflect.Type) (reflect.Value, error) {
	if from == to {
		return reflect.ValueOf(cloneShallow(payload)), nil
	}
	src := classify(payload)
	switch to.Kind() {
	case reflect.Bool:
		b, err := toBool(src, from, to)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(to), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toSigned(src, from, to)
		if err != nil {
			return reflect.Value{}, err
		}
		if !signedFits(i, to.Kind()) {
			return reflect.Value{}, errors.Overflow(from, to, i)
		}
		return reflect.ValueOf(i).Convert(to), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := toUnsigned(src, from, to)
		if err != nil {
			return reflect.Value{}, err
		}
		if !unsignedFits(u, to.Kind()) {
			return reflect.Value{}, errors.Overflow(from, to, u)
		}
		return reflect.ValueOf(u).Convert(to), nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(src, from, to)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(to), nil
	case reflect.String:
		s, err := toNarrow(src, from, to)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(to), nil
	case reflect.Slice:
		if to.Elem() == runeType {
			w, err := toWide(src, from, to)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(w).Convert(to), nil
		}
	}
	return reflect.Value{}, errors.Mismatch(errors.OpConvert, from, to)
}

type srcClass uint8

const (
	srcNone srcClass = iota
	srcBool
	srcInt
	srcUint
	srcFloat
	srcNarrow
	srcWide
	srcAbsent
)

// scalarSource is a payload reduced to its conversion class and base-type
// value. The wide slice is an owned copy.
type scalarSource struct {
	class srcClass
	b     bool
	i     int64
	u     uint64
	f     float64
	bits  int
	s     string
	w     []rune
}

func classify(payload any) scalarSource {
	switch payload.(type) {
	case Null, Empty:
		return scalarSource{class: srcAbsent}
	}
	rv := reflect.ValueOf(payload)
	switch rv.Kind() {
	case reflect.Bool:
		return scalarSource{class: srcBool, b: rv.Bool()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalarSource{class: srcInt, i: rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return scalarSource{class: srcUint, u: rv.Uint()}
	case reflect.Float32:
		return scalarSource{class: srcFloat, f: rv.Float(), bits: 32}
	case reflect.Float64:
		return scalarSource{class: srcFloat, f: rv.Float(), bits: 64}
	case reflect.String:
		return scalarSource{class: srcNarrow, s: rv.String()}
	case reflect.Slice:
		if rv.Type().Elem() == runeType {
			w := make([]rune, rv.Len())
			reflect.Copy(reflect.ValueOf(w), rv)
			return scalarSource{class: srcWide, w: w}
		}
	}
	return scalarSource{class: srcNone}
}

func toSigned(src scalarSource, from, to reflect.Type) (int64, error) {
	switch src.class {
	case srcInt:
		return src.i, nil
	case srcUint:
		if src.u > math.MaxInt64 {
			return 0, errors.Overflow(from, to, src.u)
		}
		return int64(src.u), nil
	case srcFloat:
		t := math.Trunc(src.f)
		// The boundaries are the nearest float64 values outside int64's
		// range; t == -2^63 is representable and valid.
		if math.IsNaN(t) || t < -9223372036854775808.0 || t >= 9223372036854775808.0 {
			return 0, errors.Overflow(from, to, src.f)
		}
		return int64(t), nil
	case srcBool:
		if src.b {
			return 1, nil
		}
		return 0, nil
	case srcNarrow:
		i, err := lex.ParseSigned(src.s)
		if err != nil {
			return 0, errors.ParseFailed(from, to, src.s, err)
		}
		return i, nil
	case srcWide:
		s, err := lex.Narrow(src.w)
		if err != nil {
			return 0, errors.Encoding(from, to, err.Error())
		}
		i, err := lex.ParseSigned(s)
		if err != nil {
			return 0, errors.ParseFailed(from, to, s, err)
		}
		return i, nil
	case srcAbsent:
		return 0, nil
	}
	return 0, errors.Mismatch(errors.OpConvert, from, to)
}

func toUnsigned(src scalarSource, from, to reflect.Type) (uint64, error) {
	switch src.class {
	case srcInt:
		if src.i < 0 {
			return 0, errors.Overflow(from, to, src.i)
		}
		return uint64(src.i), nil
	case srcUint:
		return src.u, nil
	case srcFloat:
		t := math.Trunc(src.f)
		if math.IsNaN(t) || t < 0 || t >= 18446744073709551616.0 {
			return 0, errors.Overflow(from, to, src.f)
		}
		return uint64(t), nil
	case srcBool:
		if src.b {
			return 1, nil
		}
		return 0, nil
	case srcNarrow:
		u, err := lex.ParseUnsigned(src.s)
		if err != nil {
			return 0, errors.ParseFailed(from, to, src.s, err)
		}
		return u, nil
	case srcWide:
		s, err := lex.Narrow(src.w)
		if err != nil {
			return 0, errors.Encoding(from, to, err.Error())
		}
		u, err := lex.ParseUnsigned(s)
		if err != nil {
			return 0, errors.ParseFailed(from, to, s, err)
		}
		return u, nil
	case srcAbsent:
		return 0, nil
	}
	return 0, errors.Mismatch(errors.OpConvert, from, to)
}

func toFloat(src scalarSource, from, to reflect.Type) (float64, error) {
	bits := 64
	if to.Kind() == reflect.Float32 {
		bits = 32
	}
	switch src.class {
	case srcInt:
		return float64(src.i), nil
	case srcUint:
		return float64(src.u), nil
	case srcFloat:
		return src.f, nil
	case srcBool:
		if src.b {
			return 1, nil
		}
		return 0, nil
	case srcNarrow:
		f, err := lex.ParseFloat(src.s, bits)
		if err != nil {
			return 0, errors.ParseFailed(from, to, src.s, err)
		}
		return f, nil
	case srcWide:
		s, err := lex.Narrow(src.w)
		if err != nil {
			return 0, errors.Encoding(from, to, err.Error())
		}
		f, err := lex.ParseFloat(s, bits)
		if err != nil {
			return 0, errors.ParseFailed(from, to, s, err)
		}
		return f, nil
	case srcAbsent:
		return 0, nil
	}
	return 0, errors.Mismatch(errors.OpConvert, from, to)
}

func toBool(src scalarSource, from, to reflect.Type) (bool, error) {
	switch src.class {
	case srcBool:
		return src.b, nil
	case srcInt:
		return src.i != 0, nil
	case srcUint:
		return src.u != 0, nil
	case srcFloat:
		// NaN is nonzero.
		return src.f != 0, nil
	case srcNarrow:
		b, err := lex.ParseBool(src.s)
		if err != nil {
			return false, errors.ParseFailed(from, to, src.s, err)
		}
		return b, nil
	case srcWide:
		s, err := lex.Narrow(src.w)
		if err != nil {
			return false, errors.Encoding(from, to, err.Error())
		}
		b, err := lex.ParseBool(s)
		if err != nil {
			return false, errors.ParseFailed(from, to, s, err)
		}
		return b, nil
	case srcAbsent:
		return false, nil
	}
	return false, errors.Mismatch(errors.OpConvert, from, to)
}

func toNarrow(src scalarSource, from, to reflect.Type) (string, error) {
	switch src.class {
	case srcNarrow:
		return src.s, nil
	case srcWide:
		s, err := lex.Narrow(src.w)
		if err != nil {
			return "", errors.Encoding(from, to, err.Error())
		}
		return s, nil
	case srcBool:
		return lex.FormatBool(src.b), nil
	case srcInt:
		return lex.FormatSigned(src.i), nil
	case srcUint:
		return lex.FormatUnsigned(src.u), nil
	case srcFloat:
		return lex.FormatFloat(src.f, src.bits), nil
	case srcAbsent:
		return "", nil
	}
	return "", errors.Mismatch(errors.OpConvert, from, to)
}

func toWide(src scalarSource, from, to reflect.Type) ([]rune, error) {
	if src.class == srcWide {
		return src.w, nil
	}
	s, err := toNarrow(src, from, to)
	if err != nil {
		return nil, err
	}
	w, err := lex.Widen(s)
	if err != nil {
		return nil, errors.Encoding(from, to, err.Error())
	}
	return w, nil
}

func signedFits(i int64, k reflect.Kind) bool {
	switch k {
	case reflect.Int8:
		return i >= math.MinInt8 && i <= math.MaxInt8
	case reflect.Int16:
		return i >= math.MinInt16 && i <= math.MaxInt16
	case reflect.Int32:
		return i >= math.MinInt32 && i <= math.MaxInt32
	case reflect.Int:
		return i >= math.MinInt && i <= math.MaxInt
	}
	return true
}

func unsignedFits(u uint64, k reflect.Kind) bool {
	switch k {
	case reflect.Uint8:
		return u <= math.MaxUint8
	case reflect.Uint16:
		return u <= math.MaxUint16
	case reflect.Uint32:
		return u <= math.MaxUint32
	case reflect.Uint:
		return u <= math.MaxUint
	}
	return true
}
