package variant

import (
	"reflect"

	scriptvalue "github.com/hostbridge/script-value"
)

// Null is the payload of a value that was explicitly set to "no value".
// It is distinct from the empty (never assigned) state.
type Null struct{}

// Empty is the payload reported by a value that was never assigned.
// The zero Value is empty; storing Empty{} resets a value to that state.
type Empty struct{}

// WideString is text held as Unicode code points rather than UTF-8 bytes.
// Conversions between WideString and string validate the encoding and fail
// on malformed input instead of substituting replacement characters.
type WideString []rune

var (
	nullType  = reflect.TypeOf(Null{})
	emptyType = reflect.TypeOf(Empty{})
	wideType  = reflect.TypeOf(WideString(nil))
	runeType  = reflect.TypeOf(rune(0))
)

// Value is a container for exactly one value of any type. It remembers the
// concrete type stored in it and carries an ordering strategy chosen from
// that type at assignment, so values remain comparable after erasure.
//
// The zero Value is empty and ready to use. Values are copied by
// assignment; the payload is shared between copies until one of them is
// reassigned. Concurrent use of a single Value requires external locking,
// matching the rest of the package.
type Value struct {
	payload any
	less    func(a, b any) bool
}

// New returns a Value holding x. Byte slices are stored as string and rune
// slices as WideString, both as private copies. Slice and map payloads of
// other types are stored as one-level copies so later caller mutation does
// not leak into the container. Passing a Value copies it as-is rather than
// nesting; passing nil stores Null.
func New(x any) Value {
	if v, ok := x.(Value); ok {
		return v
	}
	p := normalize(x)
	return Value{payload: p, less: strategyFor(p)}
}

// NewNull returns a Value explicitly holding no value.
func NewNull() Value {
	return New(Null{})
}

// Assign replaces the held value with x, re-deriving the ordering strategy
// from the new payload. Assigning a Value copies it directly.
func (v *Value) Assign(x any) {
	*v = New(x)
}

// Reset returns the value to the empty state.
func (v *Value) Reset() {
	*v = Value{}
}

// Swap exchanges the contents of two values, strategies included.
func (v *Value) Swap(o *Value) {
	*v, *o = *o, *v
}

// Type reports the concrete type currently stored. Empty values report the
// type of Empty.
func (v Value) Type() reflect.Type {
	if v.payload == nil {
		return emptyType
	}
	return reflect.TypeOf(v.payload)
}

// TypeName is Type().String(), a convenience for diagnostics.
func (v Value) TypeName() string {
	return v.Type().String()
}

// Empty reports whether the value was never assigned (or was Reset).
// A value holding Null is not empty.
func (v Value) Empty() bool {
	if v.payload == nil {
		return true
	}
	_, ok := v.payload.(Empty)
	return ok
}

// IsNull reports whether the value explicitly holds no value.
func (v Value) IsNull() bool {
	_, ok := v.payload.(Null)
	return ok
}

// Object returns the held external handle, if the value holds one.
func (v Value) Object() (scriptvalue.Object, bool) {
	obj, ok := v.payload.(scriptvalue.Object)
	return obj, ok
}

// Interface returns the stored payload without type parameters, the
// escape hatch for callers that switch on payload shapes themselves.
// The empty state comes back as Empty; slice and map payloads are
// one-level copies.
func (v Value) Interface() any {
	return cloneShallow(v.raw())
}

// raw returns the stored payload with the empty state made concrete, so
// extraction and conversion never see a nil interface.
func (v Value) raw() any {
	if v.payload == nil {
		return Empty{}
	}
	return v.payload
}

// normalize rewrites payloads that must not share memory with the caller
// and maps nil to the explicit no-value sentinel.
func normalize(x any) any {
	switch p := x.(type) {
	case nil:
		return Null{}
	case []byte:
		return string(p)
	case []rune:
		w := make(WideString, len(p))
		copy(w, p)
		return w
	case WideString:
		w := make(WideString, len(p))
		copy(w, p)
		return w
	}
	return cloneShallow(x)
}

// cloneShallow copies slice and map payloads one level deep. Anything else
// is returned unchanged; interface boxing already copied it.
func cloneShallow(x any) any {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return x
		}
		dup := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(dup, rv)
		return dup.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return x
		}
		dup := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			dup.SetMapIndex(iter.Key(), iter.Value())
		}
		return dup.Interface()
	}
	return x
}
