package variant

import (
	"reflect"

	"github.com/hostbridge/script-value/errors"
)

// Is reports whether the stored concrete type is exactly T. Interface
// types never match: the container stores concrete types only.
func Is[T any](v Value) bool {
	return v.Type() == reflect.TypeOf((*T)(nil)).Elem()
}

// Cast extracts the stored value as T. The stored type must be exactly T;
// no conversion of any kind is attempted, and failure identifies both the
// stored and the requested type. Slice and map results are one-level
// copies so the container's payload cannot be mutated through them.
func Cast[T any](v Value) (T, error) {
	var zero T
	want := reflect.TypeOf((*T)(nil)).Elem()
	if v.Type() != want {
		return zero, errors.Mismatch(errors.OpCast, v.Type(), want)
	}
	return cloneTyped(v.raw().(T)), nil
}

// MustCast is Cast for call sites that have already checked Is. It panics
// on type mismatch.
func MustCast[T any](v Value) T {
	out, err := Cast[T](v)
	if err != nil {
		panic(err)
	}
	return out
}

func cloneTyped[T any](val T) T {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Slice, reflect.Map:
		return cloneShallow(any(val)).(T)
	}
	return val
}
