package variant

import (
	"fmt"

	"github.com/hostbridge/script-value/errors"
)

// List is the native ordered collection of values, for building
// structured data host-side without involving an external handle.
type List []Value

// Map is the native string-keyed collection of values.
type Map map[string]Value

// NewList builds a List, wrapping each argument with New.
func NewList(items ...any) List {
	l := make(List, len(items))
	for i, x := range items {
		l[i] = New(x)
	}
	return l
}

// NewMap builds a Map, wrapping each value with New.
func NewMap(items map[string]any) Map {
	m := make(Map, len(items))
	for k, x := range items {
		m[k] = New(x)
	}
	return m
}

// ListTo converts every element of a List to E. Native collections never
// block, so the conversion is synchronous. It is also all-or-nothing: the
// first failing element rejects the whole conversion with its index on
// the error path.
func ListTo[E Scalar](l List) ([]E, error) {
	out := make([]E, len(l))
	for i, v := range l {
		e, err := ConvertCast[E](v)
		if err != nil {
			return nil, errors.Element(fmt.Sprintf("[%d]", i), err)
		}
		out[i] = e
	}
	return out, nil
}

// MapTo converts every value of a Map to E, synchronously and
// all-or-nothing like ListTo.
func MapTo[E Scalar](m Map) (map[string]E, error) {
	out := make(map[string]E, len(m))
	for k, v := range m {
		e, err := ConvertCast[E](v)
		if err != nil {
			return nil, errors.Element(k, err)
		}
		out[k] = e
	}
	return out, nil
}
