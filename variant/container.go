package variant

import (
	"context"
	"fmt"
	"reflect"

	scriptvalue "github.com/hostbridge/script-value"
	"github.com/hostbridge/script-value/errors"
	"github.com/hostbridge/script-value/promise"
)

var stringType = reflect.TypeOf("")

// Container conversion is deferred because enumerating an external handle
// can block on the owning runtime. The conversion runs in its own
// goroutine and settles the returned promise exactly once: with the fully
// converted container, or with the first failure. There is no partial
// result, and the source value is never mutated.

// ConvertSlice converts a value holding an array-like handle into []E.
// Elements convert by the scalar rule table; elements that are themselves
// array-like or map-like convert recursively. The promise rejects with a
// path-annotated error naming the first offending element, or with a
// not-enumerable failure when the value holds no array-like handle.
// Abandoning the promise (Await returning on context cancellation) does
// not stop the conversion.
func ConvertSlice[E any](ctx context.Context, v Value) *promise.Promise[[]E] {
	p := promise.New[[]E]()
	to := reflect.TypeOf((*[]E)(nil)).Elem()
	obj, ok := v.payload.(scriptvalue.Object)
	if !ok {
		p.Reject(errors.NotEnumerable(v.Type(), to))
		return p
	}
	go func() {
		out, err := convertSequence(ctx, obj, to)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(out.Interface().([]E))
	}()
	return p
}

// ConvertMap converts a value holding a map-like handle into map[K]E.
// Keys arrive from the handle as narrow text and convert to K by the
// scalar rule table; values convert like ConvertSlice elements. The
// promise rejects with the first failure, annotated with the offending
// key, and duplicate keys after coercion keep the last value seen.
func ConvertMap[K Key, E any](ctx context.Context, v Value) *promise.Promise[map[K]E] {
	p := promise.New[map[K]E]()
	to := reflect.TypeOf((*map[K]E)(nil)).Elem()
	obj, ok := v.payload.(scriptvalue.Object)
	if !ok {
		p.Reject(errors.NotEnumerable(v.Type(), to))
		return p
	}
	go func() {
		out, err := convertMapping(ctx, obj, to)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(out.Interface().(map[K]E))
	}()
	return p
}

// CanBeSlice reports whether the value holds an array-like handle, the
// precondition for ConvertSlice. It checks capability only and never
// enumerates, so it cannot foresee element conversion failures.
func CanBeSlice(v Value) bool {
	obj, ok := v.payload.(scriptvalue.Object)
	return ok && obj.IsArray()
}

// CanBeMap reports whether the value holds a map-like handle, the
// precondition for ConvertMap.
func CanBeMap(v Value) bool {
	obj, ok := v.payload.(scriptvalue.Object)
	return ok && obj.IsMap()
}

func convertSequence(ctx context.Context, obj scriptvalue.Object, to reflect.Type) (reflect.Value, error) {
	if !obj.IsArray() {
		return reflect.Value{}, errors.NotEnumerable(reflect.TypeOf(obj), to)
	}
	items, err := obj.Elements(ctx)
	if err != nil {
		return reflect.Value{}, err
	}
	return convertItems(ctx, items, to)
}

func convertItems(ctx context.Context, items []any, to reflect.Type) (reflect.Value, error) {
	out := reflect.MakeSlice(to, 0, len(items))
	elemType := to.Elem()
	for i, raw := range items {
		if err := ctx.Err(); err != nil {
			return reflect.Value{}, err
		}
		ev, err := convertElement(ctx, raw, elemType)
		if err != nil {
			return reflect.Value{}, errors.Element(fmt.Sprintf("[%d]", i), err)
		}
		out = reflect.Append(out, ev)
	}
	return out, nil
}

func convertMapping(ctx context.Context, obj scriptvalue.Object, to reflect.Type) (reflect.Value, error) {
	if !obj.IsMap() {
		return reflect.Value{}, errors.NotEnumerable(reflect.TypeOf(obj), to)
	}
	entries, err := obj.Entries(ctx)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeMapWithSize(to, len(entries))
	for _, e := range entries {
		if err := setConverted(ctx, out, to, e.Key, e.Value); err != nil {
			return reflect.Value{}, err
		}
	}
	return out, nil
}

func setConverted(ctx context.Context, out reflect.Value, to reflect.Type, key string, raw any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kv, err := convertScalar(key, stringType, to.Key())
	if err != nil {
		return errors.Element(key, err)
	}
	ev, err := convertElement(ctx, raw, to.Elem())
	if err != nil {
		return errors.Element(key, err)
	}
	out.SetMapIndex(kv, ev)
	return nil
}

// convertElement converts one enumerated element to the destination type.
// Nested container destinations accept a nested handle or the raw []any
// and map[string]any shapes that boundary decoding produces; everything
// else goes through the scalar rule table.
func convertElement(ctx context.Context, raw any, to reflect.Type) (reflect.Value, error) {
	if vv, ok := raw.(Value); ok {
		raw = vv.raw()
	}
	switch to.Kind() {
	case reflect.Slice:
		if to.Elem() != runeType {
			return elementSequence(ctx, raw, to)
		}
	case reflect.Map:
		return elementMapping(ctx, raw, to)
	}
	p := normalize(raw)
	return convertScalar(p, reflect.TypeOf(p), to)
}

func elementSequence(ctx context.Context, raw any, to reflect.Type) (reflect.Value, error) {
	switch s := raw.(type) {
	case scriptvalue.Object:
		return convertSequence(ctx, s, to)
	case []any:
		return convertItems(ctx, s, to)
	case List:
		items := make([]any, len(s))
		for i, lv := range s {
			items[i] = lv
		}
		return convertItems(ctx, items, to)
	}
	return reflect.Value{}, errors.NotEnumerable(reflect.TypeOf(raw), to)
}

func elementMapping(ctx context.Context, raw any, to reflect.Type) (reflect.Value, error) {
	switch m := raw.(type) {
	case scriptvalue.Object:
		return convertMapping(ctx, m, to)
	case map[string]any:
		out := reflect.MakeMapWithSize(to, len(m))
		for k, rv := range m {
			if err := setConverted(ctx, out, to, k, rv); err != nil {
				return reflect.Value{}, err
			}
		}
		return out, nil
	case Map:
		out := reflect.MakeMapWithSize(to, len(m))
		for k, mv := range m {
			if err := setConverted(ctx, out, to, k, mv); err != nil {
				return reflect.Value{}, err
			}
		}
		return out, nil
	}
	return reflect.Value{}, errors.NotEnumerable(reflect.TypeOf(raw), to)
}
