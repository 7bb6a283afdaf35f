package variant

import (
	"cmp"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	scriptvalue "github.com/hostbridge/script-value"
)

// The ordering strategy is chosen once, at assignment, from the concrete
// payload type. Comparison itself never inspects types again: Less invokes
// the stored strategy when both sides hold the same type and falls back to
// type identity tokens when they do not.

// Less orders values for use in sorted containers. Values of different
// concrete types order by per-process type tokens handed out in first-use
// order; the relative order of two types is stable within a process but
// not across processes. Values of the same type use the strategy captured
// at assignment. Types without a strategy (structs, channels, functions)
// compare as equivalent.
func (v Value) Less(o Value) bool {
	ta, tb := v.Type(), o.Type()
	if ta != tb {
		return typeToken(ta) < typeToken(tb)
	}
	less := v.less
	if less == nil {
		less = o.less
	}
	if less == nil {
		return false
	}
	return less(v.raw(), o.raw())
}

var (
	typeTokens sync.Map // reflect.Type -> uint64
	tokenSeq   atomic.Uint64
)

func typeToken(t reflect.Type) uint64 {
	if tok, ok := typeTokens.Load(t); ok {
		return tok.(uint64)
	}
	tok, _ := typeTokens.LoadOrStore(t, tokenSeq.Add(1))
	return tok.(uint64)
}

// strategyFor picks the comparison function for a payload. External
// handles order by owner identity so two handles to the same underlying
// object always compare as equivalent. Floating-point strategies place
// NaN before every ordered number so the order stays total.
func strategyFor(p any) func(a, b any) bool {
	if _, ok := p.(scriptvalue.Ref); ok {
		return lessRef
	}
	switch p.(type) {
	case bool:
		return lessBool
	case int:
		return lessOrdered[int]
	case int8:
		return lessOrdered[int8]
	case int16:
		return lessOrdered[int16]
	case int32:
		return lessOrdered[int32]
	case int64:
		return lessOrdered[int64]
	case uint:
		return lessOrdered[uint]
	case uint8:
		return lessOrdered[uint8]
	case uint16:
		return lessOrdered[uint16]
	case uint32:
		return lessOrdered[uint32]
	case uint64:
		return lessOrdered[uint64]
	case uintptr:
		return lessOrdered[uintptr]
	case float32:
		return lessOrdered[float32]
	case float64:
		return lessOrdered[float64]
	case string:
		return lessOrdered[string]
	case WideString:
		return lessWide
	}
	return strategyForKind(reflect.TypeOf(p))
}

// strategyForKind covers named types whose underlying kind is still
// ordered, so user-defined scalars sort like their base type.
func strategyForKind(t reflect.Type) func(a, b any) bool {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return lessKindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lessKindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lessKindUint
	case reflect.Float32, reflect.Float64:
		return lessKindFloat
	case reflect.String:
		return lessKindString
	case reflect.Slice:
		if t.Elem() == runeType {
			return lessKindWide
		}
	}
	return nil
}

func lessOrdered[T cmp.Ordered](a, b any) bool {
	return cmp.Less(a.(T), b.(T))
}

func lessBool(a, b any) bool {
	return !a.(bool) && b.(bool)
}

func lessWide(a, b any) bool {
	return slices.Compare(a.(WideString), b.(WideString)) < 0
}

func lessRef(a, b any) bool {
	return a.(scriptvalue.Ref).Ident() < b.(scriptvalue.Ref).Ident()
}

func lessKindBool(a, b any) bool {
	return !reflect.ValueOf(a).Bool() && reflect.ValueOf(b).Bool()
}

func lessKindInt(a, b any) bool {
	return reflect.ValueOf(a).Int() < reflect.ValueOf(b).Int()
}

func lessKindUint(a, b any) bool {
	return reflect.ValueOf(a).Uint() < reflect.ValueOf(b).Uint()
}

func lessKindFloat(a, b any) bool {
	return cmp.Less(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
}

func lessKindString(a, b any) bool {
	return reflect.ValueOf(a).String() < reflect.ValueOf(b).String()
}

func lessKindWide(a, b any) bool {
	wa := reflect.ValueOf(a).Convert(wideType).Interface().(WideString)
	wb := reflect.ValueOf(b).Convert(wideType).Interface().(WideString)
	return slices.Compare(wa, wb) < 0
}
