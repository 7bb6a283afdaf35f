// Package errors provides the structured cast-failure taxonomy for the
// script-value library.
//
// There is one failure type at this layer, CastError, categorized by Op
// (which extraction path failed) and Kind (why). Every instance carries the
// stored dynamic type and the requested type; container conversions add the
// element path that failed:
//
//	[convert] overflow at [2]: int64 -> uint8 - value 300 overflows uint8
//	[cast] type_mismatch: string -> int
//
// Use the convenience constructors for the rule-table failure cases:
//
//	err := errors.Mismatch(errors.OpCast, fromType, toType)
//	err := errors.Overflow(fromType, toType, 300)
//	err := errors.Element("[2]", cause)
//
// All errors support the standard errors.Is/As chain; Is matches on Op and
// Kind.
package errors
