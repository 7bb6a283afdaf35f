package errors

import (
	"fmt"
	"reflect"
	"strings"
)

// Op indicates which extraction path produced the error.
type Op string

const (
	OpCast    Op = "cast"    // exact-type extraction
	OpConvert Op = "convert" // converting extraction
)

// Kind categorizes the cast failure.
type Kind string

const (
	KindTypeMismatch  Kind = "type_mismatch"  // no conversion rule applies
	KindOverflow      Kind = "overflow"       // numeric value out of target range
	KindParse         Kind = "parse"          // text is not a valid representation
	KindEncoding      Kind = "encoding"       // malformed narrow/wide text data
	KindNotEnumerable Kind = "not_enumerable" // container destination, source is no handle
	KindReleased      Kind = "released"       // handle used after release
	KindNotFound      Kind = "not_found"      // named guest object does not exist
)

// CastError is the structured failure type for both extraction paths. It
// always carries the stored dynamic type and the requested type; container
// conversions additionally record the element path that failed.
type CastError struct {
	From   reflect.Type
	To     reflect.Type
	Cause  error
	Op     Op
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface.
func (e *CastError) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Op))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.From != nil || e.To != nil {
		b.WriteString(": ")
		b.WriteString(typeName(e.From))
		b.WriteString(" -> ")
		b.WriteString(typeName(e.To))
	}

	if e.Detail != "" {
		if e.From != nil || e.To != nil {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *CastError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by op and kind.
func (e *CastError) Is(target error) bool {
	if t, ok := target.(*CastError); ok {
		return e.Op == t.Op && e.Kind == t.Kind
	}
	return false
}

// WithPath returns a copy of the error with path segments prepended.
// Container conversions use it to re-root element failures.
func (e *CastError) WithPath(segments ...string) *CastError {
	dup := *e
	dup.Path = append(append([]string{}, segments...), e.Path...)
	return &dup
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

// AsCastError unwraps err to a *CastError if one is in its chain.
func AsCastError(err error) (*CastError, bool) {
	for err != nil {
		if ce, ok := err.(*CastError); ok {
			return ce, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Convenience constructors for the failure cases of the rule table.

// Mismatch reports that no rule maps from the stored to the requested type.
func Mismatch(op Op, from, to reflect.Type) *CastError {
	return &CastError{Op: op, Kind: KindTypeMismatch, From: from, To: to}
}

// Overflow reports a numeric value outside the target's representable range.
func Overflow(from, to reflect.Type, value any) *CastError {
	return &CastError{
		Op:     OpConvert,
		Kind:   KindOverflow,
		From:   from,
		To:     to,
		Detail: fmt.Sprintf("value %v overflows %s", value, typeName(to)),
	}
}

// ParseFailed reports text that is not a valid representation of the target.
func ParseFailed(from, to reflect.Type, text string, cause error) *CastError {
	preview := text
	if len(preview) > 32 {
		preview = preview[:32] + "..."
	}
	return &CastError{
		Op:     OpConvert,
		Kind:   KindParse,
		From:   from,
		To:     to,
		Detail: fmt.Sprintf("cannot parse %q", preview),
		Cause:  cause,
	}
}

// Encoding reports malformed data during a narrow/wide text conversion.
func Encoding(from, to reflect.Type, detail string) *CastError {
	return &CastError{Op: OpConvert, Kind: KindEncoding, From: from, To: to, Detail: detail}
}

// NotEnumerable reports a container destination whose source holds no
// enumerable handle.
func NotEnumerable(from, to reflect.Type) *CastError {
	return &CastError{
		Op:     OpConvert,
		Kind:   KindNotEnumerable,
		From:   from,
		To:     to,
		Detail: "source is not an enumerable handle",
	}
}

// Released reports use of a handle after its release.
func Released(what string) *CastError {
	return &CastError{
		Op:     OpConvert,
		Kind:   KindReleased,
		Detail: fmt.Sprintf("%s used after release", what),
	}
}

// NotFound reports a named object that does not exist on the host or guest.
func NotFound(what, name string) *CastError {
	return &CastError{
		Op:     OpConvert,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Element re-roots a failed element conversion under its index or key so the
// whole-container rejection names the offending position.
func Element(pathSegment string, cause error) *CastError {
	if ce, ok := AsCastError(cause); ok {
		return ce.WithPath(pathSegment)
	}
	return &CastError{
		Op:    OpConvert,
		Kind:  KindTypeMismatch,
		Path:  []string{pathSegment},
		Cause: cause,
	}
}
