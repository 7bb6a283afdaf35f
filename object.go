package scriptvalue

import "context"

// Ref is implemented by handle types whose ordering is defined by the
// identity of the object they track rather than by the tracked value.
// Two handles referring to the same underlying object must report the same
// token; tokens are only compared, never dereferenced.
type Ref interface {
	// Ident returns the owner-identity token. Tokens are unique per
	// underlying object within one process run.
	Ident() uint64
}

// Object is the capability surface of an external array-like or map-like
// handle. Converting extraction consumes exactly these operations and
// nothing else: kind queries and enumeration. Enumeration may cross a
// process or execution-context boundary, so it takes a context and can fail.
type Object interface {
	Ref

	// IsArray reports whether the object enumerates as an ordered sequence.
	IsArray() bool

	// IsMap reports whether the object enumerates as key/value pairs.
	IsMap() bool

	// Elements returns the object's elements in order. Only valid for
	// array-like objects.
	Elements(ctx context.Context) ([]any, error)

	// Entries returns the object's key/value pairs. Keys are always strings
	// at the boundary; pair order carries no guarantee beyond what the
	// object provides. Only valid for map-like objects.
	Entries(ctx context.Context) ([]Entry, error)
}

// Entry is one key/value pair of a map-like object.
type Entry struct {
	Value any
	Key   string
}

// Releaser is optionally implemented by objects that must notify their owner
// when the handle is dropped (for example guest-side collections).
type Releaser interface {
	Release() error
}
