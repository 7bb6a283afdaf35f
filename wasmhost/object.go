package wasmhost

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	scriptvalue "github.com/hostbridge/script-value"
	"github.com/hostbridge/script-value/bridge"
	"github.com/hostbridge/script-value/errors"
	"github.com/hostbridge/script-value/variant"
)

// guestCaller is the slice of Guest that GuestObject consumes. The seam lets
// handle behavior be tested without a live module.
type guestCaller interface {
	lenOf(ctx context.Context, handle uint32) (int, error)
	elementJSON(ctx context.Context, handle uint32, index int) ([]byte, error)
	entriesJSON(ctx context.Context, handle uint32) ([]byte, error)
	dropObject(ctx context.Context, handle uint32) error
}

// GuestObject is a handle to a collection living inside a guest. Enumeration
// pulls the whole collection across the boundary as JSON in one guest call.
type GuestObject struct {
	caller   guestCaller
	handle   uint32
	array    bool
	ident    uint64
	released atomic.Bool
}

var _ scriptvalue.Object = (*GuestObject)(nil)

// Ident returns the owner identity used for ordering. Handles resolved from
// the same guest collection share one token.
func (o *GuestObject) Ident() uint64 { return o.ident }

// IsArray reports whether the guest collection enumerates as a sequence.
func (o *GuestObject) IsArray() bool { return o.array }

// IsMap reports whether the guest collection enumerates as a mapping.
func (o *GuestObject) IsMap() bool { return !o.array }

// Len asks the guest for the collection's element count.
func (o *GuestObject) Len(ctx context.Context) (int, error) {
	if o.released.Load() {
		return 0, errors.Released("guest object")
	}
	return o.caller.lenOf(ctx, o.handle)
}

// At fetches one element of an array-like collection by index.
func (o *GuestObject) At(ctx context.Context, index int) (variant.Value, error) {
	if o.released.Load() {
		return variant.Value{}, errors.Released("guest object")
	}
	payload, err := o.caller.elementJSON(ctx, o.handle, index)
	if err != nil {
		return variant.Value{}, err
	}
	v, err := bridge.FromJSON(payload)
	if err != nil {
		return variant.Value{}, fmt.Errorf("decode element %d: %w", index, err)
	}
	return v, nil
}

// Elements returns the collection's elements in order. Only valid for
// array-like collections.
func (o *GuestObject) Elements(ctx context.Context) ([]any, error) {
	v, err := o.pull(ctx)
	if err != nil {
		return nil, err
	}
	l, err := variant.Cast[variant.List](v)
	if err != nil {
		return nil, fmt.Errorf("guest sent a non-sequence payload for handle %d", o.handle)
	}
	out := make([]any, len(l))
	for i, e := range l {
		out[i] = e
	}
	return out, nil
}

// Entries returns the collection's key/value pairs sorted by key. Guest
// mappings carry no enumeration order of their own. Only valid for map-like
// collections.
func (o *GuestObject) Entries(ctx context.Context) ([]scriptvalue.Entry, error) {
	v, err := o.pull(ctx)
	if err != nil {
		return nil, err
	}
	m, err := variant.Cast[variant.Map](v)
	if err != nil {
		return nil, fmt.Errorf("guest sent a non-mapping payload for handle %d", o.handle)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]scriptvalue.Entry, len(keys))
	for i, k := range keys {
		out[i] = scriptvalue.Entry{Key: k, Value: m[k]}
	}
	return out, nil
}

// pull fetches and decodes the collection's full JSON payload.
func (o *GuestObject) pull(ctx context.Context) (variant.Value, error) {
	if o.released.Load() {
		return variant.Value{}, errors.Released("guest object")
	}
	payload, err := o.caller.entriesJSON(ctx, o.handle)
	if err != nil {
		return variant.Value{}, err
	}
	v, err := bridge.FromJSON(payload)
	if err != nil {
		return variant.Value{}, fmt.Errorf("decode guest payload: %w", err)
	}
	return v, nil
}

// Release drops the guest-side handle. Releasing twice is a failure.
func (o *GuestObject) Release() error {
	if o.released.Swap(true) {
		return errors.Released("guest object")
	}
	return o.caller.dropObject(context.Background(), o.handle)
}
