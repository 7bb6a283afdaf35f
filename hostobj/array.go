package hostobj

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	scriptvalue "github.com/hostbridge/script-value"
	"github.com/hostbridge/script-value/errors"
	"github.com/hostbridge/script-value/variant"
)

// identSeq hands out process-unique owner identities for every host
// object, shared across kinds so identity ordering never collides.
var identSeq atomic.Uint64

// Array is a host-side ordered collection exposed as an enumerable
// handle. It is safe for concurrent use.
type Array struct {
	mu       sync.RWMutex
	id       uint64
	items    []variant.Value
	released bool
}

// NewArray creates an array handle, wrapping each initial element.
func NewArray(items ...any) *Array {
	a := &Array{id: identSeq.Add(1)}
	for _, x := range items {
		a.items = append(a.items, variant.New(x))
	}
	return a
}

// Ident returns the owner identity used for ordering.
func (a *Array) Ident() uint64 { return a.id }

// IsArray reports that the handle enumerates as a sequence.
func (a *Array) IsArray() bool { return true }

// IsMap reports that the handle does not enumerate as a mapping.
func (a *Array) IsMap() bool { return false }

// Len returns the number of elements, or 0 after release.
func (a *Array) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.released {
		return 0
	}
	return len(a.items)
}

// Append adds an element to the end.
func (a *Array) Append(x any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return errors.Released("array")
	}
	a.items = append(a.items, variant.New(x))
	return nil
}

// At returns the element at index i.
func (a *Array) At(i int) (variant.Value, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.released {
		return variant.Value{}, errors.Released("array")
	}
	if i < 0 || i >= len(a.items) {
		return variant.Value{}, fmt.Errorf("index %d out of range [0,%d)", i, len(a.items))
	}
	return a.items[i], nil
}

// SetAt replaces the element at index i.
func (a *Array) SetAt(i int, x any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return errors.Released("array")
	}
	if i < 0 || i >= len(a.items) {
		return fmt.Errorf("index %d out of range [0,%d)", i, len(a.items))
	}
	a.items[i] = variant.New(x)
	return nil
}

// Elements returns a snapshot of the elements in order.
func (a *Array) Elements(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.released {
		Logger().Debug("enumeration of released array", zap.Uint64("ident", a.id))
		return nil, errors.Released("array")
	}
	out := make([]any, len(a.items))
	for i, v := range a.items {
		out[i] = v
	}
	return out, nil
}

// Entries returns the elements keyed by decimal index, for callers that
// want mapping-shaped enumeration of a sequence.
func (a *Array) Entries(ctx context.Context) ([]scriptvalue.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.released {
		return nil, errors.Released("array")
	}
	out := make([]scriptvalue.Entry, len(a.items))
	for i, v := range a.items {
		out[i] = scriptvalue.Entry{Key: fmt.Sprintf("%d", i), Value: v}
	}
	return out, nil
}

// Release drops the contents. Further operations fail, and releasing
// twice is itself a failure.
func (a *Array) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return errors.Released("array")
	}
	Logger().Debug("array released", zap.Uint64("ident", a.id), zap.Int("len", len(a.items)))
	a.released = true
	a.items = nil
	return nil
}
