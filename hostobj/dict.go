package hostobj

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	scriptvalue "github.com/hostbridge/script-value"
	"github.com/hostbridge/script-value/errors"
	"github.com/hostbridge/script-value/variant"
)

// Dict is a host-side keyed collection exposed as an enumerable handle.
// Enumeration preserves insertion order. It is safe for concurrent use.
type Dict struct {
	mu       sync.RWMutex
	id       uint64
	keys     []string
	index    map[string]int
	vals     []variant.Value
	released bool
}

// NewDict creates an empty dictionary handle.
func NewDict() *Dict {
	return &Dict{id: identSeq.Add(1), index: make(map[string]int)}
}

// NewDictOf creates a dictionary handle from a plain map. The map carries
// no order of its own, so keys are inserted sorted to keep enumeration
// deterministic.
func NewDictOf(items map[string]any) *Dict {
	d := NewDict()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.set(k, variant.New(items[k]))
	}
	return d
}

// Ident returns the owner identity used for ordering.
func (d *Dict) Ident() uint64 { return d.id }

// IsArray reports that the handle does not enumerate as a sequence.
func (d *Dict) IsArray() bool { return false }

// IsMap reports that the handle enumerates as a mapping.
func (d *Dict) IsMap() bool { return true }

// Len returns the number of entries, or 0 after release.
func (d *Dict) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.released {
		return 0
	}
	return len(d.keys)
}

// Set stores a value under key, keeping the key's original insertion
// position when it already exists.
func (d *Dict) Set(key string, x any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return errors.Released("dict")
	}
	d.set(key, variant.New(x))
	return nil
}

func (d *Dict) set(key string, v variant.Value) {
	if i, ok := d.index[key]; ok {
		d.vals[i] = v
		return
	}
	d.index[key] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, v)
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (variant.Value, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.released {
		return variant.Value{}, false
	}
	i, ok := d.index[key]
	if !ok {
		return variant.Value{}, false
	}
	return d.vals[i], true
}

// Delete removes a key and reports whether it was present.
func (d *Dict) Delete(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return false
	}
	i, ok := d.index[key]
	if !ok {
		return false
	}
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.vals = append(d.vals[:i], d.vals[i+1:]...)
	delete(d.index, key)
	for j := i; j < len(d.keys); j++ {
		d.index[d.keys[j]] = j
	}
	return true
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.released {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Elements returns the values in insertion order.
func (d *Dict) Elements(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.released {
		return nil, errors.Released("dict")
	}
	out := make([]any, len(d.vals))
	for i, v := range d.vals {
		out[i] = v
	}
	return out, nil
}

// Entries returns key/value pairs in insertion order.
func (d *Dict) Entries(ctx context.Context) ([]scriptvalue.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.released {
		Logger().Debug("enumeration of released dict", zap.Uint64("ident", d.id))
		return nil, errors.Released("dict")
	}
	out := make([]scriptvalue.Entry, len(d.keys))
	for i, k := range d.keys {
		out[i] = scriptvalue.Entry{Key: k, Value: d.vals[i]}
	}
	return out, nil
}

// Release drops the contents. Further operations fail, and releasing
// twice is itself a failure.
func (d *Dict) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return errors.Released("dict")
	}
	Logger().Debug("dict released", zap.Uint64("ident", d.id), zap.Int("len", len(d.keys)))
	d.released = true
	d.keys, d.vals, d.index = nil, nil, nil
	return nil
}
