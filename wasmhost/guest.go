package wasmhost

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/hostbridge/script-value/errors"
)

// Guest export names making up the collection protocol.
const (
	exportFind    = "object-find"
	exportKind    = "object-kind"
	exportLen     = "object-len"
	exportGet     = "object-get"
	exportEntries = "object-entries"
	exportDrop    = "object-drop"
	exportAlloc   = "alloc"
)

// Collection kinds reported by object-kind.
const (
	kindArray = 1
	kindMap   = 2
)

// Guest is one instantiated module. Calls into the guest are serialized
// behind a mutex because wazero instances are not safe for concurrent use.
type Guest struct {
	mod api.Module
	mu  sync.Mutex

	find    api.Function
	kind    api.Function
	length  api.Function
	get     api.Function
	entries api.Function
	drop    api.Function
	alloc   api.Function

	stack []uint64 // reused across calls, guarded by mu
	id    uint64
}

// Object resolves a named guest collection and wraps it in a handle. The
// handle stays valid until released or until the guest closes.
func (g *Guest) Object(ctx context.Context, name string) (*GuestObject, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ptr, err := g.placeBytes(ctx, []byte(name))
	if err != nil {
		return nil, err
	}
	raw, err := g.invoke(ctx, g.find, uint64(ptr), uint64(len(name)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", exportFind, err)
	}
	handle := uint32(raw)
	if handle == 0 {
		return nil, errors.NotFound("guest object", name)
	}

	raw, err = g.invoke(ctx, g.kind, uint64(handle))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", exportKind, err)
	}
	var array bool
	switch uint32(raw) {
	case kindArray:
		array = true
	case kindMap:
		array = false
	default:
		return nil, fmt.Errorf("object %q reports unknown kind %d", name, uint32(raw))
	}

	Logger().Debug("guest object resolved",
		zap.Uint64("guest", g.id),
		zap.String("name", name),
		zap.Uint32("handle", handle),
		zap.Bool("array", array))
	return &GuestObject{
		caller: g,
		handle: handle,
		array:  array,
		ident:  g.id<<32 | uint64(handle),
	}, nil
}

// Close releases the guest instance. Outstanding object handles become
// unusable.
func (g *Guest) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mod.Close(ctx)
}

// invoke runs fn with args on the shared stack buffer and returns the first
// result slot. Callers must hold g.mu.
func (g *Guest) invoke(ctx context.Context, fn api.Function, args ...uint64) (uint64, error) {
	copy(g.stack, args)
	n := len(args)
	if n == 0 {
		n = 1
	}
	if err := fn.CallWithStack(ctx, g.stack[:n]); err != nil {
		return 0, err
	}
	return g.stack[0], nil
}

// placeBytes copies b into guest memory through the guest allocator and
// returns its address. Callers must hold g.mu.
func (g *Guest) placeBytes(ctx context.Context, b []byte) (uint32, error) {
	raw, err := g.invoke(ctx, g.alloc, uint64(len(b)))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", exportAlloc, err)
	}
	ptr := uint32(raw)
	if !g.mod.Memory().Write(ptr, b) {
		return 0, fmt.Errorf("write %d bytes at %d: out of memory range", len(b), ptr)
	}
	return ptr, nil
}

// readPacked copies the region addressed by a packed ptr<<32|len result out
// of guest memory. Callers must hold g.mu.
func (g *Guest) readPacked(packed uint64) ([]byte, error) {
	ptr, n := uint32(packed>>32), uint32(packed)
	out, ok := g.mod.Memory().Read(ptr, n)
	if !ok {
		return nil, fmt.Errorf("read %d bytes at %d: out of memory range", n, ptr)
	}
	// The view aliases guest memory; copy before the next guest call.
	return append([]byte(nil), out...), nil
}

func (g *Guest) lenOf(ctx context.Context, handle uint32) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	raw, err := g.invoke(ctx, g.length, uint64(handle))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", exportLen, err)
	}
	return int(int32(raw)), nil
}

func (g *Guest) elementJSON(ctx context.Context, handle uint32, index int) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	raw, err := g.invoke(ctx, g.get, uint64(handle), uint64(uint32(index)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", exportGet, err)
	}
	return g.readPacked(raw)
}

func (g *Guest) entriesJSON(ctx context.Context, handle uint32) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	raw, err := g.invoke(ctx, g.entries, uint64(handle))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", exportEntries, err)
	}
	return g.readPacked(raw)
}

func (g *Guest) dropObject(ctx context.Context, handle uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.invoke(ctx, g.drop, uint64(handle)); err != nil {
		return fmt.Errorf("%s: %w", exportDrop, err)
	}
	return nil
}
