package wasmhost

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per guest in pages (64KB each).
	// 0 means the runtime default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// Engine owns a wazero runtime and instantiates guests that expose the
// collection protocol described in the package documentation.
type Engine struct {
	runtime wazero.Runtime
	seq     atomic.Uint64
}

// NewEngine creates a new engine with default configuration.
func NewEngine(ctx context.Context) (*Engine, error) {
	return NewEngineWithConfig(ctx, nil)
}

// NewEngineWithConfig creates a new engine with custom configuration.
func NewEngineWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}, nil
}

// Instantiate compiles wasmBytes and instantiates it as a guest. The module
// must export memory and the full collection protocol; a missing export
// fails here rather than at first use.
func (e *Engine) Instantiate(ctx context.Context, wasmBytes []byte) (*Guest, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}

	// Anonymous name so guests from the same bytes can coexist.
	mod, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, fmt.Errorf("instantiate failed: %w", err)
	}
	if mod.Memory() == nil {
		_ = mod.Close(ctx)
		return nil, fmt.Errorf("module exports no memory")
	}

	var missing []string
	lookup := func(name string) api.Function {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			missing = append(missing, name)
		}
		return fn
	}
	g := &Guest{
		id:      e.seq.Add(1),
		mod:     mod,
		find:    lookup(exportFind),
		kind:    lookup(exportKind),
		length:  lookup(exportLen),
		get:     lookup(exportGet),
		entries: lookup(exportEntries),
		drop:    lookup(exportDrop),
		alloc:   lookup(exportAlloc),
		stack:   make([]uint64, 8), // pre-allocate stack buffer
	}
	if len(missing) > 0 {
		_ = mod.Close(ctx)
		return nil, fmt.Errorf("module does not export %s", strings.Join(missing, ", "))
	}

	Logger().Debug("guest instantiated",
		zap.Uint64("guest", g.id),
		zap.Int("module_bytes", len(wasmBytes)))
	return g, nil
}

// Close releases the runtime and every guest instantiated from it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
