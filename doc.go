// Package scriptvalue provides the value layer for host/guest scripting
// bridges: a tagged value container that can hold any Go value, remember its
// dynamic type, extract it back out exactly or through best-effort coercion,
// and order itself against other containers so it can key ordered structures.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	scriptvalue/         Root package with the host-object capability interfaces
//	├── variant/         The tagged value container: construction, ordering,
//	│                    exact and converting extraction
//	├── promise/         Single-assignment deferred values used by container
//	│                    conversions
//	├── errors/          Structured cast-failure taxonomy
//	├── hostobj/         In-process array-like and map-like host objects
//	├── wasmhost/        WASM guest collections exposed as host objects (wazero)
//	├── bridge/          JSON and YAML conversion to and from variant values
//	├── wat/             Text-format compiler for guest fixtures and examples
//	└── cmd/inspect/     Interactive value inspector
//
// # Quick Start
//
// Store a value and get it back out:
//
//	v := variant.New(42)
//	n, err := variant.Cast[int](v)           // exact: n == 42
//	s, err := variant.ConvertCast[string](v) // coerced: s == "42"
//
// Convert a host object into a native container:
//
//	arr := hostobj.NewArray(3, 1, 2)
//	p := variant.ConvertSlice[int](ctx, variant.New(arr))
//	xs, err := p.Await(ctx) // xs == []int{3, 1, 2}
//
// # Extraction Contract
//
// Exact extraction (Cast) succeeds only when the requested type matches the
// stored dynamic type; converting extraction (ConvertCast, ConvertSlice,
// ConvertMap) applies a fixed coercion rule table. Scalar conversions are
// synchronous; container conversions complete through a promise because
// enumerating a host object may cross an execution boundary. Both failure
// modes carry the stored and requested types; see the errors package.
//
// # Thread Safety
//
// A variant.Value is not safe for concurrent mutation. Concurrent read-only
// access (Cast, ConvertCast, Less on an unmodified value) is safe. Host
// object implementations in this module guard their own state.
package scriptvalue
