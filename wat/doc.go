// Package wat compiles a small slice of the WebAssembly text format into
// binary modules, enough to write collection-protocol guests inline in
// tests and examples.
//
//	wasm, err := wat.Compile(`(module
//		(memory (export "memory") 1)
//		(func (export "answer") (result i32)
//			i32.const 42))`)
//
// Supported: functions with params, results and locals (named or indexed),
// inline exports, memory and active data segments, flat instruction bodies
// with block/loop/if control flow, the i32/i64 numeric instruction set, and
// line or block comments.
//
// Not supported: folded expression bodies, call and call_indirect, floats,
// tables, globals, imports, SIMD, threads.
package wat
