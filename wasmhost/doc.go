// Package wasmhost exposes collections living inside a WASM guest as
// enumerable handles. A Guest wraps one instantiated core module; Object
// resolves a named collection into a GuestObject that converting extraction
// can enumerate like any other handle.
//
// Guests participate by exporting the collection protocol:
//
//	object-find(ptr, len) -> i32    handle for the named collection, 0 if absent
//	object-kind(h) -> i32           1 for arrays, 2 for mappings
//	object-len(h) -> i32            element or entry count
//	object-get(h, i) -> i64         one element, packed ptr<<32|len
//	object-entries(h) -> i64        the whole collection, packed ptr<<32|len
//	object-drop(h)                  release the collection handle
//	alloc(size) -> i32              reserve guest memory for host-written bytes
//
// along with an exported memory. Packed results address UTF-8 JSON in guest
// memory: a JSON array for array-like collections, a JSON object for
// map-like ones. The host copies the bytes out before the next guest call,
// so guests may reuse the buffer.
package wasmhost
