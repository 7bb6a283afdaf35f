// Package hostobj provides host-side implementations of the enumerable
// handle contract: Array (ordered) and Dict (keyed, insertion-ordered).
// They exist so structured data can be built on the host and flow through
// the same container conversion path as guest-owned objects.
//
// Every handle carries a process-unique identity from a shared counter,
// which is what value ordering compares. Released handles fail all
// further operations with a released error.
package hostobj
