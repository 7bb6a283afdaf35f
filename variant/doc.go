// Package variant implements a single-value container that erases the
// stored type while keeping three capabilities: exact extraction with
// Cast, rule-based converting extraction with ConvertCast, and a total
// ordering with Less so values work as keys in sorted containers.
//
// A Value stores exactly one value of any concrete type, plus an ordering
// strategy chosen from that type at assignment. Text has two stored
// forms, string (UTF-8) and WideString (code points); conversions between
// them validate the encoding and fail on malformed input. Null and Empty
// are first-class stored states, distinct from each other.
//
// Scalar conversions are synchronous. Converting a value that holds an
// external handle into a slice or map enumerates the handle, which can
// block on the owning runtime, so ConvertSlice and ConvertMap return a
// promise instead. Native List and Map collections convert synchronously
// through ListTo and MapTo.
//
// A Value is not safe for concurrent mutation; guard shared instances
// externally. All extraction paths are read-only and may run concurrently
// against the same Value.
package variant
