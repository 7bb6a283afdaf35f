// Package bridge moves values across text document boundaries. JSON and
// YAML documents decode into native containers (List, Map, Null, int64/
// float64 scalars) and encode back out, with WideString narrowing
// validated on the way. The guest adapter uses the same decoding for
// payloads crossing the module boundary, so document shapes stay
// identical everywhere.
package bridge
