// Package lex provides the locale-independent text primitives behind
// value conversion: base-10 numeric parsing and formatting, and narrow
// (UTF-8) to wide (code point) text transcoding that rejects malformed
// input rather than substituting replacement characters.
package lex
