// Package urlcodec encodes parameter maps as URL fragments and query strings and
// provides the hash-change contract a permalink control consumes.
//
// The encoding is flat key=value pairs joined with "&", keys sorted, both sides
// query-escaped:
//
//	zoom=6&lat=55.676&lon=12.568&layer=wind
//
// Values read back from a URL are strings. Coerce converts "true"/"false",
// numeric strings and JSON objects/arrays into native values according to
// ParseOptions; coercion only touches string values, so applying it twice is
// the same as applying it once.
//
// MemoryLocation is an in-process stand-in for a browser location: it keeps a
// history of fragments, supports back/forward navigation and notifies
// subscribers when the fragment changes from outside.
package urlcodec
